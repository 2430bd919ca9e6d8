// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transformer provides payload transformers for routers.
//
// Every value exported here is a singleton, and ByName caches one instance
// per name, so routers configured from the same name share an identity
// and merge without conflict.
package transformer
