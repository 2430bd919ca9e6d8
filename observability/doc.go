// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package observability provides logging, metrics and tracing for router
// composition and RPC dispatch.
package observability
