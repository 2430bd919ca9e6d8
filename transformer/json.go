// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transformer

import "github.com/luxfi/rpcrouter/router"

// JSON is a shared JSON transformer that counts as an explicit choice.
// Routers using it conflict with routers using another explicit
// transformer, while router.DefaultTransformer() never does.
var JSON = router.NewJSONTransformer()
