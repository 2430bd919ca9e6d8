// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router builds RPC routers and composes independently authored
// routers into one.
//
// # Building
//
//	root, err := router.Init(router.WithTransformer(transformer.CBOR))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	users, err := root.Router(router.Record{
//	    "get":    router.Query(getUser),
//	    "create": router.Mutation(createUser),
//	})
//
// # Merging
//
// Merge reconciles the configuration of every input router:
//
//   - Transformer, ErrorFormatter and NamespaceDelimiter: values left at their
//     default are ignored, the first explicit value wins, repeats of that
//     same value are accepted and a different explicit value fails the
//     merge with a *ConflictError.
//   - IsServer, IsDev and AllowOutsideOfServer: logical OR.
//   - Types: taken from the first router.
//
// Procedure records are combined by MergeRecords, which refuses to let a
// later router shadow a key of an earlier one.
//
//	app, err := router.Merge(users, billing, health)
//
// Defaults are compared by identity. Sharing one transformer or formatter
// value between routers is the way to use the same explicit choice in
// several of them.
package router
