// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"testing"

	"github.com/luxfi/rpcrouter/router"
)

type addInput struct {
	A int `json:"a"`
	B int `json:"b"`
}

type addOutput struct {
	Sum int `json:"sum"`
}

var serverEnv = router.Environment{IsServer: true, IsDev: true}

// testRecord returns a record exercising success, procedure errors and
// panics.
func testRecord() router.Record {
	return router.Record{
		"math": router.Record{
			"add": router.Query(func(_ context.Context, in addInput) (addOutput, error) {
				return addOutput{Sum: in.A + in.B}, nil
			}),
		},
		"admin": router.Record{
			"forbidden": router.Mutation(func(context.Context, struct{}) (struct{}, error) {
				return struct{}{}, router.NewError(router.CodeForbidden, "admins only")
			}),
			"boom": router.Query(func(context.Context, struct{}) (int, error) {
				panic("boom")
			}),
		},
	}
}

func testRouter(t testing.TB, opts ...router.Option) *router.Router {
	t.Helper()

	root, err := router.Init(append([]router.Option{router.WithEnvironment(serverEnv)}, opts...)...)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r, err := root.Router(testRecord())
	if err != nil {
		t.Fatalf("Router: %v", err)
	}
	return r
}

// serve mounts r on a fresh server of the given transport and returns a
// connected client.
func serve(t testing.TB, transport string, r *router.Router) Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server, err := Listen("127.0.0.1:0", WithServerTransport(transport))
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	if _, err := Mount(server, r); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	go server.Serve(ctx)

	client, err := Dial(ctx, server.Addr(),
		WithTransport(transport),
		WithTransformer(r.Config().Transformer),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
