// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	serverEnv = Environment{IsServer: true, IsDev: false}
	clientEnv = Environment{IsServer: false, IsDev: false}
)

// testTransformer is a distinct transformer identity.
type testTransformer struct {
	name string
}

func (*testTransformer) Encode(any) ([]byte, error) { return nil, nil }
func (*testTransformer) Decode([]byte, any) error   { return nil }

func echo(name string) *Procedure {
	return Query(func(context.Context, struct{}) (string, error) {
		return name, nil
	})
}

// newRouter builds a router holding one procedure at key, with cfg
// adjusted by mutate.
func newRouter(t *testing.T, key string, mutate func(*Config)) *Router {
	t.Helper()

	cfg := DefaultConfig(serverEnv)
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := Build(cfg)(Record{key: echo(key)})
	require.NoError(t, err)
	return r
}
