//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/rpcrouter/router"
)

func TestGRPCCall(t *testing.T) {
	t.Parallel()

	client := serve(t, TransportGRPC, testRouter(t))

	var out addOutput
	require.NoError(t, client.Call(context.Background(), "math.add", addInput{A: 20, B: 22}, &out))
	assert.Equal(t, 42, out.Sum)

	err := client.Call(context.Background(), "admin.forbidden", nil, nil)
	var perr *ProcedureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, router.CodeForbidden, perr.Shape.Code)
}

func TestGRPCUnknownMethod(t *testing.T) {
	t.Parallel()

	client := serve(t, TransportGRPC, testRouter(t))

	_, err := client.CallRaw(context.Background(), "missing", nil)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "missing")
}
