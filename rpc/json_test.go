// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/rpcrouter/router"
)

func TestJSONCall(t *testing.T) {
	t.Parallel()

	client := serve(t, TransportJSON, testRouter(t))

	var out addOutput
	require.NoError(t, client.Call(context.Background(), "math.add", addInput{A: 4, B: 5}, &out))
	assert.Equal(t, 9, out.Sum)
}

func TestJSONCallProcedureError(t *testing.T) {
	t.Parallel()

	client := serve(t, TransportJSON, testRouter(t))

	err := client.Call(context.Background(), "admin.forbidden", nil, nil)
	var perr *ProcedureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, router.CodeForbidden, perr.Shape.Code)
}

func TestJSONUnknownMethod(t *testing.T) {
	t.Parallel()

	client := serve(t, TransportJSON, testRouter(t))

	_, err := client.CallRaw(context.Background(), "missing", nil)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "missing")
}

func TestJSONExtraHandlers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := Listen("127.0.0.1:0",
		WithServerTransport(TransportJSON),
		WithHTTPHandler("/version", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "v1")
		})),
	)
	require.NoError(t, err)
	defer server.Close()
	go server.Serve(ctx)

	resp, err := http.Get("http://" + server.Addr() + "/healthz")
	require.NoError(t, err)
	CleanlyCloseBody(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + server.Addr() + "/version")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	CleanlyCloseBody(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body))
}

func TestSendJSONRequestOptions(t *testing.T) {
	t.Parallel()

	var gotHeader, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Test")
		gotQuery = r.URL.Query().Get("chain")

		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]any{"payload": []byte("ok")},
		})
	}))
	defer ts.Close()

	uri, err := url.Parse(ts.URL)
	require.NoError(t, err)

	var reply CallReply
	err = SendJSONRequest(context.Background(), uri, JSONMethod, &CallArgs{Path: "p"}, &reply,
		WithHeader("X-Test", "yes"),
		WithQueryParam("chain", "c"),
	)
	require.NoError(t, err)
	assert.Equal(t, "yes", gotHeader)
	assert.Equal(t, "c", gotQuery)
	assert.Equal(t, []byte("ok"), reply.Payload)
	assert.Empty(t, uri.RawQuery, "caller URL must not be modified")
}

func TestSendJSONRequestStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	uri, err := url.Parse(ts.URL)
	require.NoError(t, err)

	err = SendJSONRequest(context.Background(), uri, JSONMethod, &CallArgs{}, &CallReply{})
	assert.ErrorContains(t, err, "502")
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(io.EOF))
	assert.True(t, isRetryableError(io.ErrUnexpectedEOF))
	assert.False(t, isRetryableError(context.Canceled))
}
