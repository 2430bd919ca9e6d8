// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/luxfi/rpcrouter/router"
)

func TestZAPRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	// Register echo handler
	server.RegisterRaw("echo", func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	})

	go server.Serve(ctx)

	client, err := Dial(ctx, server.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	payload := []byte("hello world")
	resp, err := client.CallRaw(ctx, "echo", payload)
	if err != nil {
		t.Fatalf("CallRaw: %v", err)
	}

	if string(resp) != string(payload) {
		t.Errorf("got %q, want %q", resp, payload)
	}
}

func TestZAPUnknownMethod(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()
	go server.Serve(ctx)

	client, err := Dial(ctx, server.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	_, err = client.CallRaw(ctx, "missing", nil)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("CallRaw error = %v, want *RemoteError", err)
	}
}

func TestZAPDuplicateRegistration(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	echo := func(ctx context.Context, payload []byte) ([]byte, error) { return payload, nil }
	if err := server.RegisterRaw("echo", echo); err != nil {
		t.Fatalf("first RegisterRaw: %v", err)
	}
	if err := server.RegisterRaw("echo", echo); !errors.Is(err, ErrDuplicateMethod) {
		t.Errorf("second RegisterRaw error = %v, want %v", err, ErrDuplicateMethod)
	}
}

func TestZAPCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := serve(t, TransportZAP, testRouter(t))

	var resp addOutput
	if err := client.Call(ctx, "math.add", addInput{A: 2, B: 3}, &resp); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Sum != 5 {
		t.Errorf("got %d, want 5", resp.Sum)
	}
}

func TestZAPCallProcedureError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := serve(t, TransportZAP, testRouter(t))

	err := client.Call(ctx, "admin.forbidden", nil, nil)
	var perr *ProcedureError
	if !errors.As(err, &perr) {
		t.Fatalf("Call error = %v, want *ProcedureError", err)
	}
	if perr.Shape.Code != router.CodeForbidden {
		t.Errorf("code = %v, want %v", perr.Shape.Code, router.CodeForbidden)
	}
	if perr.Shape.Data.Path != "admin.forbidden" {
		t.Errorf("path = %q, want %q", perr.Shape.Data.Path, "admin.forbidden")
	}
}

func TestZAPDispatcherAsHandler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := NewDispatcher(testRouter(t))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	zs := NewZAPServer(ln, d, nil)
	defer zs.Close()
	go zs.Serve(ctx)

	conn, err := ZAPDial(ctx, zs.Addr().String())
	if err != nil {
		t.Fatalf("ZAPDial: %v", err)
	}
	defer conn.Close()

	resp, err := conn.Call(ctx, "nowhere", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	err = decodeResponse(router.DefaultTransformer(), "nowhere", resp, nil)
	var perr *ProcedureError
	if !errors.As(err, &perr) {
		t.Fatalf("decodeResponse error = %v, want *ProcedureError", err)
	}
	if perr.Shape.Code != router.CodeNotFound {
		t.Errorf("code = %v, want %v", perr.Shape.Code, router.CodeNotFound)
	}
}

func TestZAPCallTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	release := make(chan struct{})
	defer close(release)
	server.RegisterRaw("slow", func(ctx context.Context, payload []byte) ([]byte, error) {
		<-release
		return nil, nil
	})
	go server.Serve(ctx)

	client, err := Dial(ctx, server.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	callCtx, callCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer callCancel()
	if _, err := client.CallRaw(callCtx, "slow", nil); !errors.Is(err, ErrZAPTimeout) {
		t.Errorf("CallRaw error = %v, want %v", err, ErrZAPTimeout)
	}
}

func BenchmarkZAPRoundTrip(b *testing.B) {
	ctx := context.Background()

	server, err := Listen("127.0.0.1:0")
	if err != nil {
		b.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	server.RegisterRaw("echo", func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	})

	go server.Serve(ctx)

	client, err := Dial(ctx, server.Addr())
	if err != nil {
		b.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	payload := make([]byte, 1024)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := client.CallRaw(ctx, "echo", payload)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkZAPMountedCall(b *testing.B) {
	ctx := context.Background()
	client := serve(b, TransportZAP, testRouter(b))

	in := addInput{A: 1, B: 2}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out addOutput
		if err := client.Call(ctx, "math.add", in, &out); err != nil {
			b.Fatal(err)
		}
	}
}
