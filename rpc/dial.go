// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/router"
)

var (
	ErrUnknownTransport = errors.New("rpc: unknown transport")
	ErrUnknownMethod    = errors.New("rpc: unknown method")
	ErrDuplicateMethod  = errors.New("rpc: method already registered")
)

// Dial connects to an RPC server using the default transport (ZAP).
// Use WithTransport to select another one.
func Dial(ctx context.Context, addr string, opts ...DialOption) (Client, error) {
	o := &dialOptions{
		transport:   DefaultTransport,
		transformer: router.DefaultTransformer(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	t, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransport, o.transport)
	}
	return t.dial(ctx, addr, o)
}

// Listen creates an RPC server listener using the default transport (ZAP).
func Listen(addr string, opts ...ServerOption) (Server, error) {
	o := &serverOptions{
		transport: DefaultTransport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	t, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransport, o.transport)
	}
	return t.listen(addr, o)
}

// dialZAP creates a ZAP client
func dialZAP(ctx context.Context, addr string, o *dialOptions) (Client, error) {
	conn, err := ZAPDial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &zapClient{
		conn:        conn,
		transformer: o.transformer,
	}, nil
}

// listenZAP creates a ZAP server
func listenZAP(addr string, o *serverOptions) (Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &zapServer{
		listener: listener,
		handlers: newHandlerTable(),
	}
	s.server = NewZAPServer(listener, ZAPHandlerFunc(s.handlers.dispatch), o.logger)
	return s, nil
}

// zapClient implements Client using ZAP transport
type zapClient struct {
	conn        *ZAPConn
	transformer router.Transformer
}

func (c *zapClient) Call(ctx context.Context, path string, args, reply any) error {
	return call(ctx, c.conn.Call, c.transformer, path, args, reply)
}

func (c *zapClient) CallRaw(ctx context.Context, path string, payload []byte) ([]byte, error) {
	return c.conn.Call(ctx, path, payload)
}

func (c *zapClient) Notify(ctx context.Context, path string, args any) error {
	payload, err := encodeArgs(c.transformer, args)
	if err != nil {
		return err
	}
	return c.conn.Notify(ctx, path, payload)
}

func (c *zapClient) Close() error {
	return c.conn.Close()
}

// zapServer implements Server using ZAP transport
type zapServer struct {
	listener net.Listener
	handlers *handlerTable
	server   *ZAPServer
}

func (s *zapServer) RegisterRaw(path string, handler RawHandler) error {
	return s.handlers.register(path, handler)
}

func (s *zapServer) Serve(ctx context.Context) error {
	return s.server.Serve(ctx)
}

func (s *zapServer) Close() error {
	return s.server.Close()
}

func (s *zapServer) Addr() string {
	return s.listener.Addr().String()
}

// handlerTable is the method table shared by every server transport.
type handlerTable struct {
	mu       sync.RWMutex
	handlers map[string]RawHandler
}

func newHandlerTable() *handlerTable {
	return &handlerTable{handlers: make(map[string]RawHandler)}
}

func (t *handlerTable) register(method string, h RawHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.handlers[method]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, method)
	}
	t.handlers[method] = h
	return nil
}

func (t *handlerTable) lookup(method string) (RawHandler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[method]
	return h, ok
}

func (t *handlerTable) dispatch(ctx context.Context, method string, payload []byte) ([]byte, error) {
	h, ok := t.lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return h(ctx, payload)
}
