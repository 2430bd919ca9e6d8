// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/router"
)

// Client is the protocol-agnostic RPC client interface.
// All application code should use this interface.
type Client interface {
	// Call invokes the procedure at path and decodes its output into reply.
	// A failed procedure is reported as a *ProcedureError.
	Call(ctx context.Context, path string, args, reply any) error

	// CallRaw sends a pre-encoded payload and returns the raw response.
	CallRaw(ctx context.Context, path string, payload []byte) ([]byte, error)

	// Notify invokes the procedure at path without waiting for a response.
	Notify(ctx context.Context, path string, args any) error

	// Close closes the connection
	Close() error
}

// Server is the protocol-agnostic RPC server interface.
type Server interface {
	// RegisterRaw registers a raw byte handler under a procedure path
	RegisterRaw(path string, handler RawHandler) error

	// Serve starts serving requests (blocks until context cancelled)
	Serve(ctx context.Context) error

	// Close stops the server
	Close() error

	// Addr returns the server's listen address
	Addr() string
}

// RawHandler handles raw byte RPC calls (for zero-copy)
type RawHandler func(ctx context.Context, payload []byte) ([]byte, error)

// DialOption configures client connections
type DialOption func(*dialOptions)

type dialOptions struct {
	transformer router.Transformer
	transport   string
	request     []Option
	logger      *zap.Logger
}

// WithTransformer sets the transformer used by Call and Notify. It must
// match the served router's transformer.
func WithTransformer(t router.Transformer) DialOption {
	return func(o *dialOptions) { o.transformer = t }
}

// WithTransport explicitly sets the transport type
func WithTransport(t string) DialOption {
	return func(o *dialOptions) { o.transport = t }
}

// WithRequestOptions sets per-request options of the JSON transport.
func WithRequestOptions(opts ...Option) DialOption {
	return func(o *dialOptions) { o.request = append(o.request, opts...) }
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *zap.Logger) DialOption {
	return func(o *dialOptions) { o.logger = l }
}

// ServerOption configures servers
type ServerOption func(*serverOptions)

type serverOptions struct {
	transport string
	logger    *zap.Logger
	handlers  map[string]http.Handler
}

// WithServerTransport explicitly sets the transport type for the server
func WithServerTransport(t string) ServerOption {
	return func(o *serverOptions) { o.transport = t }
}

// WithServerLogger sets the server logger.
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = l }
}

// WithHTTPHandler mounts h at pattern next to the JSON-RPC endpoint.
// Other transports ignore it.
func WithHTTPHandler(pattern string, h http.Handler) ServerOption {
	return func(o *serverOptions) {
		if o.handlers == nil {
			o.handlers = make(map[string]http.Handler)
		}
		o.handlers[pattern] = h
	}
}
