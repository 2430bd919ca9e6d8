// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/observability"
	"github.com/luxfi/rpcrouter/router"
)

// MountOption configures a Dispatcher.
type MountOption func(*Dispatcher)

// WithLogger sets the per-call logger.
func WithLogger(l *zap.Logger) MountOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics records every call in m.
func WithMetrics(m *observability.Metrics) MountOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer sets the tracer starting one server span per call.
func WithTracer(t trace.Tracer) MountOption {
	return func(d *Dispatcher) { d.tracer = t }
}

// Dispatcher serves the procedures of one router.
type Dispatcher struct {
	router  *router.Router
	config  router.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewDispatcher returns a dispatcher for r. It refuses routers that are
// neither in a server environment nor allowed outside of one.
func NewDispatcher(r *router.Router, opts ...MountOption) (*Dispatcher, error) {
	cfg := r.Config()
	if !cfg.Servable() {
		return nil, router.ErrNotServer
	}

	d := &Dispatcher{
		router: r,
		config: cfg,
		logger: zap.NewNop(),
		tracer: observability.Tracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d, nil
}

// Mount registers every procedure of r on s.
func Mount(s Server, r *router.Router, opts ...MountOption) (*Dispatcher, error) {
	d, err := NewDispatcher(r, opts...)
	if err != nil {
		return nil, err
	}
	for _, path := range r.Paths() {
		if err := s.RegisterRaw(path, d.handler(path)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dispatcher) handler(path string) RawHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		return d.Handle(ctx, path, payload)
	}
}

// HandleZAP implements ZAPHandler, so a dispatcher can back a ZAPServer
// directly. Unknown methods get a NOT_FOUND error shape.
func (d *Dispatcher) HandleZAP(ctx context.Context, method string, payload []byte) ([]byte, error) {
	return d.Handle(ctx, method, payload)
}

type outcome struct {
	value    any
	err      error
	stack    string
	panicked bool
}

// Handle invokes the procedure at path with a transformer-encoded payload
// and returns the encoded response. The error is only set when the
// response itself cannot be encoded.
func (d *Dispatcher) Handle(ctx context.Context, path string, payload []byte) ([]byte, error) {
	start := time.Now()
	requestID := uuid.NewString()

	proc, found := d.router.Procedure(path)
	var typ router.ProcedureType
	if found {
		typ = proc.Type()
	}

	ctx, span := observability.StartCallSpan(ctx, d.tracer, path, string(typ))
	res := d.invoke(ctx, proc, path, payload)

	status := observability.CallOK
	var resp []byte
	var err error
	if res.err != nil {
		status = observability.CallError
		if res.panicked {
			status = observability.CallPanic
		}
		resp, err = d.encodeError(res, path, typ)
	} else {
		resp, err = encodeResponse(d.config.Transformer, statusOK, res.value)
		if err != nil {
			status = observability.CallError
			res.err = fmt.Errorf("encode output: %w", err)
			resp, err = d.encodeError(res, path, typ)
		}
	}

	elapsed := time.Since(start)
	d.metrics.RecordCall(path, status, elapsed)
	observability.EndSpan(span, res.err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", path),
		zap.String("type", string(typ)),
		zap.String("status", status),
		zap.Duration("duration", elapsed),
	}
	switch {
	case res.panicked:
		d.logger.Error("procedure panicked", append(fields, zap.Error(res.err))...)
	case res.err != nil:
		d.logger.Warn("procedure failed", append(fields, zap.Error(res.err))...)
	default:
		d.logger.Debug("procedure called", fields...)
	}
	return resp, err
}

func (d *Dispatcher) invoke(ctx context.Context, proc *router.Procedure, path string, payload []byte) (res outcome) {
	if proc == nil {
		res.err = router.NewError(router.CodeNotFound, fmt.Sprintf("no procedure at path %q", path))
		return res
	}

	defer func() {
		if rec := recover(); rec != nil {
			res.err = router.NewError(router.CodeInternalServerError, fmt.Sprintf("panic: %v", rec))
			res.stack = string(debug.Stack())
			res.panicked = true
		}
	}()

	decode := func(v any) error {
		if len(payload) == 0 {
			return nil
		}
		return d.config.Transformer.Decode(payload, v)
	}
	res.value, res.err = proc.Invoke(ctx, decode)
	return res
}

func (d *Dispatcher) encodeError(res outcome, path string, typ router.ProcedureType) ([]byte, error) {
	perr := router.ToError(res.err)
	stack := res.stack
	if stack == "" {
		stack = fmt.Sprintf("%+v", res.err)
	}

	shape := router.DefaultShape(perr, path, stack, d.config.IsDev)
	formatted := d.config.ErrorFormatter.FormatError(router.FormatErrorOptions{
		Error: perr,
		Path:  path,
		Type:  typ,
		Shape: shape,
	})
	return encodeResponse(d.config.Transformer, statusError, formatted)
}
