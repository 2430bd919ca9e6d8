// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryBaseWait = 500 * time.Millisecond

	// JSONPath is where the JSON transport serves JSON-RPC 2.0.
	JSONPath = "/rpc"
	// JSONMethod is the JSON-RPC method carrying every procedure call.
	JSONMethod = "Router.Call"
)

// CallArgs are the JSON-RPC params of JSONMethod.
type CallArgs struct {
	Path    string `json:"path"`
	Payload []byte `json:"payload,omitempty"`
}

// CallReply is the JSON-RPC result of JSONMethod.
type CallReply struct {
	Payload []byte `json:"payload,omitempty"`
}

// RouterService exposes raw handlers as the JSON-RPC service "Router".
type RouterService struct {
	handlers *handlerTable
}

// Call runs the handler registered under args.Path.
func (s *RouterService) Call(r *http.Request, args *CallArgs, reply *CallReply) error {
	h, ok := s.handlers.lookup(args.Path)
	if !ok {
		return &json2.Error{Code: json2.E_NO_METHOD, Message: fmt.Sprintf("%s: %s", ErrUnknownMethod, args.Path)}
	}
	out, err := h(r.Context(), args.Payload)
	if err != nil {
		return &json2.Error{Code: json2.E_SERVER, Message: err.Error()}
	}
	reply.Payload = out
	return nil
}

// jsonServer implements Server using JSON-RPC 2.0 over HTTP
type jsonServer struct {
	listener net.Listener
	handlers *handlerTable
	http     *http.Server
	logger   *zap.Logger
}

func listenJSON(addr string, o *serverOptions) (Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &jsonServer{
		listener: listener,
		handlers: newHandlerTable(),
		logger:   o.logger,
	}

	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&RouterService{handlers: s.handlers}, "Router"); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register json service: %w", err)
	}

	mux := chi.NewRouter()
	mux.Handle(JSONPath, rpcServer)
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for pattern, h := range o.handlers {
		mux.Handle(pattern, h)
	}

	s.http = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *jsonServer) RegisterRaw(path string, handler RawHandler) error {
	return s.handlers.register(path, handler)
}

func (s *jsonServer) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.http.Close() })
	defer stop()

	s.logger.Info("json-rpc server listening", zap.String("addr", s.Addr()))
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *jsonServer) Close() error {
	return s.http.Close()
}

func (s *jsonServer) Addr() string {
	return s.listener.Addr().String()
}

// jsonClient implements Client using JSON-RPC 2.0 over HTTP
type jsonClient struct {
	uri     *url.URL
	o       *dialOptions
	options []Option
}

func dialJSON(_ context.Context, addr string, o *dialOptions) (Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	uri, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("json dial: %w", err)
	}
	if uri.Path == "" || uri.Path == "/" {
		uri.Path = JSONPath
	}

	options := append([]Option{WithRequestLogger(o.logger)}, o.request...)
	return &jsonClient{uri: uri, o: o, options: options}, nil
}

func (c *jsonClient) Call(ctx context.Context, path string, args, reply any) error {
	return call(ctx, c.CallRaw, c.o.transformer, path, args, reply)
}

func (c *jsonClient) CallRaw(ctx context.Context, path string, payload []byte) ([]byte, error) {
	var reply CallReply
	err := SendJSONRequest(ctx, c.uri, JSONMethod, &CallArgs{Path: path, Payload: payload}, &reply, c.options...)
	if err != nil {
		var jerr *json2.Error
		if errors.As(err, &jerr) {
			return nil, &RemoteError{Message: jerr.Message}
		}
		return nil, err
	}
	return reply.Payload, nil
}

func (c *jsonClient) Notify(ctx context.Context, path string, args any) error {
	payload, err := encodeArgs(c.o.transformer, args)
	if err != nil {
		return err
	}
	_, err = c.CallRaw(ctx, path, payload)
	return err
}

func (*jsonClient) Close() error {
	return nil
}

// newHTTPClient creates a fresh HTTP client with disabled connection reuse.
// This avoids EOF errors that can occur with connection pooling in complex
// process hierarchies.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe")
}

// SendJSONRequest posts a JSON-RPC 2.0 request to uri and decodes the
// result into reply, retrying transient connection failures with
// exponential backoff.
func SendJSONRequest(
	ctx context.Context,
	uri *url.URL,
	method string,
	params any,
	reply any,
	options ...Option,
) error {
	requestBodyBytes, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}

	ops := NewOptions(options)
	target := *uri
	target.RawQuery = ops.queryParams.Encode()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			waitTime := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}

		// The body buffer is consumed, so every attempt gets a new request.
		request, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			target.String(),
			bytes.NewReader(requestBodyBytes),
		)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		request.Header = ops.headers.Clone()
		request.Header.Set("Content-Type", "application/json")

		resp, err := newHTTPClient().Do(request)
		if err != nil {
			lastErr = err
			retryable := isRetryableError(err)
			ops.logger.Debug("json-rpc request attempt failed",
				zap.String("method", method),
				zap.Int("attempt", attempt+1),
				zap.Bool("retryable", retryable),
				zap.Error(err),
			)
			if retryable {
				continue
			}
			return fmt.Errorf("failed to issue request: %w", err)
		}
		if attempt > 0 {
			ops.logger.Debug("json-rpc request succeeded after retry",
				zap.String("method", method),
				zap.Int("attempt", attempt+1),
			)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			CleanlyCloseBody(resp.Body)
			return fmt.Errorf("received status code: %d", resp.StatusCode)
		}

		err = json2.DecodeClientResponse(resp.Body, reply)
		CleanlyCloseBody(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to decode client response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to issue request after %d retries: %w", maxRetries, lastErr)
}
