//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(TransportGRPC, dialGRPC, listenGRPC)
}

// grpcServicePrefix prefixes procedure paths to form gRPC method names.
const grpcServicePrefix = "/rpcrouter.Router/"

// rawCodec moves payloads as opaque bytes; the router's transformer has
// already encoded them.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("rpc: grpc raw codec cannot marshal %T", v)
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("rpc: grpc raw codec cannot unmarshal into %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (rawCodec) Name() string {
	return "rpcrouter-raw"
}

func dialGRPC(_ context.Context, addr string, o *dialOptions) (Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rawCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &grpcClient{conn: conn, o: o}, nil
}

type grpcClient struct {
	conn *grpc.ClientConn
	o    *dialOptions
}

func (c *grpcClient) Call(ctx context.Context, path string, args, reply any) error {
	return call(ctx, c.CallRaw, c.o.transformer, path, args, reply)
}

func (c *grpcClient) CallRaw(ctx context.Context, path string, payload []byte) ([]byte, error) {
	var resp []byte
	if err := c.conn.Invoke(ctx, grpcServicePrefix+path, &payload, &resp); err != nil {
		if st, ok := status.FromError(err); ok && st.Code() != codes.Unavailable {
			return nil, &RemoteError{Message: st.Message()}
		}
		return nil, err
	}
	return resp, nil
}

func (c *grpcClient) Notify(ctx context.Context, path string, args any) error {
	payload, err := encodeArgs(c.o.transformer, args)
	if err != nil {
		return err
	}
	_, err = c.CallRaw(ctx, path, payload)
	return err
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}

// grpcServer implements Server with an unknown-service handler, so any
// registered path is reachable without generated stubs.
type grpcServer struct {
	listener net.Listener
	handlers *handlerTable
	server   *grpc.Server
	logger   *zap.Logger
}

func listenGRPC(addr string, o *serverOptions) (Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &grpcServer{
		listener: listener,
		handlers: newHandlerTable(),
		logger:   o.logger,
	}
	s.server = grpc.NewServer(
		grpc.ForceServerCodec(rawCodec{}),
		grpc.UnknownServiceHandler(s.handleStream),
	)
	return s, nil
}

func (s *grpcServer) handleStream(_ any, stream grpc.ServerStream) error {
	full, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return status.Error(codes.Internal, "rpc: missing method")
	}
	path := strings.TrimPrefix(full, grpcServicePrefix)

	h, ok := s.handlers.lookup(path)
	if !ok {
		return status.Errorf(codes.Unimplemented, "%s: %s", ErrUnknownMethod, path)
	}

	var in []byte
	if err := stream.RecvMsg(&in); err != nil {
		return err
	}
	out, err := h(stream.Context(), in)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return stream.SendMsg(&out)
}

func (s *grpcServer) RegisterRaw(path string, handler RawHandler) error {
	return s.handlers.register(path, handler)
}

func (s *grpcServer) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.server.GracefulStop)
	defer stop()

	s.logger.Info("grpc server listening", zap.String("addr", s.Addr()))
	return s.server.Serve(s.listener)
}

func (s *grpcServer) Close() error {
	s.server.Stop()
	return nil
}

func (s *grpcServer) Addr() string {
	return s.listener.Addr().String()
}
