// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrZAPClosed       = errors.New("zap: connection closed")
	ErrZAPTimeout      = errors.New("zap: request timeout")
	ErrZAPFrameTooLong = errors.New("zap: frame too long")
)

// maxFrameSize bounds a single ZAP frame body.
const maxFrameSize = 64 << 20

const writeTimeout = 30 * time.Second

// MessageType identifies ZAP message types
type MessageType uint8

const (
	MsgRequest  MessageType = 0x01
	MsgResponse MessageType = 0x02
	MsgError    MessageType = 0x03
	MsgNotify   MessageType = 0x04
)

// RemoteError is a transport level failure reported by the peer, such as
// an unknown method. Procedure failures are *ProcedureError instead.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "rpc: remote: " + e.Message
}

// Frame layouts, after the 4 byte big endian length prefix:
//
//	request:  [1 type][4 reqID][2 methodLen][method][payload]
//	notify:   [1 type][2 methodLen][method][payload]
//	response: [1 type][4 reqID][payload]

func encodeRequest(id uint32, method string, payload []byte) []byte {
	buf := make([]byte, 4+1+4+2+len(method)+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)-4))
	buf[4] = byte(MsgRequest)
	binary.BigEndian.PutUint32(buf[5:9], id)
	binary.BigEndian.PutUint16(buf[9:11], uint16(len(method)))
	n := copy(buf[11:], method)
	copy(buf[11+n:], payload)
	return buf
}

func encodeNotify(method string, payload []byte) []byte {
	buf := make([]byte, 4+1+2+len(method)+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)-4))
	buf[4] = byte(MsgNotify)
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(method)))
	n := copy(buf[7:], method)
	copy(buf[7+n:], payload)
	return buf
}

func encodeReply(typ MessageType, id uint32, payload []byte) []byte {
	buf := make([]byte, 4+1+4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)-4))
	buf[4] = byte(typ)
	binary.BigEndian.PutUint32(buf[5:9], id)
	copy(buf[9:], payload)
	return buf
}

// readFrame reads one length-prefixed frame body from r.
func readFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrZAPFrameTooLong, n)
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// parseMethod splits [2 methodLen][method][payload].
func parseMethod(msg []byte) (string, []byte, bool) {
	if len(msg) < 2 {
		return "", nil, false
	}
	n := int(binary.BigEndian.Uint16(msg[0:2]))
	if len(msg) < 2+n {
		return "", nil, false
	}
	return string(msg[2 : 2+n]), msg[2+n:], true
}

func checkMethod(method string) error {
	if len(method) > 0xFFFF {
		return fmt.Errorf("zap: method name too long: %d bytes", len(method))
	}
	return nil
}

// ZAPConn represents a ZAP connection for RPC
type ZAPConn struct {
	conn     net.Conn
	writeMu  sync.Mutex
	pending  sync.Map // requestID -> chan *ZAPResponse
	nextID   atomic.Uint32
	closed   atomic.Bool
	readDone chan struct{}
}

// ZAPResponse holds a response from a ZAP call
type ZAPResponse struct {
	Data []byte
	Err  error
}

// ZAPDial connects to a ZAP server
func ZAPDial(ctx context.Context, addr string) (*ZAPConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("zap dial: %w", err)
	}

	zc := &ZAPConn{
		conn:     conn,
		readDone: make(chan struct{}),
	}
	go zc.readLoop()
	return zc, nil
}

func (z *ZAPConn) write(buf []byte) error {
	z.writeMu.Lock()
	defer z.writeMu.Unlock()
	if _, err := z.conn.Write(buf); err != nil {
		return fmt.Errorf("zap write: %w", err)
	}
	return nil
}

// Call makes a ZAP RPC call
func (z *ZAPConn) Call(ctx context.Context, method string, payload []byte) ([]byte, error) {
	if z.closed.Load() {
		return nil, ErrZAPClosed
	}
	if err := checkMethod(method); err != nil {
		return nil, err
	}

	requestID := z.nextID.Add(1)
	respCh := make(chan *ZAPResponse, 1)
	z.pending.Store(requestID, respCh)
	defer z.pending.Delete(requestID)

	if err := z.write(encodeRequest(requestID, method, payload)); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrZAPTimeout, method)
		}
		return nil, ctx.Err()
	case resp := <-respCh:
		if resp.Err != nil {
			return nil, resp.Err
		}
		return resp.Data, nil
	case <-z.readDone:
		return nil, ErrZAPClosed
	}
}

// Notify sends a one-way notification (no response expected)
func (z *ZAPConn) Notify(_ context.Context, method string, payload []byte) error {
	if z.closed.Load() {
		return ErrZAPClosed
	}
	if err := checkMethod(method); err != nil {
		return err
	}
	return z.write(encodeNotify(method, payload))
}

func (z *ZAPConn) readLoop() {
	defer close(z.readDone)

	for {
		msg, err := readFrame(z.conn)
		if err != nil {
			return
		}
		if len(msg) < 5 {
			continue
		}

		msgType := MessageType(msg[0])
		requestID := binary.BigEndian.Uint32(msg[1:5])
		payload := msg[5:]

		ch, ok := z.pending.Load(requestID)
		if !ok {
			continue
		}
		respCh := ch.(chan *ZAPResponse)
		switch msgType {
		case MsgResponse:
			respCh <- &ZAPResponse{Data: payload}
		case MsgError:
			respCh <- &ZAPResponse{Err: &RemoteError{Message: string(payload)}}
		}
	}
}

// Close closes the connection
func (z *ZAPConn) Close() error {
	if z.closed.Swap(true) {
		return nil
	}
	return z.conn.Close()
}

// ZAPServer handles incoming ZAP RPC requests
type ZAPServer struct {
	listener net.Listener
	handler  ZAPHandler
	logger   *zap.Logger
	conns    sync.Map
	closed   atomic.Bool
}

// ZAPHandler handles ZAP requests
type ZAPHandler interface {
	HandleZAP(ctx context.Context, method string, payload []byte) ([]byte, error)
}

// ZAPHandlerFunc is a function adapter for ZAPHandler
type ZAPHandlerFunc func(ctx context.Context, method string, payload []byte) ([]byte, error)

func (f ZAPHandlerFunc) HandleZAP(ctx context.Context, method string, payload []byte) ([]byte, error) {
	return f(ctx, method, payload)
}

// NewZAPServer creates a new ZAP server. A nil logger discards logs.
func NewZAPServer(listener net.Listener, handler ZAPHandler, logger *zap.Logger) *ZAPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZAPServer{
		listener: listener,
		handler:  handler,
		logger:   logger,
	}
}

// Serve accepts connections until the server is closed or ctx is done.
func (s *ZAPServer) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	s.logger.Info("zap server listening", zap.String("addr", s.listener.Addr().String()))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("zap accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *ZAPServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.conns.Store(conn, struct{}{})
	defer s.conns.Delete(conn)

	remote := conn.RemoteAddr().String()
	var writeMu sync.Mutex
	for {
		msg, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				s.logger.Debug("zap connection dropped", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		switch MessageType(msg[0]) {
		case MsgRequest:
			if len(msg) < 7 {
				continue
			}
			requestID := binary.BigEndian.Uint32(msg[1:5])
			method, payload, ok := parseMethod(msg[5:])
			if !ok {
				continue
			}
			go func() {
				respData, err := s.handler.HandleZAP(ctx, method, payload)
				s.sendResponse(conn, &writeMu, requestID, respData, err)
			}()

		case MsgNotify:
			method, payload, ok := parseMethod(msg[1:])
			if !ok {
				continue
			}
			go func() {
				if _, err := s.handler.HandleZAP(ctx, method, payload); err != nil {
					s.logger.Debug("zap notify failed", zap.String("method", method), zap.Error(err))
				}
			}()

		default:
			s.logger.Debug("zap unexpected frame", zap.String("remote", remote), zap.Uint8("type", msg[0]))
		}
	}
}

func (s *ZAPServer) sendResponse(conn net.Conn, mu *sync.Mutex, requestID uint32, data []byte, err error) {
	buf := encodeReply(MsgResponse, requestID, data)
	if err != nil {
		buf = encodeReply(MsgError, requestID, []byte(err.Error()))
	}

	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, werr := conn.Write(buf); werr != nil {
		s.logger.Debug("zap write failed", zap.Uint32("request_id", requestID), zap.Error(werr))
	}
}

// Close closes the server
func (s *ZAPServer) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return s.listener.Close()
}

// Addr returns the listener address
func (s *ZAPServer) Addr() net.Addr {
	return s.listener.Addr()
}
