// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/rpcrouter/router"
)

// ErrInvalidResponse is returned for responses without a valid status byte.
var ErrInvalidResponse = errors.New("rpc: invalid response")

// Every dispatched response starts with one status byte followed by the
// transformer-encoded output or error shape.
const (
	statusOK    byte = 0x00
	statusError byte = 0x01
)

// ProcedureError is a failed procedure as seen by the caller.
type ProcedureError struct {
	Path  string
	Shape router.ErrorShape

	raw         []byte
	transformer router.Transformer
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("rpc: %s: %s (%s)", e.Path, e.Shape.Message, e.Shape.Data.Code)
}

// Decode decodes the error as sent by the server into v, for routers with
// a custom error formatter.
func (e *ProcedureError) Decode(v any) error {
	return e.transformer.Decode(e.raw, v)
}

type rawCall func(ctx context.Context, method string, payload []byte) ([]byte, error)

func call(ctx context.Context, raw rawCall, t router.Transformer, path string, args, reply any) error {
	payload, err := encodeArgs(t, args)
	if err != nil {
		return err
	}
	resp, err := raw(ctx, path, payload)
	if err != nil {
		return err
	}
	return decodeResponse(t, path, resp, reply)
}

func encodeArgs(t router.Transformer, args any) ([]byte, error) {
	if args == nil {
		return nil, nil
	}
	payload, err := t.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	return payload, nil
}

func encodeResponse(t router.Transformer, status byte, v any) ([]byte, error) {
	body, err := t.Encode(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{status}, body...), nil
}

func decodeResponse(t router.Transformer, path string, resp []byte, reply any) error {
	if len(resp) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidResponse)
	}
	body := resp[1:]
	switch resp[0] {
	case statusOK:
		if reply == nil {
			return nil
		}
		if err := t.Decode(body, reply); err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
		return nil
	case statusError:
		perr := &ProcedureError{Path: path, raw: body, transformer: t}
		if err := t.Decode(body, &perr.Shape); err != nil {
			perr.Shape = router.ErrorShape{
				Code:    router.CodeInternalServerError,
				Message: "undecodable error shape",
				Data:    router.ErrorData{Code: router.CodeInternalServerError.String(), Path: path},
			}
		}
		return perr
	default:
		return fmt.Errorf("%w: status 0x%02x", ErrInvalidResponse, resp[0])
	}
}
