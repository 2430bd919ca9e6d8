// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a JSON-RPC style error code carried in error shapes.
type ErrorCode int

const (
	CodeParseError          ErrorCode = -32700
	CodeBadRequest          ErrorCode = -32600
	CodeInternalServerError ErrorCode = -32603
	CodeUnauthorized        ErrorCode = -32001
	CodeForbidden           ErrorCode = -32003
	CodeNotFound            ErrorCode = -32004
	CodeMethodNotSupported  ErrorCode = -32005
	CodeTimeout             ErrorCode = -32008
	CodeConflict            ErrorCode = -32009
	CodeTooManyRequests     ErrorCode = -32029
)

var codeNames = map[ErrorCode]string{
	CodeParseError:          "PARSE_ERROR",
	CodeBadRequest:          "BAD_REQUEST",
	CodeInternalServerError: "INTERNAL_SERVER_ERROR",
	CodeUnauthorized:        "UNAUTHORIZED",
	CodeForbidden:           "FORBIDDEN",
	CodeNotFound:            "NOT_FOUND",
	CodeMethodNotSupported:  "METHOD_NOT_SUPPORTED",
	CodeTimeout:             "TIMEOUT",
	CodeConflict:            "CONFLICT",
	CodeTooManyRequests:     "TOO_MANY_REQUESTS",
}

var codeStatus = map[ErrorCode]int{
	CodeParseError:          http.StatusBadRequest,
	CodeBadRequest:          http.StatusBadRequest,
	CodeInternalServerError: http.StatusInternalServerError,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeMethodNotSupported:  http.StatusMethodNotAllowed,
	CodeTimeout:             http.StatusRequestTimeout,
	CodeConflict:            http.StatusConflict,
	CodeTooManyRequests:     http.StatusTooManyRequests,
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(c))
}

// HTTPStatus maps the code to an HTTP status, 500 for unknown codes.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is returned by procedures to choose the code callers see.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewError returns an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError returns an Error with the given code caused by err.
func WrapError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Cause: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ToError returns err as an *Error, wrapping anything else as an internal
// server error.
func ToError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(CodeInternalServerError, err)
}

// ErrorData is the structured part of an ErrorShape.
type ErrorData struct {
	Code       string `json:"code"`
	HTTPStatus int    `json:"httpStatus"`
	Path       string `json:"path,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

// ErrorShape is what callers receive for a failed procedure.
type ErrorShape struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`
}

// DefaultShape builds the shape for err raised at path. Stack is only
// kept when dev is set.
func DefaultShape(err *Error, path, stack string, dev bool) ErrorShape {
	shape := ErrorShape{
		Code:    err.Code,
		Message: err.Error(),
		Data: ErrorData{
			Code:       err.Code.String(),
			HTTPStatus: err.Code.HTTPStatus(),
			Path:       path,
		},
	}
	if dev {
		shape.Data.Stack = stack
	}
	return shape
}

// FormatErrorOptions is the input of an ErrorFormatter.
type FormatErrorOptions struct {
	Error *Error
	Path  string
	Type  ProcedureType
	Shape ErrorShape
}

// ErrorFormatter turns a procedure error into the value sent to callers.
// Routers compare formatters by identity.
type ErrorFormatter interface {
	FormatError(opts FormatErrorOptions) any
}

// ErrorFormatterFunc is the function form of ErrorFormatter. Function
// values are not comparable, so wrap them with NewErrorFormatter before
// putting them in a Config.
type ErrorFormatterFunc func(opts FormatErrorOptions) any

type funcFormatter struct {
	fn ErrorFormatterFunc
}

func (f *funcFormatter) FormatError(opts FormatErrorOptions) any {
	return f.fn(opts)
}

// NewErrorFormatter returns a formatter with its own identity. Share the
// returned value between routers that should merge cleanly.
func NewErrorFormatter(fn ErrorFormatterFunc) ErrorFormatter {
	return &funcFormatter{fn: fn}
}

// shapeFormatter carries a name so it is not zero-size; distinct
// instances must have distinct addresses.
type shapeFormatter struct {
	name string
}

func (*shapeFormatter) FormatError(opts FormatErrorOptions) any {
	return opts.Shape
}

func (f *shapeFormatter) String() string {
	return f.name
}

var defaultFormatter ErrorFormatter = &shapeFormatter{name: "default"}

// DefaultFormatter returns the sentinel used when no error formatter is
// configured. It returns the default shape unchanged.
func DefaultFormatter() ErrorFormatter {
	return defaultFormatter
}
