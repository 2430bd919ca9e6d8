// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
)

// Composition errors. All of them abort the merge or build that produced
// them; no partial router is ever returned.
var (
	ErrErrorFormatterConflict     = errors.New("router: you seem to have several error formatters")
	ErrTransformerConflict        = errors.New("router: you seem to have several transformers")
	ErrNamespaceDelimiterConflict = errors.New("router: you seem to have several namespace delimiters")
	ErrDuplicateProcedurePath     = errors.New("router: duplicate procedure path")
	ErrInvalidConfig              = errors.New("router: invalid config")
	ErrInvalidPath                = errors.New("router: invalid path")
	ErrNotServer                  = errors.New("router: not a server environment, set AllowOutsideOfServer to use it anyway")
)

// Configuration fields that can conflict during a merge.
const (
	FieldErrorFormatter     = "errorFormatter"
	FieldTransformer        = "transformer"
	FieldNamespaceDelimiter = "namespaceDelimiter"
)

// ConflictError reports two routers that set different explicit values for
// the same configuration field. First and Second index the input list.
type ConflictError struct {
	Field  string
	First  int
	Second int
	err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (routers %d and %d)", e.err, e.First, e.Second)
}

func (e *ConflictError) Unwrap() error {
	return e.err
}

// DuplicatePathError reports a key defined by two records with different
// nodes.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateProcedurePath, e.Path)
}

func (e *DuplicatePathError) Unwrap() error {
	return ErrDuplicateProcedurePath
}
