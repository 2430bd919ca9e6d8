// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"context"
)

// ProcedureType distinguishes reads from writes.
type ProcedureType string

const (
	QueryProcedure    ProcedureType = "query"
	MutationProcedure ProcedureType = "mutation"
)

// Decoder fills v from the raw call input.
type Decoder func(v any) error

// Procedure is a callable leaf of a router. The composition layer treats
// it as an opaque handle; only transports invoke it.
type Procedure struct {
	typ    ProcedureType
	invoke func(ctx context.Context, decode Decoder) (any, error)
}

func (*Procedure) node() {}

// Type returns whether p is a query or a mutation.
func (p *Procedure) Type() ProcedureType {
	return p.typ
}

// Invoke decodes the input with decode and runs the procedure.
func (p *Procedure) Invoke(ctx context.Context, decode Decoder) (any, error) {
	return p.invoke(ctx, decode)
}

// Query returns a read procedure around fn.
func Query[I, O any](fn func(ctx context.Context, in I) (O, error)) *Procedure {
	return newProcedure(QueryProcedure, fn)
}

// Mutation returns a write procedure around fn.
func Mutation[I, O any](fn func(ctx context.Context, in I) (O, error)) *Procedure {
	return newProcedure(MutationProcedure, fn)
}

func newProcedure[I, O any](typ ProcedureType, fn func(ctx context.Context, in I) (O, error)) *Procedure {
	return &Procedure{
		typ: typ,
		invoke: func(ctx context.Context, decode Decoder) (any, error) {
			var in I
			if decode != nil {
				if err := decode(&in); err != nil {
					return nil, WrapError(CodeParseError, err)
				}
			}
			return fn(ctx, in)
		},
	}
}
