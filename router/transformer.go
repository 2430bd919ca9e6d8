// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"encoding/json"
)

// Transformer encodes and decodes procedure payloads.
//
// Routers compare transformers by identity, so implementations should be
// pointer types. Two routers sharing one instance never conflict. Value
// types that are not comparable are compared by deep equality.
type Transformer interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// jsonTransformer is the built-in JSON transformer.
type jsonTransformer struct {
	name string
}

func (*jsonTransformer) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (*jsonTransformer) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (t *jsonTransformer) String() string {
	return t.name
}

// defaultTransformer is the transformer sentinel, compared by identity.
var defaultTransformer Transformer = &jsonTransformer{name: "json"}

// DefaultTransformer returns the sentinel used when no transformer is
// configured. It encodes JSON.
func DefaultTransformer() Transformer {
	return defaultTransformer
}

// NewJSONTransformer returns a JSON transformer that is distinct from
// DefaultTransformer, for authors who want JSON to count as an explicit
// choice during merges.
func NewJSONTransformer() Transformer {
	return &jsonTransformer{name: "json(explicit)"}
}
