// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transformer

import (
	"encoding/json"

	"github.com/luxfi/rpcrouter/router"
)

// binaryTransformer passes bytes through unchanged and falls back to JSON
// for anything else.
type binaryTransformer struct {
	name string
}

func (*binaryTransformer) Encode(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	}
	return json.Marshal(v)
}

func (*binaryTransformer) Decode(data []byte, v any) error {
	if b, ok := v.(*[]byte); ok {
		*b = append((*b)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}

func (t *binaryTransformer) String() string {
	return t.name
}

// Binary is the shared pass-through transformer for pre-encoded payloads.
var Binary router.Transformer = &binaryTransformer{name: NameBinary}
