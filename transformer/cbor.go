// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transformer

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/rpcrouter/router"
)

// cborTransformer encodes with Core Deterministic Encoding (RFC 8949
// §4.2) so equal values always produce equal bytes.
type cborTransformer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBOR() *cborTransformer {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transformer: CBOR encoder initialization failed: " + err.Error())
	}
	// Procedure inputs decoded into any must stay JSON compatible.
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("transformer: CBOR decoder initialization failed: " + err.Error())
	}
	return &cborTransformer{enc: enc, dec: dec}
}

func (t *cborTransformer) Encode(v any) ([]byte, error) {
	return t.enc.Marshal(v)
}

func (t *cborTransformer) Decode(data []byte, v any) error {
	return t.dec.Unmarshal(data, v)
}

func (*cborTransformer) String() string {
	return NameCBOR
}

// CBOR is the shared CBOR transformer.
var CBOR router.Transformer = newCBOR()
