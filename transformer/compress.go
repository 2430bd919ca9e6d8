// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transformer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/luxfi/rpcrouter/router"
)

// Compression identifies the algorithm of a compressed transformer.
type Compression uint8

const (
	// Zstd suits text-like payloads such as JSON.
	Zstd Compression = iota + 1
	// LZ4 trades ratio for speed on binary payloads.
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("%w: compression %q", ErrUnknownTransformer, name)
	}
}

// compressed compresses the output of an inner transformer.
type compressed struct {
	inner router.Transformer
	algo  Compression
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// Compressed returns a new transformer compressing inner's output with
// algo. Each call returns a distinct identity; use ByName to share one.
func Compressed(inner router.Transformer, algo Compression) (router.Transformer, error) {
	t := &compressed{inner: inner, algo: algo}
	switch algo {
	case Zstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		t.enc, t.dec = enc, dec
	case LZ4:
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownTransformer, algo)
	}
	return t, nil
}

func (t *compressed) Encode(v any) ([]byte, error) {
	raw, err := t.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	switch t.algo {
	case Zstd:
		return t.enc.EncodeAll(raw, nil), nil
	default:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	}
}

func (t *compressed) Decode(data []byte, v any) error {
	var raw []byte
	switch t.algo {
	case Zstd:
		out, err := t.dec.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
		raw = out
	default:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		raw = out
	}
	return t.inner.Decode(raw, v)
}

func (t *compressed) String() string {
	return fmt.Sprintf("%s+%s", nameOf(t.inner), t.algo)
}
