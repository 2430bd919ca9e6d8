// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transformer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/luxfi/rpcrouter/router"
)

// ErrUnknownTransformer is returned for names ByName cannot resolve.
var ErrUnknownTransformer = errors.New("transformer: unknown transformer")

// Base transformer names. A compressed transformer is named
// "<base>+<compression>", e.g. "cbor+zstd".
const (
	NameJSON   = "json"
	NameCBOR   = "cbor"
	NameBinary = "binary"
)

var (
	cacheMu sync.Mutex
	cache   = map[string]router.Transformer{}
)

// ByName resolves a transformer name. "json" is router.DefaultTransformer(),
// so naming it is the same as leaving the transformer unset. The same name
// always yields the same value.
func ByName(name string) (router.Transformer, error) {
	base, algo, hasAlgo := strings.Cut(strings.ToLower(strings.TrimSpace(name)), "+")

	inner, err := baseByName(base)
	if err != nil {
		return nil, err
	}
	if !hasAlgo {
		return inner, nil
	}

	key := base + "+" + algo
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if t, ok := cache[key]; ok {
		return t, nil
	}

	c, err := ParseCompression(algo)
	if err != nil {
		return nil, err
	}
	t, err := Compressed(inner, c)
	if err != nil {
		return nil, err
	}
	cache[key] = t
	return t, nil
}

// Names lists the base transformer names.
func Names() []string {
	names := []string{NameJSON, NameCBOR, NameBinary}
	slices.Sort(names)
	return names
}

func baseByName(name string) (router.Transformer, error) {
	switch name {
	case NameJSON, "":
		return router.DefaultTransformer(), nil
	case NameCBOR:
		return CBOR, nil
	case NameBinary:
		return Binary, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransformer, name)
	}
}

func nameOf(t router.Transformer) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
