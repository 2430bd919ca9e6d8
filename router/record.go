// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Node is an entry of a Record: a *Procedure, a nested Record or a
// *Router mounted under a namespace.
type Node interface {
	node()
}

// Record maps path segments to nodes.
type Record map[string]Node

func (Record) node() {}

// MergeRecords combines records into a new one at the top level. A key
// that an earlier record already holds with a different node fails with a
// *DuplicatePathError; the same node repeated under the same key is kept
// once. Inputs are not modified.
func MergeRecords(records ...Record) (Record, error) {
	merged := make(Record)
	for _, rec := range records {
		for _, key := range slices.Sorted(maps.Keys(rec)) {
			node := rec[key]
			if prev, ok := merged[key]; ok && !identical(prev, node) {
				return nil, &DuplicatePathError{Path: key}
			}
			merged[key] = node
		}
	}
	return merged, nil
}

// flatten validates rec and collects every procedure under its delimited
// path. Mounted routers contribute their own records.
func flatten(rec Record, delimiter, prefix string, flat map[string]*Procedure) error {
	for key, node := range rec {
		if key == "" {
			return fmt.Errorf("%w: empty key under %q", ErrInvalidPath, prefix)
		}
		if strings.Contains(key, delimiter) {
			return fmt.Errorf("%w: key %q contains delimiter %q", ErrInvalidPath, key, delimiter)
		}

		path := key
		if prefix != "" {
			path = prefix + delimiter + key
		}

		switch n := node.(type) {
		case *Procedure:
			if n == nil {
				return fmt.Errorf("%w: nil procedure at %q", ErrInvalidPath, path)
			}
			flat[path] = n
		case Record:
			if err := flatten(n, delimiter, path, flat); err != nil {
				return err
			}
		case *Router:
			if n == nil {
				return fmt.Errorf("%w: nil router at %q", ErrInvalidPath, path)
			}
			if err := flatten(n.record, delimiter, path, flat); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unsupported node %T at %q", ErrInvalidPath, node, path)
		}
	}
	return nil
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for key, node := range rec {
		if child, ok := node.(Record); ok {
			out[key] = cloneRecord(child)
			continue
		}
		out[key] = node
	}
	return out
}
