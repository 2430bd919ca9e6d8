// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"maps"
	"slices"
)

// Router is an immutable bundle of procedures and their resolved config.
type Router struct {
	// record holds the caller's nodes as given, so routers sharing a
	// node under the same key merge without a duplicate path.
	record     Record
	procedures map[string]*Procedure
	config     Config
}

func (*Router) node() {}

// Build returns a factory producing routers with cfg. The factory rejects
// an invalid cfg instead of repairing it.
func Build(cfg Config) func(Record) (*Router, error) {
	return func(rec Record) (*Router, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		flat := make(map[string]*Procedure)
		if err := flatten(rec, cfg.NamespaceDelimiter, "", flat); err != nil {
			return nil, err
		}

		record := maps.Clone(rec)
		if record == nil {
			record = make(Record)
		}
		return &Router{
			record:     record,
			procedures: flat,
			config:     cfg,
		}, nil
	}
}

// Config returns the router's resolved configuration.
func (r *Router) Config() Config {
	return r.config
}

// Record returns a copy of the nested procedure tree. Mounted routers and
// procedures are returned as given to Build.
func (r *Router) Record() Record {
	return cloneRecord(r.record)
}

// Procedures returns a copy of the flattened path to procedure map.
func (r *Router) Procedures() map[string]*Procedure {
	return maps.Clone(r.procedures)
}

// Procedure looks up a procedure by its flattened path.
func (r *Router) Procedure(path string) (*Procedure, bool) {
	p, ok := r.procedures[path]
	return p, ok
}

// Paths returns every procedure path in lexical order.
func (r *Router) Paths() []string {
	return slices.Sorted(maps.Keys(r.procedures))
}

// Len returns the number of procedures.
func (r *Router) Len() int {
	return len(r.procedures)
}
