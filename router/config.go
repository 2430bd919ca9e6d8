// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import "fmt"

// DefaultNamespaceDelimiter separates namespaces from procedure names in
// flattened router paths.
const DefaultNamespaceDelimiter = "."

// Config is the resolved configuration of a router. It is created once when
// the router is built and never changes afterwards.
type Config struct {
	// Transformer encodes procedure inputs and outputs.
	// DefaultTransformer() means "not configured".
	Transformer Transformer

	// ErrorFormatter shapes errors before they are returned to callers.
	// DefaultFormatter() means "not configured".
	ErrorFormatter ErrorFormatter

	// NamespaceDelimiter joins nested record keys into procedure paths.
	NamespaceDelimiter string

	// IsServer reports whether the router runs in a server environment.
	IsServer bool

	// IsDev enables development behavior such as stacks in error shapes.
	IsDev bool

	// AllowOutsideOfServer permits serving a router outside of a server
	// environment. Use with caution, this is mostly useful in tests.
	AllowOutsideOfServer bool

	// Types is opaque bookkeeping carried along for the router's author.
	// It has no runtime effect.
	Types any
}

// DefaultConfig returns a Config with every single-value field at its
// sentinel and the flags taken from env.
func DefaultConfig(env Environment) Config {
	return Config{
		Transformer:        DefaultTransformer(),
		ErrorFormatter:     DefaultFormatter(),
		NamespaceDelimiter: DefaultNamespaceDelimiter,
		IsServer:           env.IsServer,
		IsDev:              env.IsDev,
	}
}

// Validate reports configurations the router factory refuses to build.
func (c Config) Validate() error {
	if c.Transformer == nil {
		return fmt.Errorf("%w: transformer is nil", ErrInvalidConfig)
	}
	if c.ErrorFormatter == nil {
		return fmt.Errorf("%w: error formatter is nil", ErrInvalidConfig)
	}
	if c.NamespaceDelimiter == "" {
		return fmt.Errorf("%w: namespace delimiter is empty", ErrInvalidConfig)
	}
	return nil
}

// HasDefaultTransformer reports whether no transformer was configured.
func (c Config) HasDefaultTransformer() bool {
	return identical(c.Transformer, DefaultTransformer())
}

// HasDefaultFormatter reports whether no error formatter was configured.
func (c Config) HasDefaultFormatter() bool {
	return identical(c.ErrorFormatter, DefaultFormatter())
}

// Servable reports whether a router with this configuration may be served
// in the current environment.
func (c Config) Servable() bool {
	return c.IsServer || c.AllowOutsideOfServer
}
