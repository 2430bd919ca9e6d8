// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

// Option configures Init.
type Option func(*rootOptions)

type rootOptions struct {
	env                  Environment
	transformer          Transformer
	errorFormatter       ErrorFormatter
	namespaceDelimiter   string
	isServer             *bool
	isDev                *bool
	allowOutsideOfServer bool
	types                any
}

// WithTransformer sets the payload transformer.
func WithTransformer(t Transformer) Option {
	return func(o *rootOptions) { o.transformer = t }
}

// WithErrorFormatter sets the error formatter.
func WithErrorFormatter(f ErrorFormatter) Option {
	return func(o *rootOptions) { o.errorFormatter = f }
}

// WithNamespaceDelimiter sets the delimiter joining nested paths.
func WithNamespaceDelimiter(d string) Option {
	return func(o *rootOptions) { o.namespaceDelimiter = d }
}

// WithEnvironment replaces the detected process environment.
func WithEnvironment(env Environment) Option {
	return func(o *rootOptions) { o.env = env }
}

// WithIsServer overrides the environment's server flag.
func WithIsServer(v bool) Option {
	return func(o *rootOptions) { o.isServer = &v }
}

// WithIsDev overrides the environment's development flag.
func WithIsDev(v bool) Option {
	return func(o *rootOptions) { o.isDev = &v }
}

// WithAllowOutsideOfServer permits a router outside of a server
// environment.
func WithAllowOutsideOfServer(v bool) Option {
	return func(o *rootOptions) { o.allowOutsideOfServer = v }
}

// WithTypes attaches opaque bookkeeping to every router built by the root.
func WithTypes(types any) Option {
	return func(o *rootOptions) { o.types = types }
}

// Root resolves a Config once and builds routers sharing it.
type Root struct {
	config Config
}

// Init resolves options against the process environment. It fails with
// ErrNotServer outside of a server unless AllowOutsideOfServer is set.
func Init(opts ...Option) (*Root, error) {
	o := &rootOptions{
		env:                DefaultEnvironment(),
		transformer:        DefaultTransformer(),
		errorFormatter:     DefaultFormatter(),
		namespaceDelimiter: DefaultNamespaceDelimiter,
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := DefaultConfig(o.env)
	if o.transformer != nil {
		cfg.Transformer = o.transformer
	}
	if o.errorFormatter != nil {
		cfg.ErrorFormatter = o.errorFormatter
	}
	if o.namespaceDelimiter != "" {
		cfg.NamespaceDelimiter = o.namespaceDelimiter
	}
	if o.isServer != nil {
		cfg.IsServer = *o.isServer
	}
	if o.isDev != nil {
		cfg.IsDev = *o.isDev
	}
	cfg.AllowOutsideOfServer = o.allowOutsideOfServer
	cfg.Types = o.types

	if !cfg.Servable() {
		return nil, ErrNotServer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Root{config: cfg}, nil
}

// Config returns the resolved configuration.
func (r *Root) Config() Config {
	return r.config
}

// Router builds a router from rec with the root's configuration.
func (r *Root) Router(rec Record) (*Router, error) {
	return Build(r.config)(rec)
}
