// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Option configures a single JSON-RPC request.
type Option func(*Options)

// Options holds per-request settings of SendJSONRequest.
type Options struct {
	headers     http.Header
	queryParams url.Values
	logger      *zap.Logger
}

// NewOptions applies ops over empty options.
func NewOptions(ops []Option) *Options {
	o := &Options{
		headers:     http.Header{},
		queryParams: url.Values{},
		logger:      zap.NewNop(),
	}
	for _, op := range ops {
		op(o)
	}
	return o
}

// Headers returns the request headers.
func (o *Options) Headers() http.Header {
	return o.headers
}

// QueryParams returns the request query parameters.
func (o *Options) QueryParams() url.Values {
	return o.queryParams
}

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(o *Options) { o.headers.Add(key, value) }
}

// WithQueryParam adds a query parameter to the request URL.
func WithQueryParam(key, value string) Option {
	return func(o *Options) { o.queryParams.Add(key, value) }
}

// WithRequestLogger logs retries and failures of the request.
func WithRequestLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
