// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/luxfi/rpcrouter/router"
	"github.com/luxfi/rpcrouter/rpc"
	"github.com/luxfi/rpcrouter/transformer"
)

// ValidationError is one invalid field.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every invalid field of a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e))
	for _, err := range e {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := transformer.ByName(c.Router.Transformer); err != nil {
		add("router.transformer", "unknown transformer %q", c.Router.Transformer)
	}
	if c.Router.NamespaceDelimiter == "" {
		add("router.namespace_delimiter", "must not be empty")
	}
	if _, err := ParseFlagSeed(c.Router.FlagSeed); err != nil {
		add("router.flag_seed", "must be %q or %q", router.SeedNeutral, router.SeedEnvironment)
	}

	if !rpc.HasTransport(c.Server.Transport) {
		add("server.transport", "unknown transport %q, available: %s",
			c.Server.Transport, strings.Join(rpc.AvailableTransports(), ", "))
	}
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		add("server.address", "%v", err)
	}
	if c.Server.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(c.Server.MetricsAddress); err != nil {
			add("server.metrics_address", "%v", err)
		}
	}
	if c.Server.ShutdownTimeout < 0 {
		add("server.shutdown_timeout", "must not be negative")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		add("log.format", "must be json or console")
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	default:
		add("log.output", "must be stdout or stderr")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
