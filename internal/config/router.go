// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"

	"github.com/luxfi/rpcrouter/router"
	"github.com/luxfi/rpcrouter/transformer"
)

// ParseFlagSeed parses "neutral" or "environment".
func ParseFlagSeed(s string) (router.FlagSeed, error) {
	switch s {
	case router.SeedNeutral.String():
		return router.SeedNeutral, nil
	case router.SeedEnvironment.String():
		return router.SeedEnvironment, nil
	default:
		return 0, fmt.Errorf("config: unknown flag seed %q", s)
	}
}

// RouterOptions returns the router.Init options described by c.
func (c RouterConfig) RouterOptions() ([]router.Option, error) {
	tr, err := transformer.ByName(c.Transformer)
	if err != nil {
		return nil, err
	}

	opts := []router.Option{
		router.WithTransformer(tr),
		router.WithNamespaceDelimiter(c.NamespaceDelimiter),
		router.WithAllowOutsideOfServer(c.AllowOutsideOfServer),
	}
	if c.IsServer != nil {
		opts = append(opts, router.WithIsServer(*c.IsServer))
	}
	if c.IsDev != nil {
		opts = append(opts, router.WithIsDev(*c.IsDev))
	}
	return opts, nil
}

// ComposerOptions returns the router.NewComposer options described by c.
// The environment seed uses env with the configured overrides applied.
func (c RouterConfig) ComposerOptions(env router.Environment) ([]router.ComposerOption, error) {
	seed, err := ParseFlagSeed(c.FlagSeed)
	if err != nil {
		return nil, err
	}
	if seed == router.SeedNeutral {
		return []router.ComposerOption{router.WithFlagSeed(router.SeedNeutral)}, nil
	}

	if c.IsServer != nil {
		env.IsServer = *c.IsServer
	}
	if c.IsDev != nil {
		env.IsDev = *c.IsDev
	}
	return []router.ComposerOption{router.SeedFromEnvironment(env)}, nil
}
