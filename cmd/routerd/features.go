// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/internal/config"
	"github.com/luxfi/rpcrouter/observability"
	"github.com/luxfi/rpcrouter/router"
)

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type GreetInput struct {
	Name string `json:"name"`
}

type GreetOutput struct {
	Message string `json:"message"`
}

type DivideInput struct {
	Dividend float64 `json:"dividend"`
	Divisor  float64 `json:"divisor"`
}

type DivideOutput struct {
	Quotient float64 `json:"quotient"`
}

// features returns the records of every feature area, in merge order.
func features(started time.Time) []router.Record {
	health := router.Record{
		"health": router.Record{
			"check": router.Query(func(context.Context, struct{}) (HealthStatus, error) {
				return HealthStatus{
					Status:  "ok",
					Version: version,
					Uptime:  time.Since(started).Round(time.Second).String(),
				}, nil
			}),
		},
	}

	greeter := router.Record{
		"greeter": router.Record{
			"hello": router.Query(func(_ context.Context, in GreetInput) (GreetOutput, error) {
				name := strings.TrimSpace(in.Name)
				if name == "" {
					return GreetOutput{}, router.NewError(router.CodeBadRequest, "name is required")
				}
				return GreetOutput{Message: fmt.Sprintf("hello, %s", name)}, nil
			}),
		},
	}

	math := router.Record{
		"math": router.Record{
			"divide": router.Mutation(func(_ context.Context, in DivideInput) (DivideOutput, error) {
				if in.Divisor == 0 {
					return DivideOutput{}, router.NewError(router.CodeBadRequest, "division by zero")
				}
				return DivideOutput{Quotient: in.Dividend / in.Divisor}, nil
			}),
		},
	}

	return []router.Record{health, greeter, math}
}

// buildApp builds one router per feature area from cfg and merges them.
func buildApp(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*router.Router, error) {
	opts, err := cfg.Router.RouterOptions()
	if err != nil {
		return nil, err
	}
	root, err := router.Init(opts...)
	if err != nil {
		return nil, err
	}

	recs := features(time.Now())
	routers := make([]*router.Router, 0, len(recs))
	for _, rec := range recs {
		r, err := root.Router(rec)
		if err != nil {
			return nil, err
		}
		routers = append(routers, r)
	}

	composerOpts, err := cfg.Router.ComposerOptions(router.DefaultEnvironment())
	if err != nil {
		return nil, err
	}
	composerOpts = append(composerOpts,
		router.WithComposerLogger(logger),
		router.WithComposerMetrics(metrics),
	)
	return router.NewComposer(composerOpts...).Merge(routers...)
}
