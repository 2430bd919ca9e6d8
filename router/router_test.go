// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFlattensPaths(t *testing.T) {
	t.Parallel()

	r, err := Build(DefaultConfig(serverEnv))(Record{
		"health": echo("health"),
		"users": Record{
			"get": echo("users.get"),
			"admin": Record{
				"ban": Mutation(func(context.Context, string) (bool, error) { return true, nil }),
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"health", "users.admin.ban", "users.get"}, r.Paths())
	assert.Equal(t, 3, r.Len())

	p, ok := r.Procedure("users.admin.ban")
	require.True(t, ok)
	assert.Equal(t, MutationProcedure, p.Type())

	_, ok = r.Procedure("users")
	assert.False(t, ok)
}

func TestBuildMountsRouters(t *testing.T) {
	t.Parallel()

	users, err := Build(DefaultConfig(serverEnv))(Record{"get": echo("get")})
	require.NoError(t, err)

	cfg := DefaultConfig(serverEnv)
	cfg.NamespaceDelimiter = "/"
	app, err := Build(cfg)(Record{"users": users})
	require.NoError(t, err)

	assert.Equal(t, []string{"users/get"}, app.Paths())
	mounted, ok := app.Record()["users"].(*Router)
	require.True(t, ok)
	assert.Same(t, users, mounted)
}

func TestBuildRejects(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig(serverEnv)
	tests := []struct {
		name    string
		mutate  func(*Config)
		rec     Record
		wantErr error
	}{
		{
			name:    "nil transformer",
			mutate:  func(c *Config) { c.Transformer = nil },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "nil formatter",
			mutate:  func(c *Config) { c.ErrorFormatter = nil },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty delimiter",
			mutate:  func(c *Config) { c.NamespaceDelimiter = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty key",
			rec:     Record{"": echo("x")},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "key contains delimiter",
			rec:     Record{"users.get": echo("x")},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "nil procedure",
			rec:     Record{"x": (*Procedure)(nil)},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "nil router",
			rec:     Record{"x": (*Router)(nil)},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "nil node",
			rec:     Record{"x": nil},
			wantErr: ErrInvalidPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err := Build(cfg)(tt.rec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRouterAccessorsCopy(t *testing.T) {
	t.Parallel()

	r, err := Build(DefaultConfig(serverEnv))(Record{"ns": Record{"a": echo("a")}})
	require.NoError(t, err)

	rec := r.Record()
	rec["extra"] = echo("extra")
	rec["ns"].(Record)["b"] = echo("b")

	procs := r.Procedures()
	delete(procs, "ns.a")

	assert.Equal(t, []string{"ns.a"}, r.Paths())
	assert.NotContains(t, r.Record(), "extra")
	assert.Len(t, r.Record()["ns"], 1)
}

func TestProcedureInvoke(t *testing.T) {
	t.Parallel()

	type input struct {
		Name string `json:"name"`
	}
	p := Query(func(_ context.Context, in input) (string, error) {
		return "hello " + in.Name, nil
	})
	assert.Equal(t, QueryProcedure, p.Type())

	decode := func(v any) error {
		return json.Unmarshal([]byte(`{"name":"lux"}`), v)
	}
	out, err := p.Invoke(context.Background(), decode)
	require.NoError(t, err)
	assert.Equal(t, "hello lux", out)

	out, err = p.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello ", out)

	_, err = p.Invoke(context.Background(), func(any) error { return assert.AnError })
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodeParseError, perr.Code)
	assert.ErrorIs(t, err, assert.AnError)
}
