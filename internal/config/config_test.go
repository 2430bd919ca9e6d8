// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/rpcrouter/router"
	"github.com/luxfi/rpcrouter/rpc"
	"github.com/luxfi/rpcrouter/transformer"
)

const yamlConfig = `
router:
  transformer: cbor+zstd
  namespace_delimiter: /
  is_dev: false
  flag_seed: environment
server:
  transport: ${RPCROUTER_TEST_TRANSPORT:-json}
  address: 127.0.0.1:0
  metrics_address: 127.0.0.1:9100
  shutdown_timeout: 3s
log:
  level: debug
  format: console
`

const jsoncConfig = `{
  // JSON with comments
  "router": {
    "transformer": "binary",
    "allow_outside_of_server": true,
  },
  "server": {
    "address": "0.0.0.0:${RPCROUTER_TEST_PORT:-9650}",
    /* trailing commas are fine */
    "shutdown_timeout": "1m",
  },
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "routerd.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, "cbor+zstd", cfg.Router.Transformer)
	assert.Equal(t, "/", cfg.Router.NamespaceDelimiter)
	require.NotNil(t, cfg.Router.IsDev)
	assert.False(t, *cfg.Router.IsDev)
	assert.Nil(t, cfg.Router.IsServer)
	assert.Equal(t, "environment", cfg.Router.FlagSeed)

	assert.Equal(t, rpc.TransportJSON, cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddress)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadJSONC(t *testing.T) {
	t.Setenv("RPCROUTER_TEST_PORT", "7000")

	cfg, err := Load(writeFile(t, "routerd.jsonc", jsoncConfig))
	require.NoError(t, err)

	assert.Equal(t, "binary", cfg.Router.Transformer)
	assert.True(t, cfg.Router.AllowOutsideOfServer)
	assert.Equal(t, ".", cfg.Router.NamespaceDelimiter)
	assert.Equal(t, "0.0.0.0:7000", cfg.Server.Address)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, rpc.DefaultTransport, cfg.Server.Transport)
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatYAML, FormatJSONC} {
		cfg, err := LoadFromReader(strings.NewReader(""), format)
		require.NoError(t, err, format)
		assert.Equal(t, DefaultConfig(), cfg, format)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(writeFile(t, "routerd.toml", ""))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Parse([]byte("router: [1, 2"), FormatYAML)
	assert.ErrorContains(t, err, "failed to parse YAML")

	_, err = Parse([]byte("routers: {}"), FormatYAML)
	assert.ErrorContains(t, err, "failed to parse YAML")

	_, err = Parse([]byte(`{"server": {"shutdown_timeout": "soon"}}`), FormatJSONC)
	assert.ErrorContains(t, err, "failed to parse JSONC")

	_, err = Parse(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Router.Transformer = "xml"
	cfg.Router.FlagSeed = "random"
	cfg.Server.Transport = "carrier-pigeon"
	cfg.Server.Address = "nowhere"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)

	paths := make([]string, len(errs))
	for i, e := range errs {
		paths[i] = e.Path
	}
	assert.ElementsMatch(t, []string{
		"router.transformer",
		"router.flag_seed",
		"server.transport",
		"server.address",
		"log.level",
	}, paths)
	assert.Contains(t, err.Error(), "5 validation errors")

	assert.NoError(t, DefaultConfig().Validate())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("RPCROUTER_TEST_SET", "value")

	tests := []struct {
		in, want string
	}{
		{"${RPCROUTER_TEST_SET}", "value"},
		{"${RPCROUTER_TEST_SET:-fallback}", "value"},
		{"${RPCROUTER_TEST_UNSET:-fallback}", "fallback"},
		{"${RPCROUTER_TEST_UNSET}", ""},
		{"$${RPCROUTER_TEST_SET}", "${RPCROUTER_TEST_SET}"},
		{"no vars", "no vars"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, substituteEnvVars(tt.in), tt.in)
	}
}

func TestRouterOptions(t *testing.T) {
	t.Parallel()

	yes := true
	rc := RouterConfig{
		Transformer:        "cbor",
		NamespaceDelimiter: ":",
		IsDev:              &yes,
		FlagSeed:           "neutral",
	}
	opts, err := rc.RouterOptions()
	require.NoError(t, err)

	root, err := router.Init(append([]router.Option{
		router.WithEnvironment(router.Environment{IsServer: true}),
	}, opts...)...)
	require.NoError(t, err)

	cfg := root.Config()
	assert.Same(t, transformer.CBOR, cfg.Transformer)
	assert.Equal(t, ":", cfg.NamespaceDelimiter)
	assert.True(t, cfg.IsDev)

	rc.Transformer = "xml"
	_, err = rc.RouterOptions()
	assert.ErrorIs(t, err, transformer.ErrUnknownTransformer)
}

func TestComposerOptions(t *testing.T) {
	t.Parallel()

	no := false
	cfg := router.DefaultConfig(router.Environment{})
	r, err := router.Build(cfg)(router.Record{})
	require.NoError(t, err)

	rc := RouterConfig{FlagSeed: "environment", IsDev: &no}
	opts, err := rc.ComposerOptions(router.Environment{IsServer: true, IsDev: true})
	require.NoError(t, err)
	merged, err := router.NewComposer(opts...).Merge(r)
	require.NoError(t, err)
	assert.True(t, merged.Config().IsServer)
	assert.False(t, merged.Config().IsDev)

	rc.FlagSeed = "neutral"
	opts, err = rc.ComposerOptions(router.Environment{IsServer: true, IsDev: true})
	require.NoError(t, err)
	merged, err = router.NewComposer(opts...).Merge(r)
	require.NoError(t, err)
	assert.False(t, merged.Config().IsServer)

	rc.FlagSeed = "sideways"
	_, err = rc.ComposerOptions(router.Environment{})
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	d := Duration(90 * time.Second)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	var got Duration
	require.NoError(t, got.UnmarshalJSON([]byte(`"2s"`)))
	assert.Equal(t, 2*time.Second, got.Duration())
	require.NoError(t, got.UnmarshalJSON([]byte(`null`)))
	assert.Zero(t, got)
	assert.Error(t, got.UnmarshalJSON([]byte(`"tomorrow"`)))

	v, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", v)
}
