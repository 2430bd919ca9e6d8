// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"time"

	"github.com/luxfi/rpcrouter/observability"
	"github.com/luxfi/rpcrouter/rpc"
)

// Config is the routerd configuration.
type Config struct {
	Router RouterConfig            `yaml:"router" json:"router"`
	Server ServerConfig            `yaml:"server" json:"server"`
	Log    observability.LogConfig `yaml:"log" json:"log"`
}

// RouterConfig selects how feature routers are built and merged.
type RouterConfig struct {
	// Transformer is a transformer name such as "json" or "cbor+zstd".
	Transformer        string `yaml:"transformer" json:"transformer"`
	NamespaceDelimiter string `yaml:"namespace_delimiter" json:"namespace_delimiter"`

	// IsServer and IsDev override the detected environment when set.
	IsServer *bool `yaml:"is_server,omitempty" json:"is_server,omitempty"`
	IsDev    *bool `yaml:"is_dev,omitempty" json:"is_dev,omitempty"`

	AllowOutsideOfServer bool `yaml:"allow_outside_of_server" json:"allow_outside_of_server"`

	// FlagSeed is "neutral" or "environment".
	FlagSeed string `yaml:"flag_seed" json:"flag_seed"`
}

// ServerConfig configures the RPC listener.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	Address   string `yaml:"address" json:"address"`

	// MetricsAddress serves /metrics on its own listener. When empty the
	// JSON transport serves it next to /rpc and other transports expose
	// no metrics.
	MetricsAddress string `yaml:"metrics_address,omitempty" json:"metrics_address,omitempty"`

	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

const (
	DefaultAddress         = "127.0.0.1:9650"
	DefaultShutdownTimeout = 10 * time.Second
)

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() *Config {
	return &Config{
		Router: RouterConfig{
			Transformer:        "json",
			NamespaceDelimiter: ".",
			FlagSeed:           "neutral",
		},
		Server: ServerConfig{
			Transport:       rpc.DefaultTransport,
			Address:         DefaultAddress,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Log: observability.DefaultLogConfig(),
	}
}

// applyDefaults fills empty fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Router.Transformer == "" {
		c.Router.Transformer = d.Router.Transformer
	}
	if c.Router.NamespaceDelimiter == "" {
		c.Router.NamespaceDelimiter = d.Router.NamespaceDelimiter
	}
	if c.Router.FlagSeed == "" {
		c.Router.FlagSeed = d.Router.FlagSeed
	}
	if c.Server.Transport == "" {
		c.Server.Transport = d.Server.Transport
	}
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.Output == "" {
		c.Log.Output = d.Log.Output
	}
}
