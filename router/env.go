// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"os"
	"runtime"
	"sync"
	"testing"
)

// EnvVar names the environment variable holding the deployment mode
// ("production", "test", anything else means development).
const EnvVar = "ROUTER_ENV"

// Deployment modes recognized in EnvVar.
const (
	ModeProduction = "production"
	ModeTest       = "test"
)

// Environment holds the flags derived from the execution environment.
type Environment struct {
	IsServer bool
	IsDev    bool
}

// Signals is the set of ambient signals environment detection reads.
// Tests build one by hand to simulate arbitrary environments.
type Signals struct {
	GOOS    string
	Getenv  func(string) string
	Testing func() bool
}

// HostSignals returns a Signals reading the running process.
func HostSignals() Signals {
	return Signals{
		GOOS:    runtime.GOOS,
		Getenv:  os.Getenv,
		Testing: testing.Testing,
	}
}

// DetectEnvironment derives an Environment from s.
//
// A js/wasm build runs in a browser and is the only non-server target,
// unless the mode is "test" or a test binary is running. Every mode other
// than "production" is development.
func DetectEnvironment(s Signals) Environment {
	var mode string
	if s.Getenv != nil {
		mode = s.Getenv(EnvVar)
	}
	underTest := s.Testing != nil && s.Testing()

	return Environment{
		IsServer: s.GOOS != "js" || mode == ModeTest || underTest,
		IsDev:    mode != ModeProduction,
	}
}

// DefaultEnvironment returns the process-wide environment, detected from
// the host on first use and fixed afterwards.
var DefaultEnvironment = sync.OnceValue(func() Environment {
	return DetectEnvironment(HostSignals())
})
