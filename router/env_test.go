// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEnvironment(t *testing.T) {
	t.Parallel()

	env := func(mode string) func(string) string {
		return func(key string) string {
			if key == EnvVar {
				return mode
			}
			return ""
		}
	}
	yes := func() bool { return true }
	no := func() bool { return false }

	tests := []struct {
		name    string
		signals Signals
		want    Environment
	}{
		{
			name:    "linux production",
			signals: Signals{GOOS: "linux", Getenv: env(ModeProduction), Testing: no},
			want:    Environment{IsServer: true, IsDev: false},
		},
		{
			name:    "linux unset mode",
			signals: Signals{GOOS: "linux", Getenv: env(""), Testing: no},
			want:    Environment{IsServer: true, IsDev: true},
		},
		{
			name:    "browser",
			signals: Signals{GOOS: "js", Getenv: env(ModeProduction), Testing: no},
			want:    Environment{IsServer: false, IsDev: false},
		},
		{
			name:    "browser test mode",
			signals: Signals{GOOS: "js", Getenv: env(ModeTest), Testing: no},
			want:    Environment{IsServer: true, IsDev: true},
		},
		{
			name:    "browser test binary",
			signals: Signals{GOOS: "js", Getenv: env("development"), Testing: yes},
			want:    Environment{IsServer: true, IsDev: true},
		},
		{
			name:    "empty signals",
			signals: Signals{},
			want:    Environment{IsServer: true, IsDev: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEnvironment(tt.signals))
		})
	}
}

func TestDefaultEnvironmentIsServerUnderTest(t *testing.T) {
	t.Parallel()

	assert.True(t, DefaultEnvironment().IsServer)
	assert.Equal(t, DefaultEnvironment(), DefaultEnvironment())
}
