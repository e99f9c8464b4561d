// Package pipeline wires the pass chain together: one call in, one artifact
// bundle out.
package pipeline

import (
	"github.com/spf13/viper"

	"github.com/flowbridge/compiler/internal/normalize"
	"github.com/flowbridge/compiler/internal/safety"
)

// Config is the read-only knob set threaded through one import run. There is
// no process-wide singleton; callers construct it once and pass it down.
type Config struct {
	// UseLLM enables the semantic patch round when a client is supplied.
	UseLLM bool
	// LLMMock routes the semantic round through the in-process mock.
	LLMMock bool
	// ForceLLM invokes the model even when the deterministic pipeline left
	// nothing on the table.
	ForceLLM bool
	// Model forwarded to the semantic endpoint.
	Model string
	// Namespace stamped on the token manifest.
	Namespace string

	Normalize normalize.Options
	Safety    safety.Config
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		Namespace: "flowbridge",
		Safety:    safety.DefaultConfig(),
	}
}

// Environment variable names consumed by the core.
const (
	EnvUseLLM   = "USE_LLM"
	EnvLLMMock  = "FLOWBRIDGE_LLM_MOCK"
	EnvForceLLM = "FLOWBRIDGE_FORCE_LLM"
	EnvModel    = "OPENROUTER_MODEL"
)

// FromEnv builds a Config from the process environment on top of defaults.
func FromEnv() Config {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range []string{EnvUseLLM, EnvLLMMock, EnvForceLLM, EnvModel} {
		_ = v.BindEnv(key)
	}

	cfg := Default()
	cfg.UseLLM = v.GetBool(EnvUseLLM)
	cfg.LLMMock = v.GetBool(EnvLLMMock)
	cfg.ForceLLM = v.GetBool(EnvForceLLM)
	cfg.Model = v.GetString(EnvModel)
	return cfg
}
