package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvUseLLM, "1")
	t.Setenv(EnvLLMMock, "0")
	t.Setenv(EnvForceLLM, "1")
	t.Setenv(EnvModel, "openrouter/auto")

	cfg := FromEnv()
	assert.True(t, cfg.UseLLM)
	assert.False(t, cfg.LLMMock)
	assert.True(t, cfg.ForceLLM)
	assert.Equal(t, "openrouter/auto", cfg.Model)

	// Defaults survive the env overlay.
	assert.Equal(t, "w-", cfg.Safety.ReservedPrefix)
	assert.Equal(t, 30, cfg.Safety.MaxDepth)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.UseLLM)
	assert.Equal(t, "flowbridge", cfg.Namespace)
	assert.Equal(t, 40000, cfg.Safety.EmbedSoftLimit)
	assert.Equal(t, 50000, cfg.Safety.EmbedHardLimit)
}
