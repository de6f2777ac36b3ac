package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gpt-4o-mini", cfg.SimpleModel)
	assert.Equal(t, "gpt-4o", cfg.ComplexModel)
	assert.Equal(t, 8000, cfg.TokenBudget)
	assert.Equal(t, 10, cfg.MaxItems)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.False(t, cfg.RenderPages)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SIMPLE_MODEL", "small-model")
	t.Setenv("TOKEN_BUDGET", "2000")
	t.Setenv("RENDER_PAGES", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "small-model", cfg.SimpleModel)
	assert.Equal(t, 2000, cfg.TokenBudget)
	assert.True(t, cfg.RenderPages)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("TOKEN_BUDGET", "not-a-number")
	t.Setenv("RENDER_PAGES", "maybe")

	cfg := Load()

	assert.Equal(t, 8000, cfg.TokenBudget)
	assert.False(t, cfg.RenderPages)
}
