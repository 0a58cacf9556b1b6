package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Endpoint)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 100, cfg.Analyzer.MinRegionArea)
	assert.Equal(t, 10000, cfg.Analyzer.MaxRegionArea)
	assert.Equal(t, time.Second, cfg.Executor.StepDelay)
	assert.Equal(t, 50, cfg.History.MaxSize)
	assert.Contains(t, cfg.Executor.MediaMarkers, "remix")

	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("llm.provider", "gemini")
		v.Set("llm.model", "gemini-2.0-flash")
		v.Set("executor.step_delay", "250ms")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
		assert.Equal(t, 250*time.Millisecond, cfg.Executor.StepDelay)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("llm.provider", "gpt")

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.provider")
	})

	t.Run("expands history path", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.NotContains(t, cfg.History.Path, "~")
	})
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.LLM.Timeout = -time.Second },
			errSub: "llm.timeout",
		},
		{
			name:   "zero downscale",
			mutate: func(c *Config) { c.Analyzer.Downscale = 0 },
			errSub: "analyzer.downscale",
		},
		{
			name: "inverted area band",
			mutate: func(c *Config) {
				c.Analyzer.MinRegionArea = 500
				c.Analyzer.MaxRegionArea = 400
			},
			errSub: "min_region_area",
		},
		{
			name:   "negative failsafe margin",
			mutate: func(c *Config) { c.Executor.FailsafeMargin = -1 },
			errSub: "failsafe_margin",
		},
		{
			name:   "zero history size",
			mutate: func(c *Config) { c.History.MaxSize = 0 },
			errSub: "history.max_size",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSub)
		})
	}
}
