package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nativeexport "github.com/analogrelay/go-native-export"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calcbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Calculate", cfg.Symbol)
	assert.Equal(t, 10*time.Second, cfg.Duration)
	assert.Positive(t, cfg.Workers)
	assert.True(t, cfg.Has(nativeexport.StrategyCgo))
	assert.False(t, cfg.Has(nativeexport.StrategyShared))
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
library: ./libcalculate.so
wasm: ./calculate.wasm
strategies: [go, shared, wasm]
workers: 3
duration: 1500ms
cosmos:
  database: interop
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "./libcalculate.so", cfg.Library)
	assert.Equal(t, "Calculate", cfg.Symbol)
	assert.Equal(t, []nativeexport.Strategy{"go", "shared", "wasm"}, cfg.Strategies)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration)
	assert.Equal(t, "interop", cfg.Cosmos.Database)
	assert.Equal(t, "Results", cfg.Cosmos.Container)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown strategy", func(c *Config) { c.Strategies = []nativeexport.Strategy{"jit"} }, "Config.Strategies[0]"},
		{"no strategies", func(c *Config) { c.Strategies = nil }, "Config.Strategies"},
		{"empty symbol", func(c *Config) { c.Symbol = "" }, "Config.Symbol"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "Config.Workers"},
		{"zero duration", func(c *Config) { c.Duration = 0 }, "Config.Duration"},
		{"bad endpoint", func(c *Config) { c.Cosmos.Endpoint = "not a url" }, "Config.Cosmos.Endpoint"},
		{"shared without library", func(c *Config) { c.Strategies = []nativeexport.Strategy{"shared"} }, "strategy shared requires library"},
		{"wasm without module", func(c *Config) { c.Strategies = []nativeexport.Strategy{"wasm"} }, "strategy wasm requires wasm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "workers: [1, 2]\n"))
	assert.ErrorContains(t, err, "parse error")
}
