package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultsConfig(t *testing.T) Config {
	t.Helper()

	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()
	cfg := defaultsConfig(t)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "campusgraph", cfg.Logger.ServiceName)
	assert.Equal(t, "neo4j://127.0.0.1:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Database)
	assert.Equal(t, 10, cfg.Recommend.SuggestionLimit)
	assert.Equal(t, 5, cfg.Recommend.MaxDepth)
	assert.Equal(t, 50, cfg.Recommend.NetworkCap)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		cfg := defaultsConfig(t)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects missing neo4j uri", func(t *testing.T) {
		t.Parallel()
		cfg := defaultsConfig(t)
		cfg.Neo4j.URI = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects missing database", func(t *testing.T) {
		t.Parallel()
		cfg := defaultsConfig(t)
		cfg.Neo4j.Database = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive recommendation tunables", func(t *testing.T) {
		t.Parallel()
		for _, mutate := range []func(*Config){
			func(c *Config) { c.Recommend.SuggestionLimit = 0 },
			func(c *Config) { c.Recommend.MaxDepth = -1 },
			func(c *Config) { c.Recommend.NetworkCap = 0 },
		} {
			cfg := defaultsConfig(t)
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		}
	})
}
