package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SETTINGS_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("SETTINGS_CACHE_TTL", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.RateLimitBurst)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("SETTINGS_CACHE_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
}
