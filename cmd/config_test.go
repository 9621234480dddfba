package cmd

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := configFromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 3, cfg.ETAMinSamples)
	assert.Equal(t, 1, cfg.ETAMinMinutes)
	assert.Equal(t, "@every 15m", cfg.StatsRecomputeSchedule)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=tracking sslmode=disable", cfg.DSN())
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg, err := configFromEnv(lookupFrom(map[string]string{
		"HTTP_PORT":                "9000",
		"LOG_LEVEL":                "debug",
		"STORAGE":                  "Memory",
		"REDIS_URL":                "redis://localhost:6379/0",
		"STATS_CACHE_TTL":          "30s",
		"ETA_MIN_SAMPLES":          "5",
		"ETA_MIN_MINUTES":          "2",
		"STATS_RECOMPUTE_SCHEDULE": "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, 5, cfg.ETAMinSamples)
	assert.Equal(t, 2, cfg.ETAMinMinutes)
	assert.Empty(t, cfg.StatsRecomputeSchedule, "set but empty disables the job")
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"log level":   {"LOG_LEVEL": "loud"},
		"storage":     {"STORAGE": "sqlite"},
		"ttl":         {"STATS_CACHE_TTL": "five minutes"},
		"min samples": {"ETA_MIN_SAMPLES": "three"},
		"min minutes": {"ETA_MIN_MINUTES": "1.5"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := configFromEnv(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}
