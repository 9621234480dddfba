package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tracking/internal/jobs"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	LogLevel slog.Level

	Storage    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisURL      string
	StatsCacheTTL time.Duration

	StageCatalogPath       string
	ETAMinSamples          int
	ETAMinMinutes          int
	StatsRecomputeSchedule string
}

// DSN is the postgres connection string in key=value form.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set take precedence over it.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	return configFromEnv(os.LookupEnv)
}

func configFromEnv(lookup func(string) (string, bool)) (Config, error) {
	env := func(key, fallback string) string {
		if v, _ := lookup(key); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		HTTPPort:         env("HTTP_PORT", "8080"),
		Storage:          strings.ToLower(env("STORAGE", StoragePostgres)),
		DBHost:           env("DB_HOST", "localhost"),
		DBPort:           env("DB_PORT", "5432"),
		DBUser:           env("DB_USER", "postgres"),
		DBPassword:       env("DB_PASSWORD", ""),
		DBName:           env("DB_NAME", "tracking"),
		DBSslMode:        env("DB_SSLMODE", "disable"),
		RedisURL:         env("REDIS_URL", ""),
		StageCatalogPath: env("STAGE_CATALOG_PATH", ""),

		StatsRecomputeSchedule: jobs.DefaultStatsRecomputeSchedule,
	}
	// Set but empty disables the job.
	if v, ok := lookup("STATS_RECOMPUTE_SCHEDULE"); ok {
		cfg.StatsRecomputeSchedule = strings.TrimSpace(v)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.StatsCacheTTL, err = time.ParseDuration(env("STATS_CACHE_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("STATS_CACHE_TTL: %w", err)
	}
	if cfg.ETAMinSamples, err = strconv.Atoi(env("ETA_MIN_SAMPLES", "3")); err != nil {
		return Config{}, fmt.Errorf("ETA_MIN_SAMPLES: %w", err)
	}
	if cfg.ETAMinMinutes, err = strconv.Atoi(env("ETA_MIN_MINUTES", "1")); err != nil {
		return Config{}, fmt.Errorf("ETA_MIN_MINUTES: %w", err)
	}

	switch cfg.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("STORAGE: unsupported value %q", cfg.Storage)
	}

	return cfg, nil
}
