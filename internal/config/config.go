// Package config loads service configuration from the environment into an
// explicit value that is passed to constructors. Nothing in this repository
// reads configuration from ambient process state after startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the API server needs at startup.
type Config struct {
	Addr        string
	DatabaseURL string

	// Token signing.
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration

	// Image-storage collaborator.
	ImagesURL    string
	ImagesAPIKey string

	LogLevel string

	RateBurst  int
	RatePerSec int

	MaxBodyBytes int64
}

const (
	defaultAddr      = ":8080"
	defaultAlgorithm = "HS256"
	defaultTokenTTL  = 20 * time.Minute
	defaultBodyLimit = 10 << 20
)

// Load reads configuration from BIBLIOTECA_* environment variables.
// The signing secret is mandatory; everything else has a default.
func Load() (Config, error) {
	cfg := Config{
		Addr:         envOr("BIBLIOTECA_ADDR", defaultAddr),
		DatabaseURL:  strings.TrimSpace(os.Getenv("BIBLIOTECA_PG_DSN")),
		JWTSecret:    strings.TrimSpace(os.Getenv("BIBLIOTECA_JWT_SECRET")),
		JWTAlgorithm: envOr("BIBLIOTECA_JWT_ALGORITHM", defaultAlgorithm),
		TokenTTL:     defaultTokenTTL,
		ImagesURL:    envOr("BIBLIOTECA_IMAGES_URL", "http://images_service:8000"),
		ImagesAPIKey: strings.TrimSpace(os.Getenv("BIBLIOTECA_IMAGES_API_KEY")),
		LogLevel:     envOr("BIBLIOTECA_LOG_LEVEL", "info"),
		RateBurst:    20,
		RatePerSec:   10,
		MaxBodyBytes: defaultBodyLimit,
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: BIBLIOTECA_JWT_SECRET is required")
	}

	if raw := strings.TrimSpace(os.Getenv("BIBLIOTECA_TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("config: invalid BIBLIOTECA_TOKEN_TTL %q", raw)
		}
		cfg.TokenTTL = ttl
	}
	var err error
	if cfg.RateBurst, err = envInt("BIBLIOTECA_RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSec, err = envInt("BIBLIOTECA_RATE_PER_SEC", cfg.RatePerSec); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer", key)
	}
	return v, nil
}
