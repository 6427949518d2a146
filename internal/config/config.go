// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RevocationStoreSQLite = "sqlite"
	RevocationStoreMemory = "memory"
)

// minSecretLength is the shortest HMAC-SHA256 key accepted.
const minSecretLength = 32

type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	LogLevel    slog.Level

	// Storage
	DataPath string

	// Sessions
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
	LoginRate  float64
	LoginBurst float64

	// Revocation
	RevocationStore         string
	RevocationDBPath        string
	RevocationPruneInterval time.Duration
}

// Load reads the environment. Variables already set win over a .env file in
// the working directory, which is optional.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:             get("PORT", "3000"),
		DataPath:         get("DATA_PATH", "db.json"),
		SecretKey:        get("SECRET_KEY", get("JWT_SECRET", "")),
		RevocationStore:  get("REVOCATION_STORE", RevocationStoreSQLite),
		RevocationDBPath: get("REVOCATION_DB_PATH", "revocations.db"),
		CORSOrigins:      splitList(get("CORS_ORIGINS", "http://localhost:5500,http://localhost:3000")),
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is required")
	}
	if len(cfg.SecretKey) < minSecretLength {
		return nil, fmt.Errorf("SECRET_KEY must be at least %d characters for HMAC-SHA256 security", minSecretLength)
	}

	var err error
	if cfg.TokenTTL, err = parseDuration(get("TOKEN_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.RevocationPruneInterval, err = parseDuration(get("REVOCATION_PRUNE_INTERVAL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid REVOCATION_PRUNE_INTERVAL: %w", err)
	}

	if cfg.BcryptCost, err = strconv.Atoi(get("BCRYPT_COST", "12")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}

	if cfg.LoginRate, err = strconv.ParseFloat(get("LOGIN_RATE", "1"), 64); err != nil || cfg.LoginRate < 0 {
		return nil, fmt.Errorf("invalid LOGIN_RATE %q", get("LOGIN_RATE", ""))
	}
	if cfg.LoginBurst, err = strconv.ParseFloat(get("LOGIN_BURST", "5"), 64); err != nil || cfg.LoginBurst < 1 {
		return nil, fmt.Errorf("invalid LOGIN_BURST %q", get("LOGIN_BURST", ""))
	}

	switch cfg.RevocationStore {
	case RevocationStoreSQLite, RevocationStoreMemory:
	default:
		return nil, fmt.Errorf("REVOCATION_STORE must be %q or %q, got %q",
			RevocationStoreSQLite, RevocationStoreMemory, cfg.RevocationStore)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
