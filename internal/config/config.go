package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

func (p OAuthProvider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type Config struct {
	Addr            string
	DBPath          string
	SessionLifetime time.Duration
	AllowGuest      bool
	RateLimitRPS    float64
	RateLimitBurst  int
	CORSOrigins     []string
	LogLevel        slog.Level

	// DocumentToken lets a mirroring instance write documents here without a
	// session. RemoteStoreToken is what this instance sends when it mirrors.
	DocumentToken    string
	RemoteStoreURL   string
	RemoteStoreToken string

	Discord OAuthProvider
	Google  OAuthProvider
}

// Load reads a .env file if one exists, then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:        getenv("ADDR", ":8080"),
		DBPath:      getenv("DB_PATH", "brackets.db"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),

		DocumentToken:    os.Getenv("DOCUMENT_TOKEN"),
		RemoteStoreURL:   strings.TrimRight(os.Getenv("REMOTE_STORE_URL"), "/"),
		RemoteStoreToken: os.Getenv("REMOTE_STORE_TOKEN"),

		Discord: OAuthProvider{
			Key:         os.Getenv("DISCORD_KEY"),
			Secret:      os.Getenv("DISCORD_SECRET"),
			CallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthProvider{
			Key:         os.Getenv("GOOGLE_KEY"),
			Secret:      os.Getenv("GOOGLE_SECRET"),
			CallbackURL: os.Getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	var err error
	if cfg.SessionLifetime, err = time.ParseDuration(getenv("SESSION_LIFETIME", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}
	if cfg.AllowGuest, err = strconv.ParseBool(getenv("ALLOW_GUEST", "true")); err != nil {
		return nil, fmt.Errorf("invalid ALLOW_GUEST: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
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
