// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClientConfig configures the terminal client and the connectivity check.
type ClientConfig struct {
	ServiceURL string

	HTTPTimeout     time.Duration
	HTTPRetry       int
	MaxConnsPerHost int

	// ClientID is sent as X-Client-Id when set.
	ClientID string

	MessagesDir string
	SnapshotDir string
}

// DevServerConfig configures the local game service.
type DevServerConfig struct {
	Addr        string
	RedisURL    string
	DatabaseURL string
	GameTTL     time.Duration
}

func Load() (*ClientConfig, error) {
	cfg := &ClientConfig{
		HTTPTimeout:     10 * time.Second,
		HTTPRetry:       1,
		MaxConnsPerHost: 16,
		SnapshotDir:     ".",
	}

	cfg.ServiceURL = strings.TrimRight(strings.TrimSpace(os.Getenv("CHESS_SERVICE_URL")), "/")
	cfg.ClientID = strings.TrimSpace(os.Getenv("CHESS_CLIENT_ID"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPRetry = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MAX_CONNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConnsPerHost = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SNAPSHOT_DIR")); v != "" {
		cfg.SnapshotDir = v
	}

	if cfg.ServiceURL == "" {
		return nil, errors.New("CHESS_SERVICE_URL is required")
	}
	if !strings.HasPrefix(cfg.ServiceURL, "http://") && !strings.HasPrefix(cfg.ServiceURL, "https://") {
		return nil, errors.New("CHESS_SERVICE_URL must start with http:// or https://")
	}

	return cfg, nil
}

// Headers returns the static per-request headers derived from the config.
func (c *ClientConfig) Headers() map[string]string {
	if c.ClientID == "" {
		return nil
	}
	return map[string]string{"X-Client-Id": c.ClientID}
}

func LoadDevServer() (*DevServerConfig, error) {
	cfg := &DevServerConfig{
		Addr:    ":8080",
		GameTTL: 24 * time.Hour,
	}

	if v := strings.TrimSpace(os.Getenv("DEVSERVER_ADDR")); v != "" {
		cfg.Addr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if v := strings.TrimSpace(os.Getenv("DEVSERVER_GAME_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.GameTTL = d
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
