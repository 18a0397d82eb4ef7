// ABOUTME: Server configuration loaded from PAGESMITH_* environment variables.
// ABOUTME: Enforces security constraint: remote access requires auth token.

package editor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ConfigError represents configuration validation errors.
var (
	ErrRemoteWithoutToken = errors.New(
		"PAGESMITH_ALLOW_REMOTE is true but PAGESMITH_AUTH_TOKEN is not set; refusing to start without authentication",
	)
	ErrNonLoopbackBind = errors.New(
		"PAGESMITH_BIND is a non-loopback address but PAGESMITH_ALLOW_REMOTE is not true; set PAGESMITH_ALLOW_REMOTE=true and PAGESMITH_AUTH_TOKEN to allow remote access",
	)
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Home            string        // Data directory (PAGESMITH_HOME, default: ~/.pagesmith)
	Bind            string        // Socket address (PAGESMITH_BIND, default: 127.0.0.1:7780)
	AllowRemote     bool          // Allow non-loopback connections (PAGESMITH_ALLOW_REMOTE, default: false)
	AuthToken       string        // Bearer token for API auth (PAGESMITH_AUTH_TOKEN, optional)
	DefaultProvider string        // LLM provider (PAGESMITH_DEFAULT_PROVIDER, optional; empty defers to API key detection)
	DefaultModel    string        // LLM model choice or alias (PAGESMITH_DEFAULT_MODEL, optional)
	SessionTTL      time.Duration // Idle session eviction age (PAGESMITH_SESSION_TTL, default: 2h)
	MaxSessions     int           // Live session capacity (PAGESMITH_MAX_SESSIONS, default: 100)
}

// ConfigFromEnv loads configuration from PAGESMITH_* environment variables
// with sensible defaults.
func ConfigFromEnv() (*Config, error) {
	home := envOrDefault("PAGESMITH_HOME", "")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "/tmp"
		}
		home = filepath.Join(homeDir, ".pagesmith")
	}

	bind := envOrDefault("PAGESMITH_BIND", "127.0.0.1:7780")

	allowRemote := false
	if v := os.Getenv("PAGESMITH_ALLOW_REMOTE"); v == "true" || v == "1" || v == "yes" {
		allowRemote = true
	}

	authToken := os.Getenv("PAGESMITH_AUTH_TOKEN")

	sessionTTL := 2 * time.Hour
	if v := os.Getenv("PAGESMITH_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PAGESMITH_SESSION_TTL %q: %w", v, err)
		}
		sessionTTL = d
	}

	maxSessions := 100
	if v := os.Getenv("PAGESMITH_MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid PAGESMITH_MAX_SESSIONS %q", v)
		}
		maxSessions = n
	}

	// Security: remote access requires auth token
	if allowRemote && authToken == "" {
		return nil, ErrRemoteWithoutToken
	}

	// Security: refuse non-loopback binds unless explicitly opting into remote access.
	// Checks both IP literals and hostnames; only 127.0.0.0/8, ::1, and "localhost"
	// are considered safe.
	if !allowRemote {
		if host, _, err := net.SplitHostPort(bind); err == nil && host != "" {
			ip := net.ParseIP(host)
			switch {
			case ip != nil && ip.IsLoopback():
				// Safe: 127.x.x.x or ::1
			case ip != nil:
				// Non-loopback IP literal (e.g. 0.0.0.0, 192.168.x.x)
				return nil, fmt.Errorf("%w: PAGESMITH_BIND=%s", ErrNonLoopbackBind, bind)
			case host == "localhost":
				// Safe: conventional loopback hostname
			default:
				// Non-localhost hostname (e.g. myhost, example.com)
				return nil, fmt.Errorf("%w: PAGESMITH_BIND=%s", ErrNonLoopbackBind, bind)
			}
		}
	}

	return &Config{
		Home:            home,
		Bind:            bind,
		AllowRemote:     allowRemote,
		AuthToken:       authToken,
		DefaultProvider: os.Getenv("PAGESMITH_DEFAULT_PROVIDER"),
		DefaultModel:    os.Getenv("PAGESMITH_DEFAULT_MODEL"),
		SessionTTL:      sessionTTL,
		MaxSessions:     maxSessions,
	}, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
