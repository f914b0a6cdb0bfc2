package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoragePostgres = "postgres"
	// StorageMemory keeps everything in process; data is lost on exit.
	StorageMemory = "memory"
)

// Config holds runtime configuration for the backend, sourced from env vars.
type Config struct {
	// Addr is a full listen address; when empty the server binds Port on
	// every interface.
	Addr          string
	Port          string
	Storage       string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string
	Environment   string
	AdminEmail    string
	AdminPassword string
	AdminName     string
	LogLevel      slog.Level
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Addr:          strings.TrimSpace(os.Getenv("ADDR")),
		Port:          fallback(os.Getenv("PORT"), "8000"),
		Storage:       strings.ToLower(fallback(os.Getenv("STORAGE"), StoragePostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "aura"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		Environment:   strings.ToLower(fallback(os.Getenv("ENVIRONMENT"), "dev")),
		AdminEmail:    fallback(os.Getenv("ADMIN_EMAIL"), "dr.kelven@aura.app"),
		AdminPassword: fallback(os.Getenv("ADMIN_PASSWORD"), "aura123"),
		AdminName:     fallback(os.Getenv("ADMIN_NAME"), "Dr. Kelven"),
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
	}

	// default: 12h
	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "720")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 720 * time.Minute
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.Storage == StoragePostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%s", c.Port)
}

// Production reports whether secrets such as reset tokens must stay server-side.
func (c Config) Production() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}
