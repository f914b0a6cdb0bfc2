// Package servertest starts an in-memory Aura backend for tests.
package servertest

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/config"
	"github.com/aura-clinic/aura/internal/server"
	"github.com/aura-clinic/aura/internal/storage/memory"
)

const (
	AdminEmail    = "dr.kelven@aura.app"
	AdminPassword = "aura123"
	AdminName     = "Dr. Kelven"
)

func Config() config.Config {
	return config.Config{
		Port:          "0",
		Storage:       config.StorageMemory,
		JWTSecret:     "servertest-secret",
		JWTIssuer:     "aura",
		JWTTTL:        time.Hour,
		CORSOrigins:   []string{"*"},
		Environment:   "dev",
		AdminEmail:    AdminEmail,
		AdminPassword: AdminPassword,
		AdminName:     AdminName,
	}
}

// New serves a seeded backend backed by store until the test ends. A nil
// store gets a fresh memory store.
func New(t testing.TB, store *memory.Store) *httptest.Server {
	t.Helper()
	return NewWithConfig(t, Config(), store)
}

// Rotated serves a seeded backend signing with a different secret, so
// tokens issued by New are rejected with 401.
func Rotated(t testing.TB) *httptest.Server {
	t.Helper()
	cfg := Config()
	cfg.JWTSecret = "servertest-rotated-secret"
	return NewWithConfig(t, cfg, nil)
}

func NewWithConfig(t testing.TB, cfg config.Config, store *memory.Store) *httptest.Server {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, server.EnsureDefaultAdmin(context.Background(), cfg, store, logger))
	ts := httptest.NewServer(server.New(cfg, store, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}
