package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("STORAGE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load()
	require.EqualError(t, err, "DATABASE_URL is required")

	t.Setenv("DATABASE_URL", "postgres://localhost/aura")
	t.Setenv("JWT_SECRET", " ")
	_, err = Load()
	require.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadMemoryStorageSkipsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE", "memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)

	t.Setenv("STORAGE", "sqlite")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/aura")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("ADDR", "")
	t.Setenv("STORAGE", "")
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENVIRONMENT", "PROD")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, 720*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Production())
	assert.Equal(t, "aura", cfg.JWTIssuer)
}

func TestResolveBaseAddress(t *testing.T) {
	cases := []struct {
		name   string
		env    Environment
		want   string
		source Source
	}{
		{
			name:   "override wins over everything",
			env:    Environment{Override: "https://api.aura.app/", DevHost: "192.168.0.2", Platform: PlatformAndroidEmulator},
			want:   "https://api.aura.app",
			source: SourceOverride,
		},
		{
			name:   "dev host from tunnel url",
			env:    Environment{DevHost: "exp://192.168.100.12:8081"},
			want:   "http://192.168.100.12:8000",
			source: SourceDevHost,
		},
		{
			name:   "dev host with port and custom api port",
			env:    Environment{DevHost: "10.1.1.5:19000", APIPort: "9000"},
			want:   "http://10.1.1.5:9000",
			source: SourceDevHost,
		},
		{
			name:   "bare dev host",
			env:    Environment{DevHost: "devbox.local"},
			want:   "http://devbox.local:8000",
			source: SourceDevHost,
		},
		{
			name:   "emulator default",
			env:    Environment{Platform: "Android-Emulator"},
			want:   "http://10.0.2.2:8000",
			source: SourceDefault,
		},
		{
			name:   "generic default",
			env:    Environment{Platform: PlatformGeneric},
			want:   "http://localhost:8000",
			source: SourceDefault,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, source := ResolveBaseAddress(tc.env)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.source, source)
		})
	}
}

func TestLoadClientPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file:8000\nplatform: android-emulator\n"), 0o600))

	t.Setenv("AURA_API_URL", "")
	t.Setenv("AURA_DEV_HOST", "")
	t.Setenv("AURA_API_PORT", "")
	t.Setenv("AURA_PLATFORM", "")
	t.Setenv("AURA_CONFIG", "")

	cfg, err := LoadClient(ClientFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.BaseURL)
	assert.Equal(t, PlatformAndroidEmulator, cfg.Platform)
	assert.Equal(t, RequestTimeout, cfg.Timeout)

	t.Setenv("AURA_API_URL", "http://from-env:8000")
	cfg, err = LoadClient(ClientFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.BaseURL)

	cfg, err = LoadClient(ClientFlags{ConfigPath: path, APIURL: "http://from-flag:8000"})
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:8000", cfg.BaseURL)
	assert.Equal(t, SourceOverride, cfg.Source)
}

func TestLoadClientRecomputesOnEnvironmentChange(t *testing.T) {
	t.Setenv("AURA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AURA_API_URL", "")
	t.Setenv("AURA_API_PORT", "")
	t.Setenv("AURA_PLATFORM", "")
	t.Setenv("AURA_DEV_HOST", "192.168.1.20")

	_, err := LoadClient(ClientFlags{})
	require.Error(t, err, "an explicitly named config file must exist")

	t.Setenv("AURA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadClient(ClientFlags{})
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8000", cfg.BaseURL)

	t.Setenv("AURA_DEV_HOST", "")
	cfg, err = LoadClient(ClientFlags{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, SourceDefault, cfg.Source)
}

func TestHTTPAddress(t *testing.T) {
	assert.Equal(t, ":9000", Config{Port: "9000"}.HTTPAddress())
	assert.Equal(t, "127.0.0.1:8080", Config{Addr: "127.0.0.1:8080", Port: "9000"}.HTTPAddress())
}
