package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PlatformAndroidEmulator = "android-emulator"
	PlatformGeneric         = "generic"

	DefaultAPIPort = "8000"

	// RequestTimeout bounds every outgoing client request.
	RequestTimeout = 10 * time.Second
)

// Source names the rule that produced a resolved base address.
type Source string

const (
	SourceOverride Source = "override"
	SourceDevHost  Source = "dev-host"
	SourceDefault  Source = "platform-default"
)

// Environment is the input to base address resolution.
type Environment struct {
	// Override is an explicitly configured backend origin.
	Override string
	// DevHost is the development machine address advertised by a live-reload
	// tunnel, e.g. "exp://192.168.100.12:8081".
	DevHost  string
	APIPort  string
	Platform string
}

// ResolveBaseAddress picks the backend origin: explicit override first, then
// the development host, then the platform default.
func ResolveBaseAddress(env Environment) (string, Source) {
	if override := strings.TrimSpace(env.Override); override != "" {
		return strings.TrimRight(override, "/"), SourceOverride
	}
	port := fallback(env.APIPort, DefaultAPIPort)
	if host := devHostname(env.DevHost); host != "" {
		return "http://" + net.JoinHostPort(host, port), SourceDevHost
	}
	if strings.EqualFold(strings.TrimSpace(env.Platform), PlatformAndroidEmulator) {
		// The emulator reaches the host loopback through this alias.
		return "http://" + net.JoinHostPort("10.0.2.2", port), SourceDefault
	}
	return "http://" + net.JoinHostPort("localhost", port), SourceDefault
}

func devHostname(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		return host
	}
	return strings.Trim(raw, "[]/")
}

// ClientFile is the optional YAML configuration file of the terminal client.
type ClientFile struct {
	APIURL   string `yaml:"api_url"`
	DevHost  string `yaml:"dev_host"`
	APIPort  string `yaml:"api_port"`
	Platform string `yaml:"platform"`
}

// ClientFlags carries command-line values; empty fields are unset.
type ClientFlags struct {
	APIURL     string
	Platform   string
	ConfigPath string
}

// ClientConfig is the resolved client configuration.
type ClientConfig struct {
	BaseURL  string
	Source   Source
	Platform string
	Timeout  time.Duration
}

// LoadClient resolves the client configuration from flags, environment and
// the YAML file. It is evaluated on every start and never cached.
func LoadClient(flags ClientFlags) (ClientConfig, error) {
	path := flags.ConfigPath
	if path == "" {
		path = os.Getenv("AURA_CONFIG")
	}
	explicit := path != ""
	if path == "" {
		path = defaultClientConfigPath()
	}

	file, err := readClientFile(path)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return ClientConfig{}, err
	}

	env := Environment{
		Override: firstNonEmpty(flags.APIURL, os.Getenv("AURA_API_URL"), file.APIURL),
		DevHost:  firstNonEmpty(os.Getenv("AURA_DEV_HOST"), file.DevHost),
		APIPort:  firstNonEmpty(os.Getenv("AURA_API_PORT"), file.APIPort),
		Platform: firstNonEmpty(flags.Platform, os.Getenv("AURA_PLATFORM"), file.Platform, PlatformGeneric),
	}
	baseURL, source := ResolveBaseAddress(env)
	return ClientConfig{
		BaseURL:  baseURL,
		Source:   source,
		Platform: env.Platform,
		Timeout:  RequestTimeout,
	}, nil
}

func readClientFile(path string) (ClientFile, error) {
	var file ClientFile
	if path == "" {
		return file, fs.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read client config: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ClientFile{}, fmt.Errorf("parse client config %s: %w", path, err)
	}
	return file, nil
}

func defaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "aura", "config.yaml")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
