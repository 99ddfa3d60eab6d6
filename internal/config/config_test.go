package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2, cfg.Defaults.KMeansK)
	assert.Equal(t, 50.0, cfg.Defaults.CannyThreshold1)
	assert.Equal(t, 100.0, cfg.Defaults.CannyThreshold2)
	assert.Equal(t, 10, cfg.KMeans.Attempts)
	assert.Zero(t, cfg.KMeans.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  transport: http
  http_addr: "127.0.0.1:9090"
defaults:
  kmeans_k: 5
kmeans:
  seed: 42
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 5, cfg.Defaults.KMeansK)
	assert.Equal(t, uint64(42), cfg.KMeans.Seed)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults
	assert.Equal(t, 100.0, cfg.Defaults.CannyThreshold2)
	assert.Equal(t, 10, cfg.KMeans.Attempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log:\n  level: ERROR\n")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTransport, "http")
	t.Setenv(EnvHTTPAddr, ":7000")
	t.Setenv(EnvKMeansSeed, "99")
	t.Setenv(EnvLogFile, "/tmp/imageops.log")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, ":7000", cfg.Server.HTTPAddr)
	assert.Equal(t, uint64(99), cfg.KMeans.Seed)
	assert.Equal(t, "/tmp/imageops.log", cfg.Log.File)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"malformed yaml", "server: [oops", nil},
		{"unknown transport", "server:\n  transport: carrier-pigeon\n", nil},
		{"bad level", "log:\n  level: LOUD\n", nil},
		{"bad format", "log:\n  format: xml\n", nil},
		{"zero attempts", "kmeans:\n  attempts: 0\n", nil},
		{"bad seed", "", map[string]string{EnvKMeansSeed: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imageops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvLogLevel, EnvLogFormat, EnvLogFile, EnvHTTPAddr, EnvTransport, EnvKMeansSeed} {
		t.Setenv(k, "")
	}
}
