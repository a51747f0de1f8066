package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, []string{"password", "token", "secret"}, cfg.MaskedKeywords)
	require.Equal(t, 3, cfg.RetryMaxAttempts)
	require.Equal(t, 10*time.Second, cfg.FlushInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOGGER_MASKED_KEYWORDS", " pin , cvv ,")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_INTERVAL", "250ms")
	t.Setenv("FLUSH_INTERVAL", "not-a-duration")

	cfg := Load()
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, []string{"pin", "cvv"}, cfg.MaskedKeywords)
	require.Equal(t, 5, cfg.RetryMaxAttempts)
	require.Equal(t, 250*time.Millisecond, cfg.RetryInterval)
	require.Equal(t, 10*time.Second, cfg.FlushInterval)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statesaga.toml")
	content := `
env = "production"
log_level = "debug"
masked_keywords = ["password", "iban"]
flush_interval = "30s"
retry_max_attempts = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("RETRY_MAX_ATTEMPTS", "4")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, EnvProduction, cfg.Env)
	require.Equal(t, []string{"password", "iban"}, cfg.MaskedKeywords)
	require.Equal(t, 30*time.Second, cfg.FlushInterval)
	require.Equal(t, 4, cfg.RetryMaxAttempts)
	require.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	require.Equal(t, "DEBUG", cfg.SlogLevel().String())
	cfg.LogLevel = "bogus"
	require.Equal(t, "INFO", cfg.SlogLevel().String())
}
