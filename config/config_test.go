package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mook/flibusta/config"
	"github.com/mook/flibusta/flibusta"
)

var envNames = []string{
	"FLIBUSTA_BASE_URL",
	"FLIBUSTA_DOWNLOAD_DIR",
	"FLIBUSTA_TIMEOUT",
	"FLIBUSTA_USER_AGENT",
	"FLIBUSTA_REDIS_ADDR",
	"FLIBUSTA_CACHE_TTL",
	"FLIBUSTA_LISTEN_ADDR",
}

// clearEnv unsets the configuration variables for the duration of the test.
func clearEnv(t *testing.T) {
	for _, name := range envNames {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := config.LoadFiles("", "")
	require.NoError(t, err)
	assert.Equal(t, flibusta.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, filepath.Join(home, "Documents", "books"), cfg.DownloadDir)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "Mozilla/5.0 (compatible; BookBot/1.0)", cfg.UserAgent)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestYAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
base_url: https://mirror.example
download_dir: /srv/books
timeout: 5s
redis:
  addr: localhost:6379
  ttl: 10m
`)
	cfg, err := config.LoadFiles(path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example", cfg.BaseURL)
	assert.Equal(t, "/srv/books", cfg.DownloadDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)

	t.Run("missing", func(t *testing.T) {
		_, err := config.LoadFiles(filepath.Join(t.TempDir(), "nope.yaml"), "")
		assert.Error(t, err)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := config.LoadFiles(writeFile(t, "bad.yaml", "timeout: [1, 2"), "")
		assert.Error(t, err)
	})
}

func TestEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "base_url: https://from-file.example\nlisten_addr: :9000\n")
	t.Setenv("FLIBUSTA_BASE_URL", "https://from-env.example")
	t.Setenv("FLIBUSTA_TIMEOUT", "1m")
	t.Setenv("FLIBUSTA_CACHE_TTL", "90s")
	t.Setenv("FLIBUSTA_DOWNLOAD_DIR", "/tmp/books")

	cfg, err := config.LoadFiles(path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example", cfg.BaseURL)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "/tmp/books", cfg.DownloadDir)

	t.Setenv("FLIBUSTA_TIMEOUT", "soon")
	_, err = config.LoadFiles(path, "")
	assert.ErrorContains(t, err, "FLIBUSTA_TIMEOUT")
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	dotEnv := writeFile(t, ".env", "FLIBUSTA_USER_AGENT=Tester/2.0\nFLIBUSTA_REDIS_ADDR=cache:6379\n")
	cfg, err := config.LoadFiles("", dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "Tester/2.0", cfg.UserAgent)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)

	_, err = config.LoadFiles("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err, "a missing .env file is not an error")
}
