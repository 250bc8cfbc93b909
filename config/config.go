// Package config loads settings from defaults, a .env file, an optional YAML
// file and FLIBUSTA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mook/flibusta/flibusta"
)

const (
	DefaultDownloadDir = "~/Documents/books"
	DefaultListenAddr  = ":8080"
	DefaultCacheTTL    = time.Hour
	DotEnvFile         = ".env"
)

type Config struct {
	BaseURL     string        `yaml:"base_url"`
	DownloadDir string        `yaml:"download_dir"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	ListenAddr  string        `yaml:"listen_addr"`
	Redis       Redis         `yaml:"redis"`
}

// Redis configures the page cache; it is disabled without an address.
type Redis struct {
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

func Default() *Config {
	return &Config{
		BaseURL:     flibusta.DefaultBaseURL,
		DownloadDir: DefaultDownloadDir,
		Timeout:     flibusta.DefaultTimeout,
		UserAgent:   flibusta.DefaultUserAgent,
		ListenAddr:  DefaultListenAddr,
		Redis:       Redis{TTL: DefaultCacheTTL},
	}
}

// Load reads the configuration, using the YAML file at path if it is not
// empty.
func Load(path string) (*Config, error) {
	return LoadFiles(path, DotEnvFile)
}

// LoadFiles is Load with an explicit .env file; a missing .env file is not
// an error.
func LoadFiles(path string, dotEnv string) (*Config, error) {
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not read %s: %w", dotEnv, err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
		logrus.Debugf("Loaded configuration from %s", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	downloadDir, err := expandHome(cfg.DownloadDir)
	if err != nil {
		return nil, err
	}
	cfg.DownloadDir = downloadDir
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for name, target := range map[string]*string{
		"FLIBUSTA_BASE_URL":     &c.BaseURL,
		"FLIBUSTA_DOWNLOAD_DIR": &c.DownloadDir,
		"FLIBUSTA_USER_AGENT":   &c.UserAgent,
		"FLIBUSTA_LISTEN_ADDR":  &c.ListenAddr,
		"FLIBUSTA_REDIS_ADDR":   &c.Redis.Addr,
	} {
		if value := os.Getenv(name); value != "" {
			*target = value
		}
	}
	for name, target := range map[string]*time.Duration{
		"FLIBUSTA_TIMEOUT":   &c.Timeout,
		"FLIBUSTA_CACHE_TTL": &c.Redis.TTL,
	} {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		duration, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		*target = duration
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
