package ui

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ClientConfig is the terminal client's settings file, read from
// ~/.taskhub.toml when present.
type ClientConfig struct {
	ServerURL      string `toml:"server_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

const defaultServerURL = "http://localhost:8080"

// LoadClientConfig layers defaults, the config file, and the
// TASKHUB_SERVER environment variable, strongest last.
func LoadClientConfig() (ClientConfig, error) {
	cfg := ClientConfig{
		ServerURL:      defaultServerURL,
		TimeoutSeconds: 10,
	}

	path, err := configPath()
	if err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if server := os.Getenv("TASKHUB_SERVER"); server != "" {
		cfg.ServerURL = server
	}

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	return cfg, nil
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskhub.toml"), nil
}
