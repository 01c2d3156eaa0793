// Package config resolves where dshist keeps its data and loads the optional
// user configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appName = "dshist"

// Config holds user settings. Zero fields are filled from defaults by Load.
type Config struct {
	// User is recorded as owner of new versions and shown in histories.
	User string `yaml:"user"`
	// LogMode is "production" for JSON logs, anything else for console logs.
	LogMode string `yaml:"log_mode"`
	// StatusConcurrency bounds parallel job status lookups per history.
	StatusConcurrency int `yaml:"status_concurrency"`
	// MetadataTimeout bounds how long a new version waits for query metadata.
	MetadataTimeout time.Duration `yaml:"metadata_timeout"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "anonymous"
	}
	return Config{
		User:              user,
		LogMode:           "development",
		StatusConcurrency: 8,
		MetadataTimeout:   30 * time.Second,
	}
}

// GetDataDir resolves the base directory for all dshist storage: DSHIST_DIR
// first, then the XDG data home, finally ~/.local/share.
func GetDataDir() string {
	if explicit := os.Getenv("DSHIST_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the path of the SQLite history database.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "history.db")
}

// GetConfigPath returns DSHIST_CONFIG or the XDG config location.
func GetConfigPath() string {
	if explicit := os.Getenv("DSHIST_CONFIG"); explicit != "" {
		return explicit
	}
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load reads the config file if it exists. A missing file is not an error.
// DSHIST_USER overrides the configured user.
func Load() (Config, error) {
	cfg := Default()

	path := GetConfigPath()
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fromFile Config
		if err := yaml.Unmarshal(raw, &fromFile); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = merge(cfg, fromFile)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if user := os.Getenv("DSHIST_USER"); user != "" {
		cfg.User = user
	}
	if cfg.StatusConcurrency < 0 {
		return Config{}, fmt.Errorf("config %s: status_concurrency must not be negative", path)
	}
	if cfg.MetadataTimeout < 0 {
		return Config{}, fmt.Errorf("config %s: metadata_timeout must not be negative", path)
	}
	return cfg, nil
}

func merge(base, override Config) Config {
	if override.User != "" {
		base.User = override.User
	}
	if override.LogMode != "" {
		base.LogMode = override.LogMode
	}
	if override.StatusConcurrency != 0 {
		base.StatusConcurrency = override.StatusConcurrency
	}
	if override.MetadataTimeout != 0 {
		base.MetadataTimeout = override.MetadataTimeout
	}
	return base
}
