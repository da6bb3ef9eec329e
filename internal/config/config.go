// Package config is a viper-backed configuration singleton, grounded on the
// teacher's internal/config/config.go: layered precedence (env var > config
// file > default), walk-up discovery of the nearest workspace config, and a
// thin typed accessor surface so callers never touch viper directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper singleton. Call once at process startup,
// before any Get* accessor is used.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	// 1. Walk up from CWD looking for .taskmesh/config.yaml, so commands work
	// from any subdirectory of a workspace.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".taskmesh", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/taskmesh/config.yaml).
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "taskmesh", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	v.SetEnvPrefix("TM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("no-color", false)
	v.SetDefault("db", "")
	v.SetDefault("actor", "")
	v.SetDefault("lock-timeout", "30s")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.max-size-mb", 10)
	v.SetDefault("log.max-backups", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("ready.default-limit", 0)
	v.SetDefault("health.description-warn-bytes", 65536)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a configuration value at runtime. It is a no-op before
// Initialize has run.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// ConfigFileUsed returns the path of the loaded config file, or "" if none
// was found and defaults/env vars are in effect.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
