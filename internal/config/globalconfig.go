package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// GlobalConfig is the persisted `config.toml`: backend order, the
// ignored-package set, and default parallelism.
type GlobalConfig struct {
	BackendOrder       []string `toml:"backend_order"`
	Ignored            []string `toml:"ignored"`
	DefaultParallelism int      `toml:"default_parallelism"`
}

// DefaultGlobalConfig matches the CLI surface's implied default backend
// order (pacman, then aur, then flatpak) with no ignored packages and a
// conservative default parallelism.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		BackendOrder:       []string{"pacman", "aur", "flatpak"},
		Ignored:            nil,
		DefaultParallelism: 4,
	}
}

// HasBackend reports whether name appears in the configured backend order.
// resolver.Resolve uses it to admit or exclude a step without ever
// reordering its fixed priority sequence.
func (c *GlobalConfig) HasBackend(name string) bool {
	for _, b := range c.BackendOrder {
		if b == name {
			return true
		}
	}
	return false
}

// IsIgnored reports whether pkg is in the ignored-package set, consulted
// by UpgradeAll before diffing versions.
func (c *GlobalConfig) IsIgnored(pkg string) bool {
	for _, p := range c.Ignored {
		if p == pkg {
			return true
		}
	}
	return false
}

// LoadGlobalConfig reads config.toml from path, returning
// DefaultGlobalConfig if the file does not exist.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultGlobalConfig(), nil
	}

	var cfg GlobalConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to path atomically (write to a temp file in
// the same directory, then rename) with 0600 permissions, since the file
// may embed user-specific policy.
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
