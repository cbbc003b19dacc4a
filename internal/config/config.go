// Package config resolves reap's on-disk layout: a flat config directory,
// a cache directory for tap clones and ephemeral build workspaces, and a
// data directory for package backups, following the XDG Base Directory
// conventions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPeeDeeP/xdg"
)

const (
	// EnvConfigDir overrides the resolved XDG config directory outright.
	EnvConfigDir = "REAP_CONFIG_DIR"

	// EnvCacheDir overrides the resolved XDG cache directory outright.
	EnvCacheDir = "REAP_CACHE_DIR"

	// EnvDataDir overrides the resolved XDG data directory outright.
	EnvDataDir = "REAP_DATA_DIR"

	// EnvAPITimeout configures the AUR RPC request timeout.
	EnvAPITimeout = "REAP_API_TIMEOUT"

	// EnvGPGKeyserver configures the default keyserver used for tap signer imports.
	EnvGPGKeyserver = "REAP_GPG_KEYSERVER"

	// DefaultAPITimeout is the default timeout for AUR RPC requests.
	DefaultAPITimeout = 30 * time.Second

	// DefaultGPGKeyserver is used when REAP_GPG_KEYSERVER is unset.
	DefaultGPGKeyserver = "hkps://keys.openpgp.org"

	vendor      = ""
	projectName = "reap"
)

// GetAPITimeout returns the configured AUR RPC timeout from REAP_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout (30 seconds).
// Accepts duration strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < 1*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n",
			EnvAPITimeout, duration)
		return 1 * time.Second
	}
	if duration > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n",
			EnvAPITimeout, duration)
		return 10 * time.Minute
	}

	return duration
}

// GetGPGKeyserver returns the keyserver used to import tap signer keys,
// from REAP_GPG_KEYSERVER or DefaultGPGKeyserver.
func GetGPGKeyserver() string {
	if v := os.Getenv(EnvGPGKeyserver); v != "" {
		return v
	}
	return DefaultGPGKeyserver
}

// ParseByteSize parses a human-readable byte size string into bytes.
// Accepts formats: plain numbers (52428800), KB/K (50K, 50KB), MB/M (50M,
// 50MB), GB/G (1G, 1GB). Case-insensitive. Returns an error for invalid
// formats.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	s = strings.ToUpper(s)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	var numStr string
	var suffix string
	for i, c := range s {
		if c >= '0' && c <= '9' || c == '.' {
			numStr += string(c)
		} else {
			suffix = s[i:]
			break
		}
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size format: %q", s)
	}

	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %q", numStr)
	}

	var multiplier float64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("invalid size suffix: %q", suffix)
	}

	return int64(num * multiplier), nil
}

// Config holds reap's resolved filesystem layout.
type Config struct {
	ConfigDir string // <config-dir>
	CacheDir  string // <cache-dir>
	DataDir   string // <data-dir>

	ConfigFile string // <config-dir>/config.toml
	TapsFile   string // <config-dir>/taps.toml

	TapCacheDir   string // <cache-dir>/taps
	BuildCacheDir string // <cache-dir> (ephemeral reap-aur-<pkg>-<timestamp> dirs live directly here)
	KeyCacheDir   string // <cache-dir>/keys

	BackupDir string // <data-dir>/backup
}

// DefaultConfig resolves reap's directory layout following XDG Base
// Directory conventions, as lazydocker resolves its own config directory:
// each of the three roots can be overridden independently via environment
// variable, falling back to the XDG defaults for the "reap" project.
func DefaultConfig() (*Config, error) {
	dirs := xdg.New(vendor, projectName)

	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = dirs.ConfigHome()
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		cacheDir = dirs.CacheHome()
	}

	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		dataDir = dirs.DataHome()
	}

	return &Config{
		ConfigDir: configDir,
		CacheDir:  cacheDir,
		DataDir:   dataDir,

		ConfigFile: filepath.Join(configDir, "config.toml"),
		TapsFile:   filepath.Join(configDir, "taps.toml"),

		TapCacheDir:   filepath.Join(cacheDir, "taps"),
		BuildCacheDir: cacheDir,
		KeyCacheDir:   filepath.Join(cacheDir, "keys"),

		BackupDir: filepath.Join(dataDir, "backup"),
	}, nil
}

// EnsureDirectories creates every directory reap needs at rest, leaving
// ephemeral build workspaces (under BuildCacheDir) to be created per-build.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.ConfigDir,
		c.CacheDir,
		c.DataDir,
		c.TapCacheDir,
		c.KeyCacheDir,
		c.BackupDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// BuildDir returns a fresh ephemeral build workspace path for a single AUR
// or tap build, namespaced by package name and timestamp so concurrent
// builds of the same package never collide.
func (c *Config) BuildDir(pkg string, timestamp int64) string {
	return filepath.Join(c.BuildCacheDir, fmt.Sprintf("reap-aur-%s-%d", pkg, timestamp))
}

// TapDir returns the clone directory for a single tap.
func (c *Config) TapDir(tapName string) string {
	return filepath.Join(c.TapCacheDir, tapName)
}

// PackageBackupDir returns the snapshot directory for a single backup of a
// package, namespaced by timestamp.
func (c *Config) PackageBackupDir(pkg string, timestamp int64) string {
	return filepath.Join(c.BackupDir, pkg, strconv.FormatInt(timestamp, 10))
}
