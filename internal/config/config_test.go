package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Overrides(t *testing.T) {
	for _, env := range []string{EnvConfigDir, EnvCacheDir, EnvDataDir} {
		original := os.Getenv(env)
		defer os.Setenv(env, original)
	}

	configDir := t.TempDir()
	cacheDir := t.TempDir()
	dataDir := t.TempDir()

	os.Setenv(EnvConfigDir, configDir)
	os.Setenv(EnvCacheDir, cacheDir)
	os.Setenv(EnvDataDir, dataDir)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	if cfg.ConfigDir != configDir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, configDir)
	}
	if cfg.CacheDir != cacheDir {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, cacheDir)
	}
	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
	}
	if cfg.ConfigFile != filepath.Join(configDir, "config.toml") {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, filepath.Join(configDir, "config.toml"))
	}
	if cfg.TapsFile != filepath.Join(configDir, "taps.toml") {
		t.Errorf("TapsFile = %q, want %q", cfg.TapsFile, filepath.Join(configDir, "taps.toml"))
	}
	if cfg.TapCacheDir != filepath.Join(cacheDir, "taps") {
		t.Errorf("TapCacheDir = %q, want %q", cfg.TapCacheDir, filepath.Join(cacheDir, "taps"))
	}
	if cfg.BackupDir != filepath.Join(dataDir, "backup") {
		t.Errorf("BackupDir = %q, want %q", cfg.BackupDir, filepath.Join(dataDir, "backup"))
	}
}

func TestDefaultConfig_FallsBackToXDG(t *testing.T) {
	for _, env := range []string{EnvConfigDir, EnvCacheDir, EnvDataDir} {
		original := os.Getenv(env)
		defer os.Setenv(env, original)
		os.Unsetenv(env)
	}

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	if cfg.ConfigDir == "" || cfg.CacheDir == "" || cfg.DataDir == "" {
		t.Fatalf("DefaultConfig() left an empty root: %+v", cfg)
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		ConfigDir:   filepath.Join(tmpDir, "config"),
		CacheDir:    filepath.Join(tmpDir, "cache"),
		DataDir:     filepath.Join(tmpDir, "data"),
		TapCacheDir: filepath.Join(tmpDir, "cache", "taps"),
		KeyCacheDir: filepath.Join(tmpDir, "cache", "keys"),
		BackupDir:   filepath.Join(tmpDir, "data", "backup"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() failed: %v", err)
	}

	dirs := []string{cfg.ConfigDir, cfg.CacheDir, cfg.DataDir, cfg.TapCacheDir, cfg.KeyCacheDir, cfg.BackupDir}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Directory %q does not exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", dir)
		}
	}
}

func TestBuildDir(t *testing.T) {
	cfg := &Config{BuildCacheDir: "/home/user/.cache/reap"}

	got := cfg.BuildDir("neovim", 1700000000)
	want := "/home/user/.cache/reap/reap-aur-neovim-1700000000"
	if got != want {
		t.Errorf("BuildDir() = %q, want %q", got, want)
	}
}

func TestTapDir(t *testing.T) {
	cfg := &Config{TapCacheDir: "/home/user/.cache/reap/taps"}

	got := cfg.TapDir("myuser/mytap")
	want := "/home/user/.cache/reap/taps/myuser/mytap"
	if got != want {
		t.Errorf("TapDir() = %q, want %q", got, want)
	}
}

func TestPackageBackupDir(t *testing.T) {
	cfg := &Config{BackupDir: "/home/user/.local/share/reap/backup"}

	got := cfg.PackageBackupDir("neovim", 1700000000)
	want := "/home/user/.local/share/reap/backup/neovim/1700000000"
	if got != want {
		t.Errorf("PackageBackupDir() = %q, want %q", got, want)
	}
}

func TestGetAPITimeout_Default(t *testing.T) {
	original := os.Getenv(EnvAPITimeout)
	defer os.Setenv(EnvAPITimeout, original)
	os.Unsetenv(EnvAPITimeout)

	if got := GetAPITimeout(); got != DefaultAPITimeout {
		t.Errorf("GetAPITimeout() = %v, want %v", got, DefaultAPITimeout)
	}
}

func TestGetAPITimeout_CustomValue(t *testing.T) {
	original := os.Getenv(EnvAPITimeout)
	defer os.Setenv(EnvAPITimeout, original)
	os.Setenv(EnvAPITimeout, "45s")

	if got, want := GetAPITimeout(), 45*time.Second; got != want {
		t.Errorf("GetAPITimeout() = %v, want %v", got, want)
	}
}

func TestGetAPITimeout_InvalidValue(t *testing.T) {
	original := os.Getenv(EnvAPITimeout)
	defer os.Setenv(EnvAPITimeout, original)
	os.Setenv(EnvAPITimeout, "invalid")

	if got := GetAPITimeout(); got != DefaultAPITimeout {
		t.Errorf("GetAPITimeout() = %v, want %v (default)", got, DefaultAPITimeout)
	}
}

func TestGetAPITimeout_TooLow(t *testing.T) {
	original := os.Getenv(EnvAPITimeout)
	defer os.Setenv(EnvAPITimeout, original)
	os.Setenv(EnvAPITimeout, "100ms")

	if got, want := GetAPITimeout(), 1*time.Second; got != want {
		t.Errorf("GetAPITimeout() = %v, want %v (minimum)", got, want)
	}
}

func TestGetAPITimeout_TooHigh(t *testing.T) {
	original := os.Getenv(EnvAPITimeout)
	defer os.Setenv(EnvAPITimeout, original)
	os.Setenv(EnvAPITimeout, "1h")

	if got, want := GetAPITimeout(), 10*time.Minute; got != want {
		t.Errorf("GetAPITimeout() = %v, want %v (maximum)", got, want)
	}
}

func TestGetGPGKeyserver_Default(t *testing.T) {
	original := os.Getenv(EnvGPGKeyserver)
	defer os.Setenv(EnvGPGKeyserver, original)
	os.Unsetenv(EnvGPGKeyserver)

	if got := GetGPGKeyserver(); got != DefaultGPGKeyserver {
		t.Errorf("GetGPGKeyserver() = %q, want %q", got, DefaultGPGKeyserver)
	}
}

func TestGetGPGKeyserver_Override(t *testing.T) {
	original := os.Getenv(EnvGPGKeyserver)
	defer os.Setenv(EnvGPGKeyserver, original)
	os.Setenv(EnvGPGKeyserver, "hkps://keyserver.ubuntu.com")

	want := "hkps://keyserver.ubuntu.com"
	if got := GetGPGKeyserver(); got != want {
		t.Errorf("GetGPGKeyserver() = %q, want %q", got, want)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"52428800", 52428800, false},
		{"100B", 100, false},
		{"100b", 100, false},
		{"1K", 1024, false},
		{"1KB", 1024, false},
		{"50K", 51200, false},
		{"1M", 1024 * 1024, false},
		{"50MB", 50 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"1.5M", int64(1.5 * 1024 * 1024), false},
		{"", 0, true},
		{"abc", 0, true},
		{"50TB", 0, true},
		{"MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
