package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnlca"

	// MinVersionSFGA determines the oldest SFGA archive version that
	// still has the name, taxon and synonym tables in the expected form.
	MinVersionSFGA = "v0.3.30"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnlca by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnlca by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// IndexCacheDir returns the directory for NameIndex snapshots.
// Returns ~/.cache/gnlca/index by default.
func IndexCacheDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "index")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnlca/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnlca/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
