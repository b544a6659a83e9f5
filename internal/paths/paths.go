// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when no platform directory applies.
const (
	DefaultConfigDirName = ".groomcrm"
	DefaultDataDirName   = ".groomcrm-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "GROOMCRM_CONFIG_DIR"
	EnvDataDir   = "GROOMCRM_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/groomcrm (fallback ~/.config/groomcrm)
// macOS:   ~/Library/Application Support/groomcrm
// Windows: %APPDATA%/groomcrm
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "groomcrm"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "groomcrm"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "groomcrm"), nil
	}
}

// ResolveConfigDir returns the config directory from the flag value, the
// environment, or the platform default, in that order.
func ResolveConfigDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v, nil
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory with the precedence flag >
// config.yaml value > environment > CWD-relative default.
func ResolveDataDir(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		return v
	}
	return DefaultDataDirName
}
