package config

import (
	"os"
	"path/filepath"
	"strings"
)

// envPrefix is shared by every environment variable the plugin reads.
const envPrefix = "PROGRESS_"

// envKeys maps environment variables to config keys. Unlisted PROGRESS_*
// variables are ignored.
var envKeys = map[string]string{
	"PROGRESS_TIME":    "progress",
	"PROGRESS_DOT":     "dot",
	"PROGRESS_COLOR":   "color",
	"PROGRESS_CHARSET": "charset",
}

// envTransform converts environment variable names to config keys.
// Example: PROGRESS_TIME -> progress. Returns "" for unknown variables, which
// koanf skips.
func envTransform(s string) string {
	return envKeys[strings.ToUpper(s)]
}

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/progressdots/config.yml
// - macOS: ~/Library/Application Support/progressdots/config.yml
// - Windows: %APPDATA%\progressdots\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "progressdots", "config.yml"), nil
}
