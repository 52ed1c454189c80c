// Package config provides layered configuration for progressdots using koanf.
// Configuration is loaded with priority: command-line overrides > environment
// variables (PROGRESS_*) > explicit config file > user config
// (~/.config/progressdots/config.yml) > defaults. Files may be YAML or JSON.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	clierrors "github.com/ariel-frischer/progressdots/internal/errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration holds the progress plugin settings.
type Configuration struct {
	// ProgressTime is the number of seconds between dots after a task starts.
	// Can be set via PROGRESS_TIME env var.
	ProgressTime float64 `koanf:"progress" yaml:"progress" json:"progress" validate:"gt=0"`
	// Dot is printed on every tick. Can be set via PROGRESS_DOT env var.
	Dot string `koanf:"dot" yaml:"dot" json:"dot" validate:"required"`
	// Color of the dots (empty for none). Can be set via PROGRESS_COLOR env var.
	Color string `koanf:"color" yaml:"color" json:"color"`
	// Charset overrides the output charset derived from the locale.
	// Can be set via PROGRESS_CHARSET env var.
	Charset string `koanf:"charset" yaml:"charset" json:"charset"`
}

// Interval returns ProgressTime as a duration.
func (c *Configuration) Interval() time.Duration {
	return time.Duration(c.ProgressTime * float64(time.Second))
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath is an explicit config file; it must exist when set.
	ConfigPath string
	// SkipUserConfig ignores the user-level config file (for testing).
	SkipUserConfig bool
	// Overrides are applied last, e.g. from command-line flags.
	Overrides map[string]interface{}
}

// Load loads configuration from the user config, an optional explicit file and
// the environment.
func Load(configPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if opts.ConfigPath != "" {
		if err := loadConfigFile(k, opts.ConfigPath, "explicit"); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("applying override %s: %w", key, err)
		}
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level config when it exists.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	return loadConfigFile(k, path, "user")
}

// loadConfigFile loads a YAML or JSON file, chosen by extension.
func loadConfigFile(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return clierrors.NewConfigError(
			fmt.Sprintf("%s config file not found: %s", configType, path),
			"Check the --config path",
		)
	}

	if isJSON(path) {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Configuration,
				fmt.Sprintf("failed to load %s config %s", configType, path))
		}
		return nil
	}

	if err := ValidateYAMLSyntax(path); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("validating YAML syntax for %s config", configType))
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("failed to load %s config %s", configType, path))
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig normalizes, unmarshals and validates.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	if err := normalizeProgress(k); err != nil {
		return nil, err
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "failed to unmarshal config")
	}

	if err := ValidateConfigValues(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// normalizeProgress parses a string progress value, as set from the
// environment, into seconds so that a bad value is reported with its text.
func normalizeProgress(k *koanf.Koanf) error {
	raw := k.Get("progress")
	var seconds float64
	switch v := raw.(type) {
	case float64:
		seconds = v
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return clierrors.InvalidProgressTime(v)
		}
		seconds = parsed
	default:
		return clierrors.InvalidProgressTime(fmt.Sprint(raw))
	}
	return k.Set("progress", seconds)
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
