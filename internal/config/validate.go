package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	clierrors "github.com/ariel-frischer/progressdots/internal/errors"
	"github.com/ariel-frischer/progressdots/internal/output"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SyntaxError reports a config file that is not well-formed YAML.
type SyntaxError struct {
	Path string
	// Line is 1-based; 0 when the parser did not report one.
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ValidateYAMLSyntax parses path as YAML without applying it, so that a
// broken file is reported with its line number instead of koanf's generic
// load error. Empty files are valid.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &SyntaxError{Path: path, Reason: err.Error()}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, reason := splitYAMLError(err)
		return &SyntaxError{Path: path, Line: line, Reason: reason}
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 && node.Content[0].Kind != yaml.MappingNode {
		return &SyntaxError{Path: path, Line: node.Content[0].Line, Reason: "top level must be a mapping of settings"}
	}
	return nil
}

// ValidateConfigValues validates configuration values against their
// constraints. Failures are returned as configuration CLIErrors carrying
// remediation steps.
func ValidateConfigValues(cfg *Configuration) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				return fieldError(cfg, fieldErr)
			}
		}
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	if !representableInterval(cfg.ProgressTime) {
		return clierrors.InvalidProgressTime(strconv.FormatFloat(cfg.ProgressTime, 'g', -1, 64))
	}
	if !output.ValidColor(cfg.Color) {
		return clierrors.UnknownColor(cfg.Color, output.ColorNames())
	}
	if !output.ValidCharset(cfg.Charset) {
		return clierrors.UnknownCharset(cfg.Charset)
	}

	return nil
}

// representableInterval reports whether seconds converts to a Duration of at
// least one nanosecond without overflowing. NaN fails both comparisons.
func representableInterval(seconds float64) bool {
	ns := seconds * float64(time.Second)
	return ns >= 1 && ns < math.MaxInt64
}

// fieldError converts a validator failure into the matching CLIError.
func fieldError(cfg *Configuration, fieldErr validator.FieldError) error {
	switch fieldErr.Field() {
	case "ProgressTime":
		return clierrors.InvalidProgressTime(strconv.FormatFloat(cfg.ProgressTime, 'g', -1, 64))
	case "Dot":
		return clierrors.EmptyDot()
	default:
		return clierrors.NewConfigError(
			fmt.Sprintf("field '%s' %s", toSnakeCase(fieldErr.Field()), formatValidationError(fieldErr)))
	}
}

// splitYAMLError separates yaml.v3's "yaml: line N: reason" prefix.
func splitYAMLError(err error) (int, string) {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	var line int
	if n, _ := fmt.Sscanf(msg, "line %d:", &line); n == 1 {
		if _, reason, ok := strings.Cut(msg, ": "); ok {
			return line, reason
		}
	}
	return 0, msg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// toSnakeCase converts a CamelCase field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
