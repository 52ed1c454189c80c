package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the progressdots CLI.
// These templates ensure consistent, actionable error messages.

// InvalidProgressTime creates an error for a progress interval that is not a
// positive number of seconds.
func InvalidProgressTime(value string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("invalid progress interval %q: must be a positive number of seconds", value),
		"Set PROGRESS_TIME to a positive number, e.g. PROGRESS_TIME=2 or PROGRESS_TIME=0.5",
		"Or set 'progress' in the config file",
	)
}

// UnknownColor creates an error for a color name outside the palette.
func UnknownColor(name string, known []string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("unknown color %q", name),
		"Use one of: "+strings.Join(known, ", "),
		"Or unset PROGRESS_COLOR to print uncolored dots",
	)
}

// UnknownCharset creates an error for an output charset that cannot be encoded.
func UnknownCharset(name string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("unknown output charset %q", name),
		"Use a charset name such as utf-8, iso-8859-1 or windows-1252",
		"Or unset PROGRESS_CHARSET to use the locale from LC_ALL, LC_CTYPE or LANG",
	)
}

// EmptyDot creates an error for an empty progress character.
func EmptyDot() *CLIError {
	return NewConfigError(
		"progress dot must not be empty",
		"Set PROGRESS_DOT to the character to print, or unset it to use '.'",
	)
}

// PlaybookNotFound creates an error for a missing playbook file.
func PlaybookNotFound(path string) *CLIError {
	return NewPlaybookError(
		fmt.Sprintf("playbook not found: %s", path),
		"Check the path passed to 'progressdots run'",
	)
}

// InvalidPlaybook creates an error for a playbook that fails to parse or validate.
func InvalidPlaybook(path string, err error) *CLIError {
	cliErr := NewPlaybookError(
		fmt.Sprintf("invalid playbook %s: %v", path, err),
		"A playbook is a YAML list of plays, each with 'name', 'hosts' and 'tasks'",
		"Task durations use Go duration syntax, e.g. '1.5s' or '2m'",
	)
	cliErr.Cause = err
	return cliErr
}

// MissingPlaybookArgument creates an error for 'run' without a playbook path.
func MissingPlaybookArgument() *CLIError {
	return NewArgumentErrorWithUsage(
		"playbook path is required",
		"progressdots run <playbook.yml>",
		"Pass the path of a playbook file",
	)
}
