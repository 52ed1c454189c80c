package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// styles holds the color functions for one rendering. Plain rendering uses
// identity functions so that the layout code is shared.
type styles struct {
	label, message, category, fix, bullet, usage func(a ...interface{}) string
}

func plainStyles() styles {
	id := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return styles{label: id, message: id, category: id, fix: id, bullet: id, usage: id}
}

func colorStyles() styles {
	sprint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	return styles{
		label:    sprint(color.FgRed, color.Bold),
		message:  sprint(color.FgRed),
		category: sprint(color.FgYellow),
		fix:      sprint(color.FgGreen, color.Bold),
		bullet:   sprint(color.FgGreen),
		usage:    sprint(color.FgCyan),
	}
}

// FormatError formats a CLIError for display in the terminal, with escape
// sequences when useColors is set.
func FormatError(err *CLIError, useColors bool) string {
	if err == nil {
		return ""
	}
	st := plainStyles()
	if useColors {
		st = colorStyles()
	}

	var sb strings.Builder

	sb.WriteString(st.label("Error"))
	sb.WriteString(" [")
	sb.WriteString(st.category(err.Category.String()))
	sb.WriteString("]: ")
	sb.WriteString(st.message(err.Message))
	sb.WriteString("\n")

	if err.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(st.usage("Usage: " + err.Usage))
		sb.WriteString("\n")
	}

	if len(err.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(st.fix("To fix this:"))
		sb.WriteString("\n")
		for _, step := range err.Remediation {
			sb.WriteString("  ")
			sb.WriteString(st.bullet("•"))
			sb.WriteString(" ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Format formats any error. Errors without a CLIError in their chain are
// shown as runtime errors.
func Format(err error, useColors bool) string {
	if err == nil {
		return ""
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return FormatError(cliErr, useColors)
	}
	return FormatError(&CLIError{Category: Runtime, Message: err.Error()}, useColors)
}

// Fprint writes the formatted error to w.
func Fprint(w io.Writer, err error, useColors bool) {
	if err == nil {
		return
	}
	fmt.Fprint(w, Format(err, useColors))
}
