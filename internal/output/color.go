package output

import (
	"sort"
	"strings"

	"github.com/fatih/color"
)

// palette maps color names to terminal attributes. "normal" has no
// attributes and leaves text unchanged.
var palette = map[string][]color.Attribute{
	"normal":         nil,
	"black":          {color.FgBlack},
	"red":            {color.FgRed},
	"green":          {color.FgGreen},
	"yellow":         {color.FgYellow},
	"blue":           {color.FgBlue},
	"magenta":        {color.FgMagenta},
	"purple":         {color.FgMagenta},
	"cyan":           {color.FgCyan},
	"white":          {color.FgWhite, color.Bold},
	"bright gray":    {color.FgWhite},
	"dark gray":      {color.FgHiBlack},
	"bright red":     {color.FgHiRed},
	"bright green":   {color.FgHiGreen},
	"bright yellow":  {color.FgHiYellow},
	"bright blue":    {color.FgHiBlue},
	"bright magenta": {color.FgHiMagenta},
	"bright purple":  {color.FgHiMagenta},
	"bright cyan":    {color.FgHiCyan},
}

// normalizeColor lowercases a color name and collapses "bright_red" style
// separators.
func normalizeColor(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", " ")
}

// ValidColor reports whether name is empty or a known palette entry.
func ValidColor(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, ok := palette[normalizeColor(name)]
	return ok
}

// ColorNames returns the known palette entries, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(palette))
	for name := range palette {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colorize wraps msg in the escape sequences for the named color regardless of
// whether stdout is a terminal. Unknown or empty names return msg unchanged.
func Colorize(msg, name string) string {
	attrs, ok := palette[normalizeColor(name)]
	if !ok || len(attrs) == 0 {
		return msg
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(msg)
}
