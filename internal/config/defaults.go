package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# progressdots configuration
# Every value can also be set from the environment (PROGRESS_TIME, PROGRESS_DOT,
# PROGRESS_COLOR, PROGRESS_CHARSET).

progress: 2                           # Seconds between dots after each task starts
dot: "."                              # Character printed on every tick
color: ""                             # Dot color, e.g. green | bright blue (empty = none)
charset: ""                           # Output charset (empty = from LC_ALL / LC_CTYPE / LANG)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"progress": 2.0,
		"dot":      ".",
		"color":    "",
		"charset":  "",
	}
}
