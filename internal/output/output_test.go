package output

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsetFromLocale(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		locale string
		want   string
	}{
		"utf-8 locale":         {locale: "en_US.UTF-8", want: "utf-8"},
		"latin1 locale":        {locale: "de_DE.ISO-8859-1", want: "iso-8859-1"},
		"locale with modifier": {locale: "de_DE.ISO-8859-15@euro", want: "iso-8859-15"},
		"no charset":           {locale: "en_US", want: "utf-8"},
		"C locale":             {locale: "C", want: "utf-8"},
		"trailing dot":         {locale: "en_US.", want: "utf-8"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, charsetFromLocale(tt.locale))
		})
	}
}

func TestLocaleCharsetPrecedence(t *testing.T) {
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("LC_CTYPE", "")
	t.Setenv("LC_ALL", "fr_FR.ISO-8859-1")
	assert.Equal(t, "iso-8859-1", LocaleCharset())

	t.Setenv("LC_ALL", "")
	assert.Equal(t, "utf-8", LocaleCharset())

	t.Setenv("LANG", "")
	assert.Equal(t, "utf-8", LocaleCharset())
}

func TestEncoder(t *testing.T) {
	t.Parallel()

	t.Run("utf-8 passes valid text through", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("UTF-8")
		require.NoError(t, err)
		assert.Equal(t, "utf-8", enc.Name())
		assert.Equal(t, []byte("héllo ✓"), enc.Encode("héllo ✓"))
	})

	t.Run("utf-8 replaces invalid sequences", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("utf8")
		require.NoError(t, err)
		out := enc.Encode("a\xffb")
		assert.True(t, utf8.Valid(out))
		assert.Equal(t, "a�b", string(out))
	})

	t.Run("single-byte charset encodes representable text", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("iso-8859-1")
		require.NoError(t, err)
		assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, enc.Encode("café"))
	})

	t.Run("single-byte charset replaces unrepresentable text", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("iso-8859-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("a?b"), enc.Encode("a日b"))
		assert.Equal(t, []byte{'?', 0xE9, '?'}, enc.Encode("☃é☃"))
	})

	t.Run("single-byte charset replaces invalid sequences", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("iso-8859-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("a?b"), enc.Encode("a\xffb"))
	})

	t.Run("multi-byte charset replaces unrepresentable text", func(t *testing.T) {
		t.Parallel()
		enc, err := NewEncoder("shift_jis")
		require.NoError(t, err)
		out := enc.Encode("a😀b")
		assert.Equal(t, []byte("a?b"), out)
		assert.NotContains(t, string(out), "\x1a")
	})

	t.Run("unknown charset", func(t *testing.T) {
		t.Parallel()
		_, err := NewEncoder("klingon-1")
		assert.Error(t, err)
		assert.False(t, ValidCharset("klingon-1"))
		assert.True(t, ValidCharset(""))
	})
}

func TestColorize(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		color     string
		wantPlain bool
	}{
		"empty color":     {color: "", wantPlain: true},
		"unknown color":   {color: "octarine", wantPlain: true},
		"normal":          {color: "normal", wantPlain: true},
		"red":             {color: "red"},
		"bright with _":   {color: "bright_blue"},
		"mixed case name": {color: "Dark Gray"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Colorize("msg", tt.color)
			if tt.wantPlain {
				assert.Equal(t, "msg", got)
				return
			}
			assert.NotEqual(t, "msg", got)
			assert.Contains(t, got, "msg")
			assert.True(t, strings.HasPrefix(got, "\x1b["), "expected an escape sequence, got %q", got)
		})
	}
}

func TestValidColor(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidColor(""))
	assert.True(t, ValidColor("green"))
	assert.True(t, ValidColor("BRIGHT_RED"))
	assert.False(t, ValidColor("octarine"))
	assert.Contains(t, ColorNames(), "cyan")
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	t.Run("routes streams", func(t *testing.T) {
		term, err := NewTerminal(TerminalConfig{Stdout: &stdout, Stderr: &stderr, Charset: "utf-8"})
		require.NoError(t, err)
		assert.Same(t, &stdout, term.Writer(Stdout))
		assert.Same(t, &stderr, term.Writer(Stderr))
		assert.Equal(t, "utf-8", term.Charset())
	})

	t.Run("colors only when enabled", func(t *testing.T) {
		plain, err := NewTerminal(TerminalConfig{Stdout: &stdout, Stderr: &stderr, Charset: "utf-8"})
		require.NoError(t, err)
		assert.Equal(t, ".", plain.Colorize(".", "green"))

		colored, err := NewTerminal(TerminalConfig{Stdout: &stdout, Stderr: &stderr, Color: true, Charset: "utf-8"})
		require.NoError(t, err)
		assert.NotEqual(t, ".", colored.Colorize(".", "green"))
	})

	t.Run("rejects unknown charset", func(t *testing.T) {
		_, err := NewTerminal(TerminalConfig{Charset: "klingon-1"})
		assert.Error(t, err)
	})
}

func TestTerminalLocaleFallback(t *testing.T) {
	t.Setenv("LC_ALL", "xx_XX.klingon-1")

	term, err := NewTerminal(TerminalConfig{})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", term.Charset())

	t.Setenv("LC_ALL", "de_DE.ISO-8859-1")
	term, err = NewTerminal(TerminalConfig{})
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", term.Charset())
}

func TestStreamString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
}

func TestBanner(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		title string
		width int
		want  string
	}{
		"pads to width": {
			title: "TASK [x]",
			width: 14,
			want:  "TASK [x] *****",
		},
		"minimum fill when too wide": {
			title: "PLAY [a very long play name]",
			width: 10,
			want:  "PLAY [a very long play name] ***",
		},
		"wide runes count as two cells": {
			title: "TASK [日本]",
			width: 16,
			want:  "TASK [日本] ****",
		},
		"trims title": {
			title: "  PLAY RECAP ",
			width: 14,
			want:  "PLAY RECAP ***",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Banner(tt.title, tt.width))
		})
	}
}

func TestDetectTerminalCapabilities(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("PROGRESS_FORCE_COLOR", "1")
	caps := DetectTerminalCapabilities()
	assert.False(t, caps.SupportsColor, "NO_COLOR wins over forced color")

	t.Setenv("NO_COLOR", "")
	caps = DetectTerminalCapabilities()
	assert.True(t, caps.SupportsColor, "forced color applies without a TTY")
}
