// Package output provides the terminal-facing capabilities the progress
// plugin depends on: stream selection, colorizing and locale-aware encoding.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
)

// Stream selects the standard stream a message is written to.
type Stream int

const (
	// Stdout is the default stream.
	Stdout Stream = iota
	// Stderr receives error-class messages.
	Stderr
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case Stderr:
		return "stderr"
	default:
		return "stdout"
	}
}

// DisplayOptions controls how a single message is displayed.
type DisplayOptions struct {
	// Color is a palette name understood by Colorize (empty for none).
	Color string
	// Stream selects stdout or stderr.
	Stream Stream
	// Partial writes the message without terminating the line.
	Partial bool
}

// Console is the set of display capabilities supplied by the surrounding
// application. Implementations must be safe for concurrent use.
type Console interface {
	// Colorize wraps msg in the escape sequences for the named color.
	// Unknown or empty names return msg unchanged.
	Colorize(msg, color string) string
	// Encode converts msg to the byte form expected by the stream's locale,
	// substituting characters the charset cannot represent.
	Encode(msg string, stream Stream) []byte
	// Writer returns the destination for the stream.
	Writer(stream Stream) io.Writer
}

// TerminalConfig configures a Terminal.
type TerminalConfig struct {
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
	// Color enables escape sequences in Colorize.
	Color bool
	// Charset overrides the locale charset (e.g. "iso-8859-1").
	Charset string
}

// Terminal is the default Console backed by the process's standard streams.
type Terminal struct {
	stdout  io.Writer
	stderr  io.Writer
	color   bool
	encoder *Encoder
}

// NewTerminal creates a Terminal. An empty charset falls back to the locale,
// and to UTF-8 when the locale names a charset that is not supported.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	var enc *Encoder
	var err error
	if cfg.Charset != "" {
		enc, err = NewEncoder(cfg.Charset)
		if err != nil {
			return nil, fmt.Errorf("creating terminal encoder: %w", err)
		}
	} else if enc, err = NewEncoder(LocaleCharset()); err != nil {
		// unsupported locale charset
		enc, _ = NewEncoder(utf8Charset)
	}

	t := &Terminal{
		stdout:  cfg.Stdout,
		stderr:  cfg.Stderr,
		color:   cfg.Color,
		encoder: enc,
	}
	if t.stdout == nil {
		t.stdout = os.Stdout
	}
	if t.stderr == nil {
		t.stderr = os.Stderr
	}
	return t, nil
}

// Colorize implements Console.
func (t *Terminal) Colorize(msg, color string) string {
	if !t.color {
		return msg
	}
	return Colorize(msg, color)
}

// Encode implements Console. Both streams share the locale charset.
func (t *Terminal) Encode(msg string, _ Stream) []byte {
	return t.encoder.Encode(msg)
}

// Writer implements Console.
func (t *Terminal) Writer(stream Stream) io.Writer {
	if stream == Stderr {
		return t.stderr
	}
	return t.stdout
}

// Charset returns the canonical name of the charset output is encoded in.
func (t *Terminal) Charset() string {
	return t.encoder.Name()
}
