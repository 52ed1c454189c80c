package output

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// replacementChar stands in for characters the output charset cannot hold.
const replacementChar = '?'

const utf8Charset = "utf-8"

// LocaleCharset returns the charset named by the first non-empty of LC_ALL,
// LC_CTYPE and LANG. Locales without a charset ("C", "POSIX", "en_US") and an
// empty environment are treated as UTF-8.
func LocaleCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return charsetFromLocale(v)
		}
	}
	return utf8Charset
}

// charsetFromLocale extracts the charset of a "lang_COUNTRY.charset@modifier"
// locale string.
func charsetFromLocale(locale string) string {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 || i == len(locale)-1 {
		return utf8Charset
	}
	return strings.ToLower(locale[i+1:])
}

// ValidCharset reports whether name is empty or a charset Encode supports.
func ValidCharset(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, err := NewEncoder(name)
	return err == nil
}

// Encoder converts text to a target charset, replacing what it cannot encode.
type Encoder struct {
	name string
	// enc is nil for UTF-8.
	enc encoding.Encoding
}

// NewEncoder returns an Encoder for the named charset. UTF-8 and its aliases
// need no transformation beyond replacing invalid byte sequences.
func NewEncoder(charset string) (*Encoder, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "utf8" {
		charset = utf8Charset
	}
	e, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	name, err := htmlindex.Name(e)
	if err != nil {
		name = charset
	}
	if name == utf8Charset {
		return &Encoder{name: name}, nil
	}
	return &Encoder{name: name, enc: e}, nil
}

// Name returns the canonical charset name.
func (e *Encoder) Name() string {
	return e.name
}

// Encode converts msg. It never fails: invalid input and characters outside
// the charset become replacement characters.
func (e *Encoder) Encode(msg string) []byte {
	if e.enc == nil {
		if utf8.ValidString(msg) {
			return []byte(msg)
		}
		return []byte(strings.ToValidUTF8(msg, string(utf8.RuneError)))
	}
	t := transform.Chain(runes.Map(e.substitute), e.enc.NewEncoder())
	out, _, err := transform.String(t, msg)
	if err != nil {
		return []byte(asciiOnly(msg))
	}
	return []byte(out)
}

// substitute maps runes the charset cannot encode, including the RuneError
// that runes.Map passes for invalid UTF-8, to replacementChar.
func (e *Encoder) substitute(r rune) rune {
	if cm, ok := e.enc.(*charmap.Charmap); ok {
		if _, ok := cm.EncodeRune(r); ok && r != utf8.RuneError {
			return r
		}
		return replacementChar
	}
	if r == utf8.RuneError {
		return replacementChar
	}
	if _, err := e.enc.NewEncoder().String(string(r)); err != nil {
		return replacementChar
	}
	return r
}

func asciiOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(replacementChar)
		}
	}
	return sb.String()
}
