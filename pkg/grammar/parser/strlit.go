package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
)

// UnquoteString returns the value of a plain or raw string literal token.
// Byte, C-string and suffixed literals are rejected.
func UnquoteString(lit string) (string, error) {
	switch {
	case strings.HasPrefix(lit, "r"):
		body := strings.TrimLeft(lit[1:], "#")
		hashes := len(lit) - 1 - len(body)
		closing := "\"" + strings.Repeat("#", hashes)
		if len(body) < 2 || body[0] != '"' || !strings.HasSuffix(body, closing) || len(body) < 1+len(closing) {
			return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "malformed raw string literal %s", lit)
		}
		return body[1 : len(body)-len(closing)], nil
	case strings.HasPrefix(lit, "\"") && strings.HasSuffix(lit, "\"") && len(lit) >= 2:
		return unescape(lit[1 : len(lit)-1])
	}
	return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "expected a string literal, found %s", lit)
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "trailing backslash in string literal")
		}
		esc := s[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(esc)
		case '\n':
			// line continuation skips the following whitespace
			for i < len(s) && strings.ContainsRune(" \t\n\r", rune(s[i])) {
				i++
			}
		case 'x':
			if i+2 > len(s) {
				return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "short \\x escape")
			}
			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil || v > 0x7f {
				return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "invalid \\x escape %q", s[i:i+2])
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if !strings.HasPrefix(s[i:], "{") || end < 0 {
				return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "malformed \\u escape")
			}
			hex := strings.ReplaceAll(s[i+1:i+end], "_", "")
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "invalid \\u escape %q", s[i:i+end+1])
			}
			b.WriteRune(rune(v))
			i += end + 1
		default:
			return "", rmerrors.New(rmerrors.ErrCodeInvalidInput, "unknown escape \\%c", esc)
		}
	}
	return b.String(), nil
}

// QuoteString returns s as a Rust string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
