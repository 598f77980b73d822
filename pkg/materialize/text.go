package materialize

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a source file is not valid text in the policy's encoding
var ErrInvalidEncoding = errors.New("invalid text encoding")

// TextPolicy fixes how source text is decoded and how output text is written
type TextPolicy struct {
	Encoding string // only "UTF-8" is supported
	Newline  string // line break written to output files
}

// DefaultTextPolicy reads UTF-8 with any line ending and writes UTF-8 with "\n"
var DefaultTextPolicy = TextPolicy{Encoding: "UTF-8", Newline: "\n"}

// Validate checks that the policy can be applied
func (p TextPolicy) Validate() error {
	if !strings.EqualFold(p.Encoding, "UTF-8") && !strings.EqualFold(p.Encoding, "UTF8") {
		return fmt.Errorf("unsupported text encoding %q", p.Encoding)
	}
	switch p.Newline {
	case "\n", "\r\n", "\r":
		return nil
	default:
		return fmt.Errorf("unsupported newline %q", p.Newline)
	}
}

// ReadText reads the whole file and returns its text with every "\r\n" and
// lone "\r" turned into "\n".
func ReadText(path string, policy TextPolicy) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading %s: %w: not valid %s", path, ErrInvalidEncoding, policy.Encoding)
	}
	return normalizeNewlines(string(data)), nil
}

func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// WriteText creates or truncates path and writes text using the policy's line break
func WriteText(path, text string, policy TextPolicy) error {
	if policy.Newline != "\n" {
		text = strings.ReplaceAll(text, "\n", policy.Newline)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
