// Package output renders notification lists for the CLI.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pling-project/pling/internal/model"
)

// Formatter formats notifications for output.
type Formatter interface {
	// Format writes formatted notifications to the writer.
	Format(w io.Writer, notifications []model.Notification) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormatType validates an output format flag value.
func ParseFormatType(s string) (FormatType, error) {
	switch FormatType(strings.ToLower(s)) {
	case FormatPlain:
		return FormatPlain, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected plain, json or yaml)", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// Options configures formatter behavior.
type Options struct {
	ShowApp    bool // Show app name in plain output
	ShowTime   bool // Show relative time in plain output
	BodyMaxLen int  // Maximum body length in plain output (0 = unlimited)
}

// DefaultOptions returns the defaults used by the list command.
func DefaultOptions() Options {
	return Options{
		ShowApp:    true,
		ShowTime:   true,
		BodyMaxLen: 80,
	}
}
