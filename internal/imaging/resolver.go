// Package imaging resolves notification image payloads and icon paths to
// stable on-disk references.
package imaging

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// Data is the decoded image-data hint payload: a raw pixel buffer plus
// the shape fields the wire format carries alongside it.
type Data struct {
	Width         int
	Height        int
	RowStride     int
	HasAlpha      bool
	BitsPerSample int
	Channels      int
	Pixels        []byte
}

// Encoder writes a pixel payload to a file. The concrete implementation
// owns format choice and any scaling.
type Encoder interface {
	Encode(path string, data *Data) error
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SafeName strips every non-alphanumeric rune from key, yielding a
// path-safe file stem.
func SafeName(key string) string {
	return nonAlphanumeric.ReplaceAllString(key, "")
}

// Resolver turns image payloads and icon hints into filesystem
// references under a cache directory.
type Resolver struct {
	dir    string
	enc    Encoder
	logger *slog.Logger
}

// NewResolver creates a resolver writing rendered payloads into dir.
func NewResolver(dir string, enc Encoder, logger *slog.Logger) *Resolver {
	return &Resolver{dir: dir, enc: enc, logger: logger}
}

// FromPayload renders the payload to a PNG named after key (stripped of
// non-alphanumerics) and returns its path. Returns "" when there is no
// payload or encoding fails; failures degrade to "no image".
func (r *Resolver) FromPayload(key string, data *Data) string {
	if data == nil {
		return ""
	}

	name := SafeName(key)
	if name == "" {
		return ""
	}

	path := filepath.Join(r.dir, name+".png")
	if err := r.enc.Encode(path, data); err != nil {
		r.logger.Warn("image encode failed", "path", path, "error", err)
		return ""
	}
	return path
}

// FromPath returns path unchanged when it names an existing file, else "".
func (r *Resolver) FromPath(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
