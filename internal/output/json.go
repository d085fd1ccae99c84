package output

import (
	"encoding/json"
	"io"

	"github.com/pling-project/pling/internal/model"
)

// JSONFormatter formats notifications as an indented JSON array.
type JSONFormatter struct {
	opts Options
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts Options) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes notifications as a JSON array. An empty list encodes
// as [] rather than null.
func (f *JSONFormatter) Format(w io.Writer, notifications []model.Notification) error {
	if notifications == nil {
		notifications = []model.Notification{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(notifications)
}
