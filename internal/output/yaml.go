package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pling-project/pling/internal/model"
)

// YAMLFormatter formats notifications as a YAML document.
type YAMLFormatter struct {
	opts Options
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts Options) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes notifications as a YAML sequence. An empty list encodes
// as [] rather than null.
func (f *YAMLFormatter) Format(w io.Writer, notifications []model.Notification) error {
	if notifications == nil {
		notifications = []model.Notification{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(notifications); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}
