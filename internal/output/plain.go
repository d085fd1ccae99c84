package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pling-project/pling/internal/model"
)

// PlainFormatter formats notifications as human-readable text, one
// header line per notification with the body indented below it.
type PlainFormatter struct {
	opts Options
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts Options) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// Format writes notifications as plain text.
func (f *PlainFormatter) Format(w io.Writer, notifications []model.Notification) error {
	for i := range notifications {
		if err := f.formatNotification(w, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatNotification writes one notification:
//
//	[12] <Firefox> Download Complete [critical] (5 minutes ago)
//	    myfile.zip has finished downloading
func (f *PlainFormatter) formatNotification(w io.Writer, n *model.Notification) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d]", n.ID)

	if f.opts.ShowApp && n.AppName != "" {
		fmt.Fprintf(&sb, " <%s>", n.AppName)
	}

	sb.WriteString(" " + n.Summary)

	if n.Urgency != "" && n.Urgency != model.UrgencyNormal {
		fmt.Fprintf(&sb, " [%s]", n.Urgency)
	}

	if f.opts.ShowTime && n.CreatedAt != 0 {
		fmt.Fprintf(&sb, " (%s)", humanize.Time(n.CreatedTime()))
	}

	sb.WriteString("\n")

	if body := f.bodyLine(n); body != "" {
		sb.WriteString("    " + body + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// bodyLine collapses the body to a single line, truncated when a
// maximum length is configured.
func (f *PlainFormatter) bodyLine(n *model.Notification) string {
	if f.opts.BodyMaxLen > 0 {
		return n.BodyTruncated(f.opts.BodyMaxLen)
	}
	return strings.Join(strings.Fields(n.Body), " ")
}
