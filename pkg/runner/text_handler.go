package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
)

// Styler decorates a piece of report text. kind is the verdict result ("pass",
// "fail", "defect") for the status column, or "detail" for the reason line.
// This allows terminal colors without coupling the runner to a terminal library.
type Styler func(kind, text string) string

// TextReporter prints one status line per verdict, followed by the reason when
// the verdict is not a pass.
type TextReporter struct {
	Writer io.Writer
	Styler Styler
}

// TextReporterOption defines configuration for TextReporter.
type TextReporterOption func(*TextReporter)

// WithStyler configures the text decorator.
func WithStyler(s Styler) TextReporterOption {
	return func(t *TextReporter) {
		t.Styler = s
	}
}

// NewTextReporter creates a reporter writing to w (stdout when nil).
func NewTextReporter(w io.Writer, opts ...TextReporterOption) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	t := &TextReporter{Writer: w}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Report writes the verdict.
func (t *TextReporter) Report(_ context.Context, v domain.Verdict) error {
	status := strings.ToUpper(v.Result())
	line := fmt.Sprintf("%-6s %s", t.style(v.Result(), status), v.Automaton)
	if v.Source != "" {
		line += " " + v.Source
	}
	line += fmt.Sprintf(" (%d entries", v.Entries)
	if v.FinalNode != "" {
		line += ", node " + v.FinalNode
	}
	line += ")"
	if _, err := fmt.Fprintln(t.Writer, line); err != nil {
		return err
	}
	if v.Reason == "" {
		return nil
	}
	for _, l := range strings.Split(Sanitize(v.Reason), "\n") {
		if _, err := fmt.Fprintln(t.Writer, "       "+t.style("detail", l)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextReporter) style(kind, text string) string {
	if t.Styler == nil {
		return text
	}
	return t.Styler(kind, text)
}
