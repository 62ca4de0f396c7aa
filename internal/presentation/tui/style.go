package tui

import (
	"io"

	"github.com/muesli/termenv"
)

var palette = map[string]string{
	"pass":   "#4ade80",
	"fail":   "#f87171",
	"defect": "#fbbf24",
	"detail": "#9ca3af",
}

// NewStyler returns a function coloring report fragments by kind
// ("pass", "fail", "defect", "detail"). Output that is not a terminal stays plain.
func NewStyler(w io.Writer, opts ...termenv.OutputOption) func(kind, text string) string {
	o := termenv.NewOutput(w, opts...)
	return func(kind, text string) string {
		color, ok := palette[kind]
		if !ok {
			return text
		}
		s := o.String(text).Foreground(o.Color(color))
		if kind != "detail" {
			s = s.Bold()
		} else {
			s = s.Faint()
		}
		return s.String()
	}
}
