package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the vigil ASCII banner to w.
func PrintBanner(w io.Writer, opts ...termenv.OutputOption) {
	o := termenv.NewOutput(w, opts...)
	// Indigo to rose, top to bottom
	lines := []struct{ text, color string }{
		{"        _       _ _ ", "#818cf8"},
		{" __   _(_) __ _(_) |", "#a78bfa"},
		{" \\ \\ / / |/ _` | | |", "#c084fc"},
		{"  \\ V /| | (_| | | |", "#e879f9"},
		{"   \\_/ |_|\\__, |_|_|", "#f472b6"},
		{"          |___/     ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(w)
}
