package cli

import (
	"context"
	"io"

	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/charmbracelet/glamour"
)

// Describe writes a readable summary of an automaton. With raw set the markdown is
// written as is; otherwise it is rendered for the terminal.
func Describe(ctx context.Context, path string, raw bool, w io.Writer, opts ...glamour.TermRendererOption) error {
	def, err := file.New(path).Load(ctx)
	if err != nil {
		return err
	}

	md := tui.Describe(def)
	if raw {
		_, err = io.WriteString(w, md)
		return err
	}

	render, err := tui.NewRenderer(opts...)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
