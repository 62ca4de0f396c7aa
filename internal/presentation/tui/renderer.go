package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without options it detects a light or dark background.
func NewRenderer(opts ...glamour.TermRendererOption) (func(string) (string, error), error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render, nil
}

// Describe writes a markdown summary of def: its nodes and the edges leaving each one.
func Describe(def *domain.Definition) string {
	var sb strings.Builder

	name := def.Name
	if name == "" {
		name = "automaton"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}
	if len(def.Parameters) > 0 {
		sb.WriteString("Parameters:\n\n")
		for _, name := range slices.Sorted(maps.Keys(def.Parameters)) {
			fmt.Fprintf(&sb, "- `%s`: %s\n", name, def.Parameters[name])
		}
		sb.WriteString("\n")
	}
	if def.ScriptLanguage != "" {
		fmt.Fprintf(&sb, "Scripts are written in `%s`.\n\n", def.ScriptLanguage)
	}

	for _, n := range def.Nodes {
		title := n.Label()
		if n.Type != domain.NodeTypeNone {
			title += " (" + strings.ToLower(string(n.Type)) + ")"
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		if n.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", n.Description)
		}
		if n.Wait {
			sb.WriteString("Waits for the next entry once entered.\n\n")
		}
		if n.SuccessCheck != "" {
			fmt.Fprintf(&sb, "Passes only if `%s` holds.\n\n", n.SuccessCheck)
		}

		edges := def.Outgoing(n.ID)
		for _, e := range edges {
			fmt.Fprintf(&sb, "- **%s** to `%s`", e.Label(), e.DestinationID)
			if cond := conditions(e); len(cond) > 0 {
				fmt.Fprintf(&sb, " when %s", strings.Join(cond, ", "))
			}
			sb.WriteString("\n")
		}
		if len(edges) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func conditions(e domain.EdgeDef) []string {
	var out []string
	if e.TriggerAlways {
		out = append(out, "always")
	}
	if e.TriggerOnEOF != nil && *e.TriggerOnEOF {
		out = append(out, "at end of log")
	}
	if e.Regex != "" {
		out = append(out, fmt.Sprintf("line matches `%s`", e.Regex))
	}
	if e.TimeSinceStart != "" {
		out = append(out, fmt.Sprintf("since start in `%s`", e.TimeSinceStart))
	}
	if e.TimeSinceLastTransition != "" {
		out = append(out, fmt.Sprintf("since last transition in `%s`", e.TimeSinceLastTransition))
	}
	if e.TimeSinceLastMicrotransition != "" {
		out = append(out, fmt.Sprintf("since last step in `%s`", e.TimeSinceLastMicrotransition))
	}
	if e.TimeForEvent != "" {
		out = append(out, fmt.Sprintf("event time in `%s`", e.TimeForEvent))
	}
	if e.CheckExp != "" {
		out = append(out, fmt.Sprintf("`%s`", e.CheckExp))
	}
	return out
}
