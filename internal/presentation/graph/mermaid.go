package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart from a definition.
// It applies semantic styling:
// - Initial: ((Circle))
// - Success: ([Stadium])
// - Failure: {{Hexagon}}
// - Wait: [/Parallelogram/]
// - Default: [Rectangle]
// Edges fired only by end of stream are dotted. Overlay styles (visited, current)
// are applied when provided.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range def.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.Type == domain.NodeTypeInitial:
			opener, closer = "((", "))"
		case node.Type == domain.NodeTypeSuccess:
			opener, closer = "([", "])"
		case node.Type == domain.NodeTypeFailure:
			opener, closer = "{{", "}}"
		case node.Wait:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(node.Label()), closer)

		for _, e := range def.Outgoing(node.ID) {
			safeTo := sanitizeMermaidID(e.DestinationID)
			label := escape(edgeLabel(e))
			if eofOnly(e) {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, label, safeTo)
			} else {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, safeTo)
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

// edgeLabel summarizes the conditions of e after its name.
func edgeLabel(e domain.EdgeDef) string {
	var parts []string
	if e.TriggerAlways {
		parts = append(parts, "always")
	}
	if e.TriggerOnEOF != nil {
		parts = append(parts, fmt.Sprintf("eof=%t", *e.TriggerOnEOF))
	}
	if e.Regex != "" {
		parts = append(parts, "/"+e.Regex+"/")
	}
	for _, iv := range []struct{ name, value string }{
		{"micro", e.TimeSinceLastMicrotransition},
		{"transition", e.TimeSinceLastTransition},
		{"start", e.TimeSinceStart},
		{"event", e.TimeForEvent},
	} {
		if iv.value != "" {
			parts = append(parts, iv.name+" "+iv.value)
		}
	}
	if e.CheckExp != "" {
		parts = append(parts, "check")
	}

	sep := " & "
	if p, ok := domain.ParseRequiredConditions(e.RequiredConditions); ok && p == domain.RequireOne {
		sep = " | "
	}
	label := e.Label()
	if e.Channel != "" {
		label += " @" + e.Channel
	}
	if len(parts) > 0 {
		label += ": " + strings.Join(parts, sep)
	}
	return label
}

func eofOnly(e domain.EdgeDef) bool {
	return e.TriggerOnEOF != nil && !e.TriggerAlways && e.Regex == "" && e.CheckExp == "" &&
		e.TimeSinceLastMicrotransition == "" && e.TimeSinceLastTransition == "" &&
		e.TimeSinceStart == "" && e.TimeForEvent == ""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
