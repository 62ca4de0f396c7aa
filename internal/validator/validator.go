// Package validator lints automaton definitions beyond what the engine rejects.
// Its findings are warnings: the automaton still runs.
package validator

import (
	"fmt"

	"github.com/aretw0/vigil/pkg/domain"
)

// Warning is one lint finding.
type Warning struct {
	NodeID  string
	Message string
}

func (w Warning) String() string {
	if w.NodeID == "" {
		return w.Message
	}
	return fmt.Sprintf("node %q: %s", w.NodeID, w.Message)
}

// Lint crawls def from its INITIAL node and reports unreachable nodes, dead ends
// (non-terminal nodes without outgoing edges) and the absence of any reachable
// SUCCESS node. Edges to unknown nodes are skipped; the engine reports those.
func Lint(def *domain.Definition) []Warning {
	var initial string
	for _, n := range def.Nodes {
		if n.Type == domain.NodeTypeInitial {
			initial = n.ID
			break
		}
	}
	if initial == "" {
		return []Warning{{Message: "no INITIAL node to start from"}}
	}

	visited := map[string]bool{}
	queue := []string{initial}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		for _, e := range def.Outgoing(currentID) {
			if _, ok := def.Node(e.DestinationID); !ok {
				continue
			}
			if !visited[e.DestinationID] {
				queue = append(queue, e.DestinationID)
			}
		}
	}

	var warnings []Warning
	successReachable := false
	for _, n := range def.Nodes {
		if !visited[n.ID] {
			warnings = append(warnings, Warning{NodeID: n.ID, Message: "unreachable from the INITIAL node"})
			continue
		}
		switch n.Type {
		case domain.NodeTypeSuccess:
			successReachable = true
		case domain.NodeTypeFailure:
		default:
			if len(def.Outgoing(n.ID)) == 0 {
				warnings = append(warnings, Warning{NodeID: n.ID, Message: "dead end: no outgoing edges and not a SUCCESS node"})
			}
		}
	}
	if !successReachable {
		warnings = append(warnings, Warning{Message: "no SUCCESS node is reachable; every run fails"})
	}
	return warnings
}
