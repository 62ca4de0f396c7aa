package runtime

import (
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/script"
)

// Node is a compiled state of the automaton. Nodes are built once and never removed.
type Node struct {
	ID          string
	Name        string
	Description string
	Type        domain.NodeType
	Wait        bool

	onEnter      script.Compiled
	onLeave      script.Compiled
	successCheck script.Compiled

	incoming []*Edge
	outgoing []*Edge
}

// Label returns the node name, falling back to its ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Incoming returns the edges arriving at n.
func (n *Node) Incoming() []*Edge { return n.incoming }

// Outgoing returns the edges leaving n, in definition order.
func (n *Node) Outgoing() []*Edge { return n.outgoing }
