package dsl

import "github.com/aretw0/vigil/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.NodeDef
	builder *Builder
	edges   []*EdgeBuilder
}

// Initial marks the node as the entry node.
func (n *NodeBuilder) Initial() *NodeBuilder {
	n.node.Type = domain.NodeTypeInitial
	return n
}

// Success marks the node as accepting. An optional check script decides whether
// ending here is really a pass.
func (n *NodeBuilder) Success(check ...string) *NodeBuilder {
	n.node.Type = domain.NodeTypeSuccess
	if len(check) > 0 {
		n.node.SuccessCheck = check[0]
	}
	return n
}

// Failure marks the node as a rejecting sink.
func (n *NodeBuilder) Failure() *NodeBuilder {
	n.node.Type = domain.NodeTypeFailure
	return n
}

// Name sets the display name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// Describe sets the description reported when the run stops here.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.node.Description = description
	return n
}

// OnEnter sets the script run when the node is entered.
func (n *NodeBuilder) OnEnter(source string) *NodeBuilder {
	n.node.OnEnter = source
	return n
}

// OnLeave sets the script run when the node is left.
func (n *NodeBuilder) OnLeave(source string) *NodeBuilder {
	n.node.OnLeave = source
	return n
}

// Wait stops the microtransition chain at this node until the next event.
func (n *NodeBuilder) Wait() *NodeBuilder {
	n.node.Wait = true
	return n
}

// To adds an edge to the target node and returns its builder.
// The target does not need to exist yet.
func (n *NodeBuilder) To(id, target string) *EdgeBuilder {
	eb := &EdgeBuilder{
		edge: domain.EdgeDef{ID: id, SourceID: n.node.ID, DestinationID: target},
		from: n,
	}
	n.edges = append(n.edges, eb)
	return eb
}

// Build returns the underlying domain.NodeDef.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NodeDef {
	return n.node
}
