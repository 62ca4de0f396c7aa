package dsl

import (
	"fmt"

	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/domain"
)

// Builder manages the automaton construction.
type Builder struct {
	def   domain.Definition
	nodes []*NodeBuilder
	index map[string]*NodeBuilder
}

// New creates a new automaton builder.
func New(name string) *Builder {
	return &Builder{
		def:   domain.Definition{Name: name},
		index: make(map[string]*NodeBuilder),
	}
}

// Describe sets the automaton description. It may reference ${params}.
func (b *Builder) Describe(description string) *Builder {
	b.def.Description = description
	return b
}

// OnLoad sets the script run once before the initial node is entered.
func (b *Builder) OnLoad(source string) *Builder {
	b.def.OnLoad = source
	return b
}

// Language selects the script language of every script in the automaton.
func (b *Builder) Language(lang string) *Builder {
	b.def.ScriptLanguage = lang
	return b
}

// Param declares the type of a ${name} parameter ("duration", "int", "[string]"...).
func (b *Builder) Param(name, typ string) *Builder {
	if b.def.Parameters == nil {
		b.def.Parameters = make(map[string]string)
	}
	b.def.Parameters[name] = typ
	return b
}

// Add creates a new node in the automaton.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.index[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NodeDef{ID: id},
		builder: b,
	}
	b.index[id] = nb
	b.nodes = append(b.nodes, nb)
	return nb
}

// Definition assembles the nodes and edges in the order they were added.
func (b *Builder) Definition() *domain.Definition {
	def := b.def
	if b.def.Parameters != nil {
		def.Parameters = make(map[string]string, len(b.def.Parameters))
		for k, v := range b.def.Parameters {
			def.Parameters[k] = v
		}
	}
	def.Nodes = make([]domain.NodeDef, 0, len(b.nodes))
	def.Edges = nil
	for _, nb := range b.nodes {
		def.Nodes = append(def.Nodes, nb.node)
	}
	for _, nb := range b.nodes {
		for _, eb := range nb.edges {
			def.Edges = append(def.Edges, eb.edge)
		}
	}
	return &def
}

// Build compiles the automaton into a memory loader.
// Only structural mistakes of the builder itself are reported here; the engine
// validates the rest when the definition is loaded.
func (b *Builder) Build() (*memory.Loader, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("failed to build automaton %q: %w", b.def.Name, domain.ErrNoDefinition)
	}
	def := b.Definition()
	for _, e := range def.Edges {
		if _, ok := b.index[e.DestinationID]; !ok {
			return nil, fmt.Errorf("failed to build automaton %q: edge %q points to unknown node %q", b.def.Name, e.ID, e.DestinationID)
		}
	}
	return memory.NewLoader(def), nil
}
