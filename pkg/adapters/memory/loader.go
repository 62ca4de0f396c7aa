package memory

import (
	"context"
	"io"

	"github.com/aretw0/vigil/pkg/domain"
)

// Loader implements ports.DefinitionLoader over a ready Definition.
type Loader struct {
	def *domain.Definition
}

// NewLoader wraps def. Load hands out copies, so later changes to def are not seen
// by automatons already built from it.
func NewLoader(def *domain.Definition) *Loader {
	return &Loader{def: def}
}

// Load returns a copy of the wrapped definition.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.def == nil {
		return nil, domain.ErrNoDefinition
	}
	out := *l.def
	out.Nodes = append([]domain.NodeDef(nil), l.def.Nodes...)
	out.Edges = append([]domain.EdgeDef(nil), l.def.Edges...)
	return &out, nil
}

// Source implements ports.EntrySource over a slice of entries.
type Source struct {
	entries []domain.LogEntry
	next    int
}

// NewSource creates a source yielding entries in order.
func NewSource(entries ...domain.LogEntry) *Source {
	return &Source{entries: entries}
}

// Next returns the next entry, or io.EOF.
func (s *Source) Next(ctx context.Context) (domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.LogEntry{}, err
	}
	if s.next >= len(s.entries) {
		return domain.LogEntry{}, io.EOF
	}
	e := s.entries[s.next]
	s.next++
	return e, nil
}
