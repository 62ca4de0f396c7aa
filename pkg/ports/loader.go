package ports

import (
	"context"

	"github.com/aretw0/vigil/pkg/domain"
)

// DefinitionLoader retrieves an automaton definition.
// Loading happens once, before the first event; the engine never re-reads it.
type DefinitionLoader interface {
	Load(ctx context.Context) (*domain.Definition, error)
}

// EntrySource yields log entries in order.
// Next returns io.EOF once the source is exhausted.
type EntrySource interface {
	Next(ctx context.Context) (domain.LogEntry, error)
}
