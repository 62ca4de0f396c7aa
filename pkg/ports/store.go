package ports

import (
	"context"

	"github.com/aretw0/vigil/pkg/domain"
)

// VerdictStore persists verdict reports. Automaton run state is never stored.
type VerdictStore interface {
	// Save stores v under v.ID, replacing any previous verdict with that ID.
	Save(ctx context.Context, v domain.Verdict) error

	// Load retrieves a verdict.
	// Returns domain.ErrVerdictNotFound if it does not exist.
	Load(ctx context.Context, id string) (domain.Verdict, error)

	// List returns stored verdicts, most recently finished first.
	List(ctx context.Context) ([]domain.Verdict, error)

	// Delete removes a verdict. Deleting a missing verdict is not an error.
	Delete(ctx context.Context, id string) error
}
