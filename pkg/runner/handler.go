package runner

import (
	"context"

	"github.com/aretw0/vigil/pkg/domain"
)

// Reporter defines how finished verdicts are presented.
// This allows switching between Text (terminal) and JSON (structured) modes.
// The Runner serializes calls to Report.
type Reporter interface {
	Report(ctx context.Context, v domain.Verdict) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, v domain.Verdict) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, v domain.Verdict) error {
	return f(ctx, v)
}
