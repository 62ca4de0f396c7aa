package vigil

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
)

// Check drives a over every entry of source and reports the verdict.
//
// Entries are fed until the automaton can no longer proceed or the source is
// exhausted, then the end-of-stream marker is pushed. Execution errors do not abort
// Check: they leave the automaton defective and show up in the verdict. The returned
// error is reserved for the source itself failing or ctx being cancelled.
func Check(ctx context.Context, a *Automaton, source ports.EntrySource) (domain.Verdict, error) {
	v := domain.Verdict{
		Automaton: a.Name(),
		StartedAt: time.Now(),
	}

	for a.CanProceed() {
		entry, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return finish(a, v), err
		}
		v.Entries++
		// The error is kept by the automaton and reported through the verdict.
		_ = a.ProceedWithLogEntry(ctx, entry)
	}
	_ = a.PushEOF(ctx)

	return finish(a, v), nil
}

func finish(a *Automaton, v domain.Verdict) domain.Verdict {
	v.Succeeded = a.Succeeded()
	v.Defective = a.IsDefective()
	v.Reason, _ = a.ErrorReason()
	v.FinalNode = a.CurrentNode()
	v.FinishedAt = time.Now()
	return v
}
