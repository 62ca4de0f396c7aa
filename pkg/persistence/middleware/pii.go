package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/dlclark/regexp2"
)

// Mask replaces every redacted match.
const Mask = "***"

type piiMiddleware struct {
	next     ports.VerdictStore
	patterns []*regexp2.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of the patterns in the
// reason and source of every saved verdict. Reasons quote script messages, which
// often carry log payloads.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp2.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.VerdictStore) ports.VerdictStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, v domain.Verdict) error {
	var err error
	if v.Reason, err = m.mask(v.Reason); err != nil {
		return err
	}
	if v.Source, err = m.mask(v.Source); err != nil {
		return err
	}
	return m.next.Save(ctx, v)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (domain.Verdict, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]domain.Verdict, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(s string) (string, error) {
	for _, p := range m.patterns {
		out, err := p.Replace(s, Mask, -1, -1)
		if err != nil {
			return "", fmt.Errorf("failed to redact: %w", err)
		}
		s = out
	}
	return s, nil
}
