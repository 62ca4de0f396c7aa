package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/vigil/pkg/domain"
)

// Store implements ports.VerdictStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Verdict
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Verdict),
	}
}

// Save stores the verdict.
func (s *Store) Save(ctx context.Context, v domain.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[v.ID] = v
	return nil
}

// Load retrieves a verdict.
func (s *Store) Load(ctx context.Context, id string) (domain.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[id]
	if !ok {
		return domain.Verdict{}, domain.ErrVerdictNotFound
	}
	return v, nil
}

// Delete removes the verdict.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns every verdict, most recently finished first.
func (s *Store) List(ctx context.Context) ([]domain.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Verdict, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinishedAt.Equal(out[j].FinishedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out, nil
}
