package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.VerdictStore using Redis.
// Each verdict is a JSON value; a ZSET scored by finish time orders them.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of stored verdicts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a store from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "vigil:verdict:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the verdict and indexes it by finish time.
func (s *Store) Save(ctx context.Context, v domain.Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(v.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(v.FinishedAt.UnixMilli()),
		Member: v.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a verdict.
func (s *Store) Load(ctx context.Context, id string) (domain.Verdict, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Verdict{}, domain.ErrVerdictNotFound
		}
		return domain.Verdict{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var v domain.Verdict
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	return v, nil
}

// Delete removes the verdict and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns verdicts newest first. Index entries whose value expired are
// pruned lazily.
func (s *Store) List(ctx context.Context) ([]domain.Verdict, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Verdict{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get verdicts: %w", err)
	}

	out := make([]domain.Verdict, 0, len(ids))
	var expired []any
	for i, raw := range vals {
		str, ok := raw.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var v domain.Verdict
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal verdict %s: %w", ids[i], err)
		}
		out = append(out, v)
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired verdicts: %w", err)
		}
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
