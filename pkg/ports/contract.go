package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunVerdictStoreContract runs a suite of tests to verify that a VerdictStore
// implementation adheres to the interface contract.
func RunVerdictStoreContract(t *testing.T, store VerdictStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	verdict := func(id string, finished time.Time) domain.Verdict {
		return domain.Verdict{
			ID:         id,
			Automaton:  "hello",
			Source:     "app.log",
			Succeeded:  false,
			Reason:     `reached FAILURE node "late"`,
			Entries:    12,
			FinalNode:  "late",
			StartedAt:  finished.Add(-time.Second),
			FinishedAt: finished,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		v := verdict(prefix+"-a", base)
		require.NoError(t, store.Save(ctx, v))

		loaded, err := store.Load(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, v.ID, loaded.ID)
		assert.Equal(t, v.Reason, loaded.Reason)
		assert.Equal(t, v.Entries, loaded.Entries)
		assert.True(t, v.FinishedAt.Equal(loaded.FinishedAt))
		assert.Equal(t, "fail", loaded.Result())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrVerdictNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		v := verdict(prefix+"-b", base)
		require.NoError(t, store.Save(ctx, v))
		v.Succeeded = true
		v.Reason = ""
		require.NoError(t, store.Save(ctx, v))

		loaded, err := store.Load(ctx, v.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Succeeded)
	})

	t.Run("List newest first", func(t *testing.T) {
		older := verdict(prefix+"-old", base.Add(-time.Hour))
		newer := verdict(prefix+"-new", base.Add(time.Hour))
		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))

		list, err := store.List(ctx)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, v := range list {
			pos[v.ID] = i
		}
		require.Contains(t, pos, older.ID)
		require.Contains(t, pos, newer.ID)
		assert.Less(t, pos[newer.ID], pos[older.ID])
	})

	t.Run("Delete", func(t *testing.T) {
		v := verdict(prefix+"-c", base)
		require.NoError(t, store.Save(ctx, v))
		require.NoError(t, store.Delete(ctx, v.ID))

		_, err := store.Load(ctx, v.ID)
		assert.ErrorIs(t, err, domain.ErrVerdictNotFound, "Load after Delete should return ErrVerdictNotFound")
		assert.NoError(t, store.Delete(ctx, v.ID))
	})
}
