// Package seentest holds the behaviour every seen.Store backend must share.
package seentest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

// Factory returns an empty store. seed, when non-empty, must be present in
// the store before it is returned.
type Factory func(t *testing.T, seed ...seen.Entry) seen.Store

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Run("empty", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		entries, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)

		marked, err := s.IsMarked(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, marked)

		removed, err := s.Prune(ctx, now, seen.DefaultRetention)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("mark then is marked", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Mark(ctx, "abc", now))

		marked, err := s.IsMarked(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, marked)

		marked, err = s.IsMarked(ctx, "ab")
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("marked survives prune within retention", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Mark(ctx, "abc", now))
		removed, err := s.Prune(ctx, now.Add(23*time.Hour), seen.DefaultRetention)
		require.NoError(t, err)
		assert.Zero(t, removed)

		marked, err := s.IsMarked(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("mark keeps earlier entries for the same id", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Mark(ctx, "abc", now.Add(-30*time.Hour)))
		require.NoError(t, s.Mark(ctx, "abc", now))

		entries, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		removed, err := s.Prune(ctx, now, seen.DefaultRetention)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		marked, err := s.IsMarked(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("prune", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t,
			seen.NewEntry("old", now.Add(-25*time.Hour)),
			seen.NewEntry("exactly", now.Add(-seen.DefaultRetention)),
			seen.NewEntry("fresh", now.Add(-time.Hour)),
			seen.ParseEntry("legacy"),
			seen.ParseEntry("broken|last tuesday"),
		)

		removed, err := s.Prune(ctx, now, seen.DefaultRetention)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		entries, err := s.Load(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{
				seen.NewEntry("fresh", now.Add(-time.Hour)).String(),
				"legacy",
				"broken|last tuesday",
			},
			rawEntries(entries),
		)

		for _, id := range []string{"old", "exactly"} {
			marked, err := s.IsMarked(ctx, id)
			require.NoError(t, err)
			assert.False(t, marked, id)
		}
	})

	t.Run("legacy entry survives any age", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, seen.ParseEntry("legacy"))

		_, err := s.Prune(ctx, now.AddDate(10, 0, 0), seen.DefaultRetention)
		require.NoError(t, err)

		marked, err := s.IsMarked(ctx, "legacy")
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		var want []string
		for i := 0; i < 10; i++ {
			at := now.Add(time.Duration(i) * time.Minute)
			id := fmt.Sprintf("event-%d", i%4)
			require.NoError(t, s.Mark(ctx, id, at))
			want = append(want, seen.NewEntry(id, at).String())
		}

		entries, err := s.Load(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, rawEntries(entries))

		_, err = s.Prune(ctx, now.Add(time.Hour), seen.DefaultRetention)
		require.NoError(t, err)

		entries, err = s.Load(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, rawEntries(entries))
	})
}

func rawEntries(entries []seen.Entry) []string {
	res := make([]string, len(entries))
	for i, e := range entries {
		res[i] = e.String()
	}
	return res
}
