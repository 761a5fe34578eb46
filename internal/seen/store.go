package seen

import (
	"context"
	"time"
)

// DefaultRetention is how long a timestamped entry is kept.
const DefaultRetention = 24 * time.Hour

type Store interface {
	Load(context.Context) ([]Entry, error)
	IsMarked(_ context.Context, id string) (bool, error)
	Mark(_ context.Context, id string, now time.Time) error
	// Prune drops timestamped entries older than retention and returns how
	// many were removed.
	Prune(_ context.Context, now time.Time, retention time.Duration) (int, error)
}
