// Package selector decides which events in the window should get their
// meeting opened.
package selector

import (
	"context"
	"log/slog"
	"time"

	"github.com/guilherme-santos/zoomlauncher/internal"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

const DefaultMaxStartAge = 5 * time.Minute

type Verdict int

const (
	Actionable Verdict = iota
	StartedTooLongAgo
	AlreadyOpened
)

func (v Verdict) String() string {
	switch v {
	case Actionable:
		return "actionable"
	case StartedTooLongAgo:
		return "started too long ago"
	case AlreadyOpened:
		return "already opened"
	}
	return "unknown"
}

// Message is the log line for an event skipped with this verdict.
func (v Verdict) Message() string {
	switch v {
	case StartedTooLongAgo:
		return "Skipping (started too long ago)"
	case AlreadyOpened:
		return "Already opened"
	}
	return "Skipping event"
}

type Selector struct {
	maxStartAge time.Duration
}

func New(maxStartAge time.Duration) *Selector {
	if maxStartAge <= 0 {
		maxStartAge = DefaultMaxStartAge
	}
	return &Selector{maxStartAge: maxStartAge}
}

// Stale reports whether a timed event started more than the allowed age
// before now. All-day events and starts that do not parse are never stale.
func (s *Selector) Stale(ev *internal.Event, now time.Time) bool {
	if ev.Start.DateTime == "" {
		return false
	}
	start, err := ev.Start.Time()
	if err != nil {
		return false
	}
	return start.Before(now.Add(-s.maxStartAge))
}

func (s *Selector) Check(ctx context.Context, ev *internal.Event, store seen.Store, now time.Time) (Verdict, error) {
	if s.Stale(ev, now) {
		return StartedTooLongAgo, nil
	}
	marked, err := store.IsMarked(ctx, ev.ID)
	if err != nil {
		return Actionable, err
	}
	if marked {
		return AlreadyOpened, nil
	}
	return Actionable, nil
}

// Select returns the actionable events in their original order. The
// launcher runs Check inline instead so a mark made for one event is seen
// by the next.
func (s *Selector) Select(ctx context.Context, events []*internal.Event, store seen.Store, now time.Time) ([]*internal.Event, error) {
	logger := logging.From(ctx)

	var res []*internal.Event
	for _, ev := range events {
		v, err := s.Check(ctx, ev, store, now)
		if err != nil {
			return nil, err
		}
		if v != Actionable {
			LogSkip(logger, ev, v)
			continue
		}
		res = append(res, ev)
	}
	return res, nil
}

// LogSkip writes the line for an event left out with verdict v.
func LogSkip(logger *slog.Logger, ev *internal.Event, v Verdict) {
	logger.Info(v.Message(), logging.Event(ev), "reason", v.String())
}
