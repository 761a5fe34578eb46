// Package launcher runs one polling pass: prune the seen store, fetch the
// events around now, open the meeting of every new one.
package launcher

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/guilherme-santos/zoomlauncher/internal"
	"github.com/guilherme-santos/zoomlauncher/internal/link"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
	"github.com/guilherme-santos/zoomlauncher/internal/seen"
	"github.com/guilherme-santos/zoomlauncher/internal/selector"
)

const (
	DefaultLookback  = 5 * time.Minute
	DefaultLookahead = 5 * time.Minute
)

type Options struct {
	Lookback    time.Duration
	Lookahead   time.Duration
	MaxStartAge time.Duration
	Retention   time.Duration
	Extractor   *link.Extractor
}

type Launcher struct {
	calendar internal.Calendar
	browser  internal.Browser
	store    seen.Store
	selector *selector.Selector
	opts     Options
}

func New(calendar internal.Calendar, browser internal.Browser, store seen.Store, opts Options) *Launcher {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.Retention <= 0 {
		opts.Retention = seen.DefaultRetention
	}
	if opts.Extractor == nil {
		opts.Extractor = link.Zoom
	}
	return &Launcher{
		calendar: calendar,
		browser:  browser,
		store:    store,
		selector: selector.New(opts.MaxStartAge),
		opts:     opts,
	}
}

// Report summarises a pass.
type Report struct {
	Events  int
	Pruned  int
	Opened  []string
	Skipped int
	NoLink  int
}

func (l *Launcher) Run(ctx context.Context, now time.Time) (*Report, error) {
	logger := logging.From(ctx)
	report := new(Report)

	pruned, err := l.store.Prune(ctx, now, l.opts.Retention)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prune seen meetings")
	}
	report.Pruned = pruned
	if pruned > 0 {
		logger.Debug("Pruned seen meetings", "count", pruned)
	}

	window := internal.NewWindow(now, l.opts.Lookback, l.opts.Lookahead)
	events, err := l.calendar.Events(ctx, window)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list events")
	}
	report.Events = len(events)

	if len(events) == 0 {
		logger.Info("No events in the window",
			"lookback", l.opts.Lookback.String(),
			"lookahead", l.opts.Lookahead.String(),
			"window", formatWindow(window),
		)
		return report, nil
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		verdict, err := l.selector.Check(ctx, ev, l.store, now)
		if err != nil {
			return report, goerr.Wrap(err, "failed to check event", goerr.V("event_id", ev.ID))
		}
		if verdict != selector.Actionable {
			selector.LogSkip(logger, ev, verdict)
			report.Skipped++
			continue
		}

		url, ok := l.opts.Extractor.Extract(ev)
		if !ok {
			// Left unmarked so a link added later is picked up next run.
			logger.Info("Event found but no meeting link", logging.Event(ev))
			report.NoLink++
			continue
		}

		logger.Info("Opening meeting link", logging.Event(ev), "link", url)
		if err := l.browser.Open(url); err != nil {
			logger.Warn("Unable to open browser", "link", url, "error", err)
		}
		if err := l.store.Mark(ctx, ev.ID, now); err != nil {
			return report, goerr.Wrap(err, "failed to mark meeting as opened", goerr.V("event_id", ev.ID))
		}
		report.Opened = append(report.Opened, ev.ID)
	}
	return report, nil
}
