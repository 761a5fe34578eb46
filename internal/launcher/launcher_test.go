package launcher_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/zoomlauncher/internal"
	"github.com/guilherme-santos/zoomlauncher/internal/launcher"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fakeCalendar struct {
	events  []*internal.Event
	err     error
	windows []internal.Window
}

func (c *fakeCalendar) Events(_ context.Context, w internal.Window) ([]*internal.Event, error) {
	c.windows = append(c.windows, w)
	return c.events, c.err
}

type fakeBrowser struct {
	opened []string
	err    error
}

func (b *fakeBrowser) Open(url string) error {
	b.opened = append(b.opened, url)
	return b.err
}

func event(id string, start time.Time, description string) *internal.Event {
	return &internal.Event{
		ID:          id,
		Summary:     "Meeting " + id,
		Description: description,
		Start:       internal.EventTime{DateTime: start.Format(time.RFC3339)},
	}
}

func newContext(buf *bytes.Buffer) context.Context {
	return logging.With(context.Background(), logging.New(buf, slog.LevelDebug))
}

func TestRun_OpensNewMeeting(t *testing.T) {
	var logs bytes.Buffer
	ctx := newContext(&logs)
	cal := &fakeCalendar{events: []*internal.Event{
		event("abc", now, "Join https://acme.zoom.us/j/123?pwd=xyz"),
	}}
	browser := &fakeBrowser{}
	store := seen.NewMemoryStore()

	report, err := launcher.New(cal, browser, store, launcher.Options{}).Run(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://acme.zoom.us/j/123?pwd=xyz"}, browser.opened)
	assert.Equal(t, []string{"abc"}, report.Opened)

	marked, err := store.IsMarked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, marked)

	require.Len(t, cal.windows, 1)
	assert.Equal(t, now.Add(-5*time.Minute), cal.windows[0].From)
	assert.Equal(t, now.Add(5*time.Minute), cal.windows[0].To)

	assert.Contains(t, logs.String(), "Opening meeting link")
}

func TestRun_SecondPassDoesNotReopen(t *testing.T) {
	ctx := context.Background()
	cal := &fakeCalendar{events: []*internal.Event{
		event("abc", now, "https://acme.zoom.us/j/123"),
	}}
	browser := &fakeBrowser{}
	l := launcher.New(cal, browser, seen.NewMemoryStore(), launcher.Options{})

	_, err := l.Run(ctx, now)
	require.NoError(t, err)
	report, err := l.Run(ctx, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Len(t, browser.opened, 1)
	assert.Empty(t, report.Opened)
	assert.Equal(t, 1, report.Skipped)
}

func TestRun_SkipsStaleEvent(t *testing.T) {
	var logs bytes.Buffer
	cal := &fakeCalendar{events: []*internal.Event{
		event("late", now.Add(-6*time.Minute), "https://acme.zoom.us/j/123"),
	}}
	browser := &fakeBrowser{}
	store := seen.NewMemoryStore()

	report, err := launcher.New(cal, browser, store, launcher.Options{}).Run(newContext(&logs), now)
	require.NoError(t, err)

	assert.Empty(t, browser.opened)
	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, logs.String(), "started too long ago")

	marked, _ := store.IsMarked(context.Background(), "late")
	assert.False(t, marked)
}

func TestRun_SkipsAlreadyOpened(t *testing.T) {
	var logs bytes.Buffer
	cal := &fakeCalendar{events: []*internal.Event{
		event("abc", now, "https://acme.zoom.us/j/123"),
	}}
	browser := &fakeBrowser{}
	store := seen.NewMemoryStore(seen.NewEntry("abc", now.Add(-2*time.Minute)))

	report, err := launcher.New(cal, browser, store, launcher.Options{}).Run(newContext(&logs), now)
	require.NoError(t, err)

	assert.Empty(t, browser.opened)
	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, logs.String(), "Already opened")
}

func TestRun_NoLinkStaysEligible(t *testing.T) {
	ctx := context.Background()
	ev := event("abc", now, "agenda to follow")
	cal := &fakeCalendar{events: []*internal.Event{ev}}
	browser := &fakeBrowser{}
	store := seen.NewMemoryStore()
	l := launcher.New(cal, browser, store, launcher.Options{})

	report, err := l.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.NoLink)
	assert.Empty(t, browser.opened)

	marked, err := store.IsMarked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, marked)

	ev.EntryPoints = []internal.EntryPoint{{Type: "video", URI: "https://acme.zoom.us/j/999"}}
	report, err = l.Run(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, report.Opened)
	assert.Equal(t, []string{"https://acme.zoom.us/j/999"}, browser.opened)
}

func TestRun_EmptyWindow(t *testing.T) {
	var logs bytes.Buffer
	browser := &fakeBrowser{}

	report, err := launcher.New(&fakeCalendar{}, browser, seen.NewMemoryStore(), launcher.Options{}).Run(newContext(&logs), now)
	require.NoError(t, err)

	assert.Zero(t, report.Events)
	assert.Empty(t, browser.opened)
	assert.Contains(t, logs.String(), "No events in the window")
}

func TestRun_OpensEveryActionableEvent(t *testing.T) {
	cal := &fakeCalendar{events: []*internal.Event{
		event("a", now.Add(-time.Minute), "https://a.zoom.us/j/1"),
		event("b", now.Add(-10*time.Minute), "https://b.zoom.us/j/2"),
		event("c", now.Add(time.Minute), "https://zoom.us/j/3"),
	}}
	browser := &fakeBrowser{}

	report, err := launcher.New(cal, browser, seen.NewMemoryStore(), launcher.Options{}).Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, report.Opened)
	assert.Equal(t, []string{"https://a.zoom.us/j/1", "https://zoom.us/j/3"}, browser.opened)
}

func TestRun_BrowserFailureStillMarks(t *testing.T) {
	ctx := context.Background()
	cal := &fakeCalendar{events: []*internal.Event{event("abc", now, "https://acme.zoom.us/j/1")}}
	browser := &fakeBrowser{err: errors.New("no display")}
	store := seen.NewMemoryStore()

	report, err := launcher.New(cal, browser, store, launcher.Options{}).Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, report.Opened)

	marked, err := store.IsMarked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestRun_PrunesBeforeFetching(t *testing.T) {
	ctx := context.Background()
	store := seen.NewMemoryStore(
		seen.NewEntry("abc", now.Add(-25*time.Hour)),
		seen.ParseEntry("legacy"),
	)
	cal := &fakeCalendar{events: []*internal.Event{event("abc", now, "https://acme.zoom.us/j/1")}}
	browser := &fakeBrowser{}

	report, err := launcher.New(cal, browser, store, launcher.Options{}).Run(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Pruned)
	assert.Equal(t, []string{"abc"}, report.Opened)
}

func TestRun_CustomWindow(t *testing.T) {
	cal := &fakeCalendar{}
	opts := launcher.Options{Lookback: 10 * time.Minute, Lookahead: time.Minute}

	_, err := launcher.New(cal, &fakeBrowser{}, seen.NewMemoryStore(), opts).Run(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, cal.windows, 1)
	assert.Equal(t, now.Add(-10*time.Minute), cal.windows[0].From)
	assert.Equal(t, now.Add(time.Minute), cal.windows[0].To)
}

func TestRun_CalendarError(t *testing.T) {
	calErr := errors.New("boom")
	cal := &fakeCalendar{err: calErr}

	_, err := launcher.New(cal, &fakeBrowser{}, seen.NewMemoryStore(), launcher.Options{}).Run(context.Background(), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, calErr)
}
