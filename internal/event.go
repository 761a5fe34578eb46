package internal

import "time"

type Event struct {
	ID          string
	Summary     string
	Location    string
	Description string
	HangoutLink string
	EntryPoints []EntryPoint
	Start       EventTime
}

// EntryPoint is one conferencing method attached to an event.
type EntryPoint struct {
	Type string
	URI  string
}

const EntryPointVideo = "video"

// EventTime keeps the start as the provider sent it. Exactly one of
// DateTime and Date is set; Date is used by all-day events.
type EventTime struct {
	DateTime string
	Date     string
}

func (t EventTime) AllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

func (t EventTime) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, t.DateTime)
}

func (t EventTime) String() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Window is the [From, To] range queried on every run.
type Window struct {
	From time.Time
	To   time.Time
}

func NewWindow(now time.Time, lookback, lookahead time.Duration) Window {
	return Window{
		From: now.Add(-lookback),
		To:   now.Add(lookahead),
	}
}
