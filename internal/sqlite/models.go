package sqlite

import (
	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

type SeenMeeting struct {
	EventID  string `db:"event_id"`
	MarkedAt string `db:"marked_at"`
}

func (m SeenMeeting) Convert() seen.Entry {
	return seen.ParseStamped(m.EventID, m.MarkedAt)
}

func newSeenMeeting(e seen.Entry) SeenMeeting {
	return SeenMeeting{
		EventID:  e.ID,
		MarkedAt: e.Stamp,
	}
}
