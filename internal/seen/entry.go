// Package seen records which events already had their meeting opened.
//
// Entries are kept as a set. The same identifier may appear several times
// with different timestamps; only age-based pruning ever removes an entry.
package seen

import (
	"strings"
	"time"
)

type Kind int

const (
	// Bare entries carry only an identifier. They predate timestamps and
	// are never pruned.
	Bare Kind = iota
	Timestamped
	// Unparsed entries have a timestamp that could not be read. They are
	// kept rather than guessed at.
	Unparsed
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case Timestamped:
		return "timestamped"
	case Unparsed:
		return "unparsed"
	}
	return "unknown"
}

const separator = "|"

// TimeFormat is used for newly marked entries.
const TimeFormat = time.RFC3339Nano

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

type Entry struct {
	Kind Kind
	ID   string
	At   time.Time
	// Stamp is the timestamp text as persisted, written back untouched.
	Stamp string
}

func NewEntry(id string, at time.Time) Entry {
	return Entry{
		Kind:  Timestamped,
		ID:    id,
		At:    at,
		Stamp: at.Format(TimeFormat),
	}
}

// ParseEntry reads one persisted line, "<id>|<timestamp>" or "<id>".
func ParseEntry(raw string) Entry {
	i := strings.LastIndex(raw, separator)
	if i < 0 {
		return Entry{Kind: Bare, ID: raw}
	}
	return parseStamped(raw[:i], raw[i+1:])
}

// ParseStamped builds an entry from an identifier and a timestamp stored
// separately, as the database backend does. An empty stamp is bare.
func ParseStamped(id, stamp string) Entry {
	if stamp == "" {
		return Entry{Kind: Bare, ID: id}
	}
	return parseStamped(id, stamp)
}

func parseStamped(id, stamp string) Entry {
	e := Entry{ID: id, Stamp: stamp}
	at, ok := parseTime(stamp)
	if !ok {
		e.Kind = Unparsed
		return e
	}
	e.Kind = Timestamped
	e.At = at
	return e
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// String returns the persisted form of e.
func (e Entry) String() string {
	if e.Kind == Bare {
		return e.ID
	}
	return e.ID + separator + e.Stamp
}

// Keep reports whether e survives a prune at now.
func (e Entry) Keep(now time.Time, retention time.Duration) bool {
	switch e.Kind {
	case Timestamped:
		return now.Sub(e.At) < retention
	default:
		return true
	}
}

// Survivors returns the entries of a prune at now, preserving order.
func Survivors(entries []Entry, now time.Time, retention time.Duration) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Keep(now, retention) {
			kept = append(kept, e)
		}
	}
	return kept
}

// Contains reports whether any entry carries id.
func Contains(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Add appends e unless an identical entry is already present. Entries for
// the same identifier with a different timestamp are all kept.
func Add(entries []Entry, e Entry) []Entry {
	raw := e.String()
	for _, existing := range entries {
		if existing.String() == raw {
			return entries
		}
	}
	return append(entries, e)
}

// Unique drops repeated identical entries, keeping the first of each.
func Unique(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	res := make([]Entry, 0, len(entries))
	for _, e := range entries {
		raw := e.String()
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		res = append(res, e)
	}
	return res
}
