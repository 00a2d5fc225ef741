package store

import (
	"strings"
	"time"
)

// Session id prefixes distinguish how an entry was produced.
const (
	SessionIDPrefix = "sess_"
	ManualIDPrefix  = "manual_"
)

// Entry is a single logged block of time. Entries are immutable once written;
// edits happen by rewriting the whole log.
type Entry struct {
	Project     string `json:"project"`
	Date        string `json:"date"` // YYYY-MM-DD, local time
	Minutes     int    `json:"duration_minutes"`
	Description string `json:"description,omitempty"`
	SessionID   string `json:"session_id,omitempty"`

	// Raw holds the original log line when the entry was read from disk.
	// Deletion matches on it first so duplicates are removed deterministically.
	Raw string `json:"-"`
}

// FromSession reports whether the entry was produced by a start/stop pair.
func (e Entry) FromSession() bool {
	return strings.HasPrefix(e.SessionID, SessionIDPrefix)
}

// Manual reports whether the entry was logged retrospectively via `punch log`.
func (e Entry) Manual() bool {
	return strings.HasPrefix(e.SessionID, ManualIDPrefix)
}

// Day returns the entry date as a local-time midnight.
func (e Entry) Day(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(dateLayout, e.Date, loc)
	return t
}

// Same reports structural identity for deletion purposes: the exact original
// line when both sides have one, otherwise project+date+duration equality.
func (e Entry) Same(other Entry) bool {
	if e.Raw != "" && other.Raw != "" {
		return e.Raw == other.Raw
	}
	return e.Project == other.Project && e.Date == other.Date && e.Minutes == other.Minutes
}

// Session is the single active tracking session, persisted as state.json.
// At most one exists at a time; starting a new session finalizes the old one.
type Session struct {
	Project     string    `json:"project"`
	StartedAt   time.Time `json:"startTime"`
	Description string    `json:"description,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
}
