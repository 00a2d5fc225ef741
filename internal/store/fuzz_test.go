package store

import (
	"strings"
	"testing"
)

// FuzzParseRecord feeds arbitrary csv fields through the row parser to ensure
// it never panics and never accepts an invalid entry.
func FuzzParseRecord(f *testing.F) {
	f.Add("proj", "2025-08-16", "30", "desc", "sess_1_ab")
	f.Add("proj", "2025-08-16", "0", "", "")
	f.Add("", "2025-08-16", "30", "", "")
	f.Add("project", "date", "duration_minutes", "description", "session_id") // header
	f.Add("legacy", "2025-08-16 09:00:00", "2025-08-16 09:50:00", "", "")
	f.Add("p", "not-a-date", "abc", "\x00", "…")
	f.Add("p, with comma", "2025-08-16", "-5", "quote\"inside", "manual_x")

	f.Fuzz(func(t *testing.T, project, date, duration, description, sessionID string) {
		record := []string{project, date, duration, description, sessionID}

		entry, ok := parseRecord(record)
		if !ok {
			return
		}
		if strings.TrimSpace(entry.Project) == "" {
			t.Errorf("accepted entry with empty project: %+v", entry)
		}
		if entry.Minutes <= 0 {
			t.Errorf("accepted non-positive duration: %+v", entry)
		}
		if entry.Date == "" {
			t.Errorf("accepted entry without date: %+v", entry)
		}
	})
}
