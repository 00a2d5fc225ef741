package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTestStore creates a Store instance with a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return st
}

func TestNew_CreatesHeaderOnlyLog(t *testing.T) {
	st := createTestStore(t)

	data, err := os.ReadFile(filepath.Join(st.DataDir(), LogFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "project,date,duration_minutes,description,session_id\n"
	if string(data) != want {
		t.Errorf("log file = %q, want %q", string(data), want)
	}
}

func TestEntries_MissingFile(t *testing.T) {
	st := createTestStore(t)
	if err := os.Remove(filepath.Join(st.DataDir(), LogFile)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	entries, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestAppendAndEntries_RoundTrip(t *testing.T) {
	st := createTestStore(t)

	in := []Entry{
		{Project: "business/quote", Date: "2025-08-16", Minutes: 30, Description: "draft", SessionID: "manual_1_ab"},
		{Project: "personal", Date: "2025-08-14", Minutes: 45, SessionID: "sess_2_cd"},
		{Project: "with, comma", Date: "2025-08-15", Minutes: 15, Description: `say "hi"`},
	}
	for _, e := range in {
		if err := st.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(got))
	}

	// Ascending by date.
	wantDates := []string{"2025-08-14", "2025-08-15", "2025-08-16"}
	for i, want := range wantDates {
		if got[i].Date != want {
			t.Errorf("entries[%d].Date = %q, want %q", i, got[i].Date, want)
		}
	}

	if got[1].Project != "with, comma" || got[1].Description != `say "hi"` {
		t.Errorf("csv quoting round-trip failed: %+v", got[1])
	}
	if got[2].Minutes != 30 || got[2].SessionID != "manual_1_ab" {
		t.Errorf("entry fields lost: %+v", got[2])
	}
}

func TestWriteAll_RoundTrip(t *testing.T) {
	st := createTestStore(t)

	in := []Entry{
		{Project: "a", Date: "2025-01-01", Minutes: 10},
		{Project: "b", Date: "2025-01-02", Minutes: 20, Description: "x"},
	}
	if err := st.WriteAll(in); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	got, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	for i := range in {
		if got[i].Project != in[i].Project || got[i].Date != in[i].Date || got[i].Minutes != in[i].Minutes {
			t.Errorf("entries[%d] = %+v, want %+v", i, got[i], in[i])
		}
	}

	data, err := os.ReadFile(filepath.Join(st.DataDir(), LogFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "project,date,duration_minutes,description,session_id\n") {
		t.Error("rewritten log lost its header")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("rewritten log missing trailing newline")
	}
}

func TestEntries_SkipsMalformedRows(t *testing.T) {
	st := createTestStore(t)

	raw := strings.Join([]string{
		"project,date,duration_minutes,description,session_id",
		"good,2025-08-16,30,,",
		",2025-08-16,30,,",      // missing project
		"bad-date,16/08/25,30,,", // unparseable date
		"bad-min,2025-08-16,abc,,",
		"zero,2025-08-16,0,,",
		"negative,2025-08-16,-5,,",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(st.DataDir(), LogFile), []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (malformed rows skipped)", len(entries))
	}
	if entries[0].Project != "good" {
		t.Errorf("entries[0].Project = %q, want %q", entries[0].Project, "good")
	}
}

func TestEntries_ConvertsLegacyRows(t *testing.T) {
	st := createTestStore(t)

	// Old format: project,start_time,end_time.
	raw := strings.Join([]string{
		"project,date,duration_minutes,description,session_id",
		"legacy,2025-08-16 09:00:00,2025-08-16 09:50:00",
		"legacy-bad,2025-08-16 09:00:00,not-a-time",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(st.DataDir(), LogFile), []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Project != "legacy" {
		t.Errorf("Project = %q, want %q", e.Project, "legacy")
	}
	if e.Date != "2025-08-16" {
		t.Errorf("Date = %q, want %q", e.Date, "2025-08-16")
	}
	if e.Minutes != 50 {
		t.Errorf("Minutes = %d, want 50", e.Minutes)
	}
	if !e.FromSession() {
		t.Errorf("legacy entry should carry session provenance, got id %q", e.SessionID)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	st := createTestStore(t)

	// Absent state file is not an error.
	sess, err := st.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if sess != nil {
		t.Fatalf("Session() = %+v, want nil", sess)
	}

	started := time.Date(2025, 8, 16, 9, 30, 0, 0, time.Local)
	want := &Session{Project: "deep-work", StartedAt: started, Description: "focus", SessionID: "sess_1_ff"}
	if err := st.SaveSession(want); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := st.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if got == nil {
		t.Fatal("Session() = nil after save")
	}
	if got.Project != want.Project || !got.StartedAt.Equal(want.StartedAt) ||
		got.Description != want.Description || got.SessionID != want.SessionID {
		t.Errorf("Session() = %+v, want %+v", got, want)
	}

	if err := st.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	// Clearing twice is fine.
	if err := st.ClearSession(); err != nil {
		t.Fatalf("ClearSession() second call error = %v", err)
	}
	sess, err = st.Session()
	if err != nil || sess != nil {
		t.Errorf("Session() after clear = (%+v, %v), want (nil, nil)", sess, err)
	}
}

func TestSession_UnparseableMeansAbsent(t *testing.T) {
	st := createTestStore(t)
	if err := os.WriteFile(filepath.Join(st.DataDir(), StateFile), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	sess, err := st.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if sess != nil {
		t.Errorf("Session() = %+v, want nil for unparseable state", sess)
	}
}

func TestNewID_Prefixes(t *testing.T) {
	st := createTestStore(t)

	sessID, err := st.NewID(SessionIDPrefix)
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if !strings.HasPrefix(sessID, "sess_") {
		t.Errorf("session id = %q, want sess_ prefix", sessID)
	}

	manualID, err := st.NewID(ManualIDPrefix)
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if !strings.HasPrefix(manualID, "manual_") {
		t.Errorf("manual id = %q, want manual_ prefix", manualID)
	}
	if sessID == manualID {
		t.Error("ids should be unique")
	}
}

func TestEntry_Same(t *testing.T) {
	a := Entry{Project: "p", Date: "2025-08-16", Minutes: 30, Raw: `p,2025-08-16,30,,x`}
	b := Entry{Project: "p", Date: "2025-08-16", Minutes: 30, Raw: `p,2025-08-16,30,,y`}
	if a.Same(b) {
		t.Error("entries with different raw lines should not match")
	}

	c := Entry{Project: "p", Date: "2025-08-16", Minutes: 30}
	if !a.Same(c) {
		t.Error("raw-less entry should fall back to field equality")
	}
	d := Entry{Project: "p", Date: "2025-08-16", Minutes: 31}
	if a.Same(d) {
		t.Error("differing duration should not match")
	}
}

func TestSetNowFunc(t *testing.T) {
	st := createTestStore(t)

	fixed := time.Date(2025, 8, 16, 12, 0, 0, 0, time.Local)
	st.SetNowFunc(func() time.Time { return fixed })
	if !st.Now().Equal(fixed) {
		t.Errorf("Now() = %v, want %v", st.Now(), fixed)
	}

	st.SetNowFunc(nil)
	if st.Now().Equal(fixed) {
		t.Error("SetNowFunc(nil) should reset to the real clock")
	}
}
