// Package store handles durable read/write of the time entry log and the
// single current-session state file under the punch data directory.
package store

import (
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"punch/internal/fsutil"
)

const (
	LogFile   = "timetracker.csv"
	StateFile = "state.json"

	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	dateLayout = "2006-01-02"
)

// logHeader is the first line of the log file.
var logHeader = []string{"project", "date", "duration_minutes", "description", "session_id"}

// SaveContext describes a completed save for the git-sync hook, enabling
// semantic commit messages like "Stop timer: business/quote".
type SaveContext struct {
	Filename  string // the file written (e.g. "timetracker.csv")
	Operation string // "start", "stop", "log", "delete", "rewrite"
	ItemName  string // human-readable subject (usually the project)
}

// Store handles all file I/O for the log and session state.
type Store struct {
	dataDir string
	onSave  func(ctx SaveContext)
	now     func() time.Time // injectable clock for deterministic tests
}

// New creates a Store rooted at dataDir, creating the directory and a
// header-only log file if they do not exist.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dataDir: dataDir, now: time.Now}

	logPath := s.path(LogFile)
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		if err := s.writeLog(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", logPath, err)
	}

	return s, nil
}

// SetNowFunc overrides the clock used by the store. Passing nil resets it to
// time.Now.
func (s *Store) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Now returns the current time according to the store clock.
func (s *Store) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// SetOnSave registers a callback invoked after each successful write.
// Used by git sync for auto-commit with semantic messages.
func (s *Store) SetOnSave(fn func(ctx SaveContext)) {
	s.onSave = fn
}

// DataDir returns the path to the data directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) path(filename string) string {
	return filepath.Join(s.dataDir, filename)
}

func (s *Store) notifySave(ctx SaveContext) {
	if s.onSave != nil {
		s.onSave(ctx)
	}
}

// NewID generates an entry/session id of the form prefix + unixmilli + random
// hex, e.g. "sess_1755300000000_a1b2c3d4e5f60708".
func (s *Store) NewID(prefix string) (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return fmt.Sprintf("%s%d_%s", prefix, s.Now().UnixMilli(), hex.EncodeToString(b[:])), nil
}

// ============================================================================
// Entry log
// ============================================================================

// Entries reads every valid entry from the log, sorted ascending by date.
// A missing log file yields an empty slice, not an error. Malformed rows
// (missing fields, non-numeric or non-positive duration) are skipped.
func (s *Store) Entries() ([]Entry, error) {
	f, err := os.Open(s.path(LogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", LogFile, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // legacy rows have fewer columns

	entries := []Entry{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				// A mangled row only poisons itself, not the whole read.
				continue
			}
			return nil, fmt.Errorf("read %s: %w", LogFile, err)
		}
		entry, ok := parseRecord(record)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries, nil
}

// parseRecord converts one csv row into an Entry. It accepts the current
// 5-column shape and the legacy 3-column shape (project,start_time,end_time),
// converting the latter at read time. ok is false for the header row and for
// rows that fail minimal validation.
func parseRecord(record []string) (Entry, bool) {
	if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
		return Entry{}, false
	}
	if strings.EqualFold(strings.TrimSpace(record[0]), "project") {
		return Entry{}, false // header
	}

	if len(record) == 3 {
		return parseLegacyRecord(record)
	}
	if len(record) < 3 {
		return Entry{}, false
	}

	project := strings.TrimSpace(record[0])
	date := strings.TrimSpace(record[1])
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Entry{}, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || minutes <= 0 {
		return Entry{}, false
	}

	e := Entry{
		Project: project,
		Date:    date,
		Minutes: minutes,
		Raw:     joinRecord(record),
	}
	if len(record) > 3 {
		e.Description = record[3]
	}
	if len(record) > 4 {
		e.SessionID = strings.TrimSpace(record[4])
	}
	return e, true
}

// parseLegacyRecord converts the pre-duration log shape
// (project,start_time,end_time) into a dated entry. The derived session id
// marks these as session-produced.
func parseLegacyRecord(record []string) (Entry, bool) {
	project := strings.TrimSpace(record[0])
	start, ok := parseTimestamp(strings.TrimSpace(record[1]))
	if !ok {
		return Entry{}, false
	}
	end, ok := parseTimestamp(strings.TrimSpace(record[2]))
	if !ok {
		return Entry{}, false
	}
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes <= 0 {
		return Entry{}, false
	}
	return Entry{
		Project:   project,
		Date:      start.Local().Format(dateLayout),
		Minutes:   minutes,
		SessionID: fmt.Sprintf("%s%d_legacy", SessionIDPrefix, start.UnixMilli()),
		Raw:       joinRecord(record),
	}, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func entryRecord(e Entry) []string {
	return []string{e.Project, e.Date, strconv.Itoa(e.Minutes), e.Description, e.SessionID}
}

// joinRecord reproduces the csv line for a record, used as the deletion
// identity key.
func joinRecord(record []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(record)
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Append adds a single entry to the end of the log without rewriting it.
func (s *Store) Append(e Entry) error {
	f, err := os.OpenFile(s.path(LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, dataFilePerm)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", LogFile, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(entryRecord(e)); err != nil {
		return fmt.Errorf("append to %s: %w", LogFile, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append to %s: %w", LogFile, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync %s: %w", LogFile, err)
	}
	return nil
}

// WriteAll rewrites the whole log (header plus one row per entry, in the
// given order) atomically, keeping a best-effort .bak of the previous file.
// Used by delete and bulk operations.
func (s *Store) WriteAll(entries []Entry) error {
	if err := s.writeLog(entries); err != nil {
		return err
	}
	s.notifySave(SaveContext{Filename: LogFile, Operation: "rewrite", ItemName: "time log"})
	return nil
}

func (s *Store) writeLog(entries []Entry) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	records := make([][]string, 0, len(entries)+1)
	records = append(records, logHeader)
	for _, e := range entries {
		records = append(records, entryRecord(e))
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("serialize %s: %w", LogFile, err)
	}

	path := s.path(LogFile)
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := fsutil.WriteFileAtomic(path, []byte(b.String()), dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", LogFile, err)
	}
	return nil
}

// Export dumps the full log in its on-disk CSV shape to w.
func (s *Store) Export(w io.Writer) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(entries)+1)
	records = append(records, logHeader)
	for _, e := range entries {
		records = append(records, entryRecord(e))
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("export log: %w", err)
	}
	return nil
}

// ============================================================================
// Session state
// ============================================================================

// Session reads the current session state. A missing or unparseable state
// file means no active session (nil, nil), never an error.
func (s *Store) Session() (*Session, error) {
	data, err := os.ReadFile(s.path(StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", StateFile, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil
	}
	if sess.Project == "" || sess.StartedAt.IsZero() {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession overwrites the state file with the given session.
func (s *Store) SaveSession(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", StateFile, err)
	}
	if err := fsutil.WriteFileAtomic(s.path(StateFile), data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", StateFile, err)
	}
	s.notifySave(SaveContext{Filename: StateFile, Operation: "start", ItemName: sess.Project})
	return nil
}

// ClearSession removes the state file. Absence is not an error.
func (s *Store) ClearSession() error {
	if err := os.Remove(s.path(StateFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", StateFile, err)
	}
	return nil
}

// AppendWithContext appends an entry and fires the save hook with semantic
// context describing the operation that produced it.
func (s *Store) AppendWithContext(e Entry, operation string) error {
	if err := s.Append(e); err != nil {
		return err
	}
	s.notifySave(SaveContext{Filename: LogFile, Operation: operation, ItemName: e.Project})
	return nil
}
