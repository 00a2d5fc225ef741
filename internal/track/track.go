// Package track implements the time-tracking operations on top of the entry
// store: starting and stopping sessions, retrospective logging, summaries,
// and deletion. It is the only writer of tracking semantics; rendering is the
// command layer's job.
package track

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"punch/internal/period"
	"punch/internal/store"
)

const dateLayout = "2006-01-02"

// Tracker combines the store with the period calculator and enforces the
// session invariants: at most one active session, positive durations,
// validate before mutate.
type Tracker struct {
	store    *store.Store
	rounding bool // round session durations to 15-minute buckets by default
}

// New creates a Tracker. roundSessions controls the default rounding policy
// for session durations; manual entries are never rounded.
func New(st *store.Store, roundSessions bool) *Tracker {
	return &Tracker{store: st, rounding: roundSessions}
}

// Store exposes the underlying store (for export and the watch view).
func (t *Tracker) Store() *store.Store {
	return t.store
}

// StartResult reports a started session and, when a previous session was
// auto-stopped, what happened to it.
type StartResult struct {
	Project     string      `json:"project"`
	Description string      `json:"description,omitempty"`
	SessionID   string      `json:"session_id"`
	StartedAt   time.Time   `json:"started_at"`
	Stopped     *StopResult `json:"stopped,omitempty"`
}

// StopResult reports a finalized session. Recorded is false when the rounded
// duration came out to zero and no entry was appended.
type StopResult struct {
	Project    string       `json:"project"`
	Minutes    int          `json:"minutes"`
	RawMinutes int          `json:"raw_minutes"`
	Recorded   bool         `json:"recorded"`
	Entry      *store.Entry `json:"entry,omitempty"`
}

// Start begins tracking a project. If a session is already active it is
// stopped first (its entry appended if the rounded duration is positive)
// rather than erroring, so switching projects is a single command.
func (t *Tracker) Start(project, description string, noRound bool) (*StartResult, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, fmt.Errorf("project name is required")
	}

	var stopped *StopResult
	current, err := t.store.Session()
	if err != nil {
		return nil, err
	}
	if current != nil {
		stopped, err = t.finalize(current, noRound)
		if err != nil {
			return nil, err
		}
	}

	id, err := t.store.NewID(store.SessionIDPrefix)
	if err != nil {
		return nil, err
	}
	sess := &store.Session{
		Project:     project,
		StartedAt:   t.store.Now(),
		Description: strings.TrimSpace(description),
		SessionID:   id,
	}
	if err := t.store.SaveSession(sess); err != nil {
		return nil, err
	}

	return &StartResult{
		Project:     sess.Project,
		Description: sess.Description,
		SessionID:   sess.SessionID,
		StartedAt:   sess.StartedAt,
		Stopped:     stopped,
	}, nil
}

// Stop ends the active session, appending an entry when the (possibly
// rounded) duration is positive. The state file is always cleared, even when
// nothing was worth recording.
func (t *Tracker) Stop(noRound bool) (*StopResult, error) {
	sess, err := t.store.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("no active tracking session found")
	}
	return t.finalize(sess, noRound)
}

// finalize computes the session duration, appends the log entry if positive,
// and clears the state file.
func (t *Tracker) finalize(sess *store.Session, noRound bool) (*StopResult, error) {
	now := t.store.Now()
	raw := int(math.Round(now.Sub(sess.StartedAt).Minutes()))
	minutes := raw
	if t.rounding && !noRound {
		minutes = period.RoundToQuarter(raw)
	}
	if minutes < 0 {
		minutes = 0
	}

	result := &StopResult{Project: sess.Project, Minutes: minutes, RawMinutes: raw}

	if minutes > 0 {
		id := sess.SessionID
		if id == "" {
			var err error
			if id, err = t.store.NewID(store.SessionIDPrefix); err != nil {
				return nil, err
			}
		}
		entry := store.Entry{
			Project:     sess.Project,
			Date:        sess.StartedAt.In(now.Location()).Format(dateLayout),
			Minutes:     minutes,
			Description: sess.Description,
			SessionID:   id,
		}
		if err := t.store.AppendWithContext(entry, "stop"); err != nil {
			return nil, err
		}
		result.Recorded = true
		result.Entry = &entry
	}

	if err := t.store.ClearSession(); err != nil {
		return nil, err
	}
	return result, nil
}

// Log records a manual entry with the exact given duration. Manual entries
// are never auto-rounded.
func (t *Tracker) Log(project string, minutes int, description, dayOpt, timeOpt string) (*store.Entry, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of minutes")
	}

	when, err := period.ResolveDateTime(dayOpt, timeOpt, t.store.Now())
	if err != nil {
		return nil, err
	}
	id, err := t.store.NewID(store.ManualIDPrefix)
	if err != nil {
		return nil, err
	}

	entry := store.Entry{
		Project:     project,
		Date:        when.Format(dateLayout),
		Minutes:     minutes,
		Description: strings.TrimSpace(description),
		SessionID:   id,
	}
	if err := t.store.AppendWithContext(entry, "log"); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SummaryGroup is one project's share of a summary.
type SummaryGroup struct {
	Project string `json:"project"`
	Minutes int    `json:"minutes"`
	Entries int    `json:"entries"`
}

// Summary aggregates entries for a period, optionally narrowed by project.
type Summary struct {
	Period       period.Period  `json:"period"`
	Groups       []SummaryGroup `json:"groups"`
	TotalMinutes int            `json:"total_minutes"`
}

// Summary filters entries by period and project, groups them by project, and
// sums minutes per group. Groups are sorted by descending total.
func (t *Tracker) Summary(p period.Period, ref time.Time, projectFilter string) (*Summary, error) {
	entries, err := t.store.Entries()
	if err != nil {
		return nil, err
	}
	entries = period.FilterByPeriod(entries, p, ref)
	entries = filterProjects(entries, projectFilter)

	byProject := make(map[string]*SummaryGroup)
	order := []string{}
	total := 0
	for _, e := range entries {
		g, ok := byProject[e.Project]
		if !ok {
			g = &SummaryGroup{Project: e.Project}
			byProject[e.Project] = g
			order = append(order, e.Project)
		}
		g.Minutes += e.Minutes
		g.Entries++
		total += e.Minutes
	}

	groups := make([]SummaryGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byProject[name])
	}
	sortGroups(groups)

	return &Summary{Period: p, Groups: groups, TotalMinutes: total}, nil
}

func sortGroups(groups []SummaryGroup) {
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if groups[j].Minutes > groups[i].Minutes ||
				(groups[j].Minutes == groups[i].Minutes && groups[j].Project < groups[i].Project) {
				groups[i], groups[j] = groups[j], groups[i]
			}
		}
	}
}

// LogsOptions narrow a log listing by provenance and description presence.
type LogsOptions struct {
	SessionsOnly     bool
	ManualOnly       bool
	WithDescriptions bool
}

// LogsResult is an ordered listing of entries plus their total.
type LogsResult struct {
	Period       period.Period `json:"period"`
	Entries      []store.Entry `json:"entries"`
	TotalMinutes int           `json:"total_minutes"`
}

// Logs lists entries within a period, filtered by provenance predicates.
func (t *Tracker) Logs(p period.Period, ref time.Time, opts LogsOptions) (*LogsResult, error) {
	entries, err := t.store.Entries()
	if err != nil {
		return nil, err
	}
	entries = period.FilterByPeriod(entries, p, ref)

	out := []store.Entry{}
	total := 0
	for _, e := range entries {
		if opts.SessionsOnly && !e.FromSession() {
			continue
		}
		if opts.ManualOnly && !e.Manual() {
			continue
		}
		if opts.WithDescriptions && e.Description == "" {
			continue
		}
		out = append(out, e)
		total += e.Minutes
	}
	return &LogsResult{Period: p, Entries: out, TotalMinutes: total}, nil
}

// DeleteEntry removes the index-th entry (1-based) of the period-filtered
// view from the full log. Exactly one row is removed, identified by its
// original line so duplicates beyond the indexed position survive.
func (t *Tracker) DeleteEntry(index int, p period.Period, ref time.Time) (*store.Entry, error) {
	all, err := t.store.Entries()
	if err != nil {
		return nil, err
	}
	view := period.FilterByPeriod(all, p, ref)
	if len(view) == 0 {
		return nil, fmt.Errorf("no entries found for period %q", p)
	}
	if index < 1 || index > len(view) {
		return nil, fmt.Errorf("index %d out of range: valid range is 1-%d", index, len(view))
	}
	target := view[index-1]

	remaining, removed := removeOne(all, target)
	if !removed {
		return nil, fmt.Errorf("entry %d not found in log", index)
	}
	if err := t.store.WriteAll(remaining); err != nil {
		return nil, err
	}
	return &target, nil
}

func removeOne(entries []store.Entry, target store.Entry) ([]store.Entry, bool) {
	out := make([]store.Entry, 0, len(entries))
	removed := false
	for _, e := range entries {
		if !removed && e.Same(target) {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out, removed
}

// CriteriaKind selects how DeleteByCriteria narrows candidates after the
// project filter. The kinds are mutually exclusive; the command layer
// validates that before calling in.
type CriteriaKind int

const (
	CriteriaNone CriteriaKind = iota
	CriteriaLast
	CriteriaPeriod
)

// DeleteCriteria is the tagged narrowing variant for bulk deletion.
type DeleteCriteria struct {
	Kind   CriteriaKind
	Period period.Period // set when Kind is CriteriaPeriod
}

// BulkDeleteResult reports what a bulk deletion removed.
type BulkDeleteResult struct {
	Deleted      []store.Entry `json:"deleted"`
	TotalMinutes int           `json:"total_minutes"`
}

// DeleteByCriteria removes every entry matching the project filter and
// criteria in one rewrite. Any narrowing step that leaves zero candidates is
// an error naming the predicate that excluded everything; the log is left
// untouched in that case.
func (t *Tracker) DeleteByCriteria(projectFilter string, crit DeleteCriteria) (*BulkDeleteResult, error) {
	all, err := t.store.Entries()
	if err != nil {
		return nil, err
	}

	candidates := all
	if projectFilter != "" {
		candidates = filterProjects(candidates, projectFilter)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no entries match project filter %q", projectFilter)
		}
	}

	switch crit.Kind {
	case CriteriaLast:
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no entries to delete")
		}
		candidates = []store.Entry{mostRecent(candidates)}
	case CriteriaPeriod:
		candidates = period.FilterByPeriod(candidates, crit.Period, t.store.Now())
		if len(candidates) == 0 {
			if projectFilter != "" {
				return nil, fmt.Errorf("no entries in the current %s match project filter %q", crit.Period, projectFilter)
			}
			return nil, fmt.Errorf("no entries found in the current %s", crit.Period)
		}
	default:
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no entries to delete")
		}
	}

	remaining := all
	result := &BulkDeleteResult{}
	for _, target := range candidates {
		var removed bool
		remaining, removed = removeOne(remaining, target)
		if !removed {
			continue
		}
		result.Deleted = append(result.Deleted, target)
		result.TotalMinutes += target.Minutes
	}
	if err := t.store.WriteAll(remaining); err != nil {
		return nil, err
	}
	return result, nil
}

// mostRecent picks the single most recent candidate: the latest date, ties
// broken by position in the log (later wins).
func mostRecent(entries []store.Entry) store.Entry {
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Date >= best.Date {
			best = e
		}
	}
	return best
}

// Projects returns rolled-up stats for every project, biggest totals first.
func (t *Tracker) Projects() ([]*ProjectStats, error) {
	entries, err := t.store.Entries()
	if err != nil {
		return nil, err
	}
	return sortedStats(Rollup(entries, t.store.Now().Location())), nil
}

// DeleteProject removes every entry whose project name matches exactly
// (case-insensitive). Deleting a project with no entries is an error.
func (t *Tracker) DeleteProject(name string) (*BulkDeleteResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	all, err := t.store.Entries()
	if err != nil {
		return nil, err
	}

	remaining := make([]store.Entry, 0, len(all))
	result := &BulkDeleteResult{}
	for _, e := range all {
		if strings.EqualFold(e.Project, name) {
			result.Deleted = append(result.Deleted, e)
			result.TotalMinutes += e.Minutes
			continue
		}
		remaining = append(remaining, e)
	}
	if len(result.Deleted) == 0 {
		return nil, fmt.Errorf("project not found: %s", name)
	}
	if err := t.store.WriteAll(remaining); err != nil {
		return nil, err
	}
	return result, nil
}

// Status reports the current tracking state without mutating anything. It is
// cheap enough to call from a shell prompt.
type Status struct {
	Tracking       bool      `json:"tracking"`
	Project        string    `json:"project,omitempty"`
	Description    string    `json:"description,omitempty"`
	StartedAt      time.Time `json:"started_at,omitzero"`
	ElapsedMinutes int       `json:"elapsed_minutes,omitempty"`
}

// Status returns the live tracking state.
func (t *Tracker) Status() (*Status, error) {
	sess, err := t.store.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &Status{}, nil
	}
	elapsed := int(math.Round(t.store.Now().Sub(sess.StartedAt).Minutes()))
	if elapsed < 0 {
		elapsed = 0
	}
	return &Status{
		Tracking:       true,
		Project:        sess.Project,
		Description:    sess.Description,
		StartedAt:      sess.StartedAt,
		ElapsedMinutes: elapsed,
	}, nil
}

// Export writes the full log as CSV to w.
func (t *Tracker) Export(w io.Writer) error {
	return t.store.Export(w)
}
