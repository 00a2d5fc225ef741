package track

import (
	"sort"
	"strings"
	"time"

	"punch/internal/store"
)

// ProjectStats aggregates logged time for one project path. Projects use
// '/'-delimited names ("business/quote"); TotalMinutes rolls descendant time
// up into each node while DirectMinutes counts only entries logged exactly to
// that path.
type ProjectStats struct {
	Project       string    `json:"project"`
	DirectMinutes int       `json:"direct_minutes"`
	TotalMinutes  int       `json:"total_minutes"`
	Entries       int       `json:"entries"`
	LastUsed      time.Time `json:"last_used"`
}

// parentPath returns the '/'-parent of a project path, or "" for top-level
// names.
func parentPath(project string) string {
	idx := strings.LastIndex(project, "/")
	if idx < 0 {
		return ""
	}
	return project[:idx]
}

// Rollup builds per-project stats from entries and computes rolled-up totals.
// A project is a root when its parent path has no entry of its own; totals are
// computed root-down, each node summing its direct minutes plus the totals of
// its immediate children. The pass is idempotent and never double-counts a
// path that has both its own entries and descendants.
func Rollup(entries []store.Entry, loc *time.Location) map[string]*ProjectStats {
	stats := make(map[string]*ProjectStats)
	for _, e := range entries {
		st, ok := stats[e.Project]
		if !ok {
			st = &ProjectStats{Project: e.Project}
			stats[e.Project] = st
		}
		st.DirectMinutes += e.Minutes
		st.Entries++
		if day := e.Day(loc); day.After(st.LastUsed) {
			st.LastUsed = day
		}
	}

	children := make(map[string][]string)
	for project := range stats {
		if parent := parentPath(project); parent != "" {
			if _, ok := stats[parent]; ok {
				children[parent] = append(children[parent], project)
			}
		}
	}

	var compute func(project string) int
	compute = func(project string) int {
		total := stats[project].DirectMinutes
		for _, child := range children[project] {
			total += compute(child)
		}
		stats[project].TotalMinutes = total
		return total
	}

	for project := range stats {
		if _, ok := stats[parentPath(project)]; !ok {
			compute(project)
		}
	}
	return stats
}

// sortedStats flattens a rollup map into a deterministic slice, biggest
// totals first.
func sortedStats(stats map[string]*ProjectStats) []*ProjectStats {
	out := make([]*ProjectStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinutes != out[j].TotalMinutes {
			return out[i].TotalMinutes > out[j].TotalMinutes
		}
		return out[i].Project < out[j].Project
	})
	return out
}

// MatchesProject is the one project-filter semantic used by both summaries
// and bulk deletion: a case-insensitive substring match on the full path.
// A filter naming a parent ("business") therefore also covers every
// descendant path ("business/quote").
func MatchesProject(project, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(project), strings.ToLower(filter))
}

func filterProjects(entries []store.Entry, filter string) []store.Entry {
	if filter == "" {
		return entries
	}
	out := []store.Entry{}
	for _, e := range entries {
		if MatchesProject(e.Project, filter) {
			out = append(out, e)
		}
	}
	return out
}
