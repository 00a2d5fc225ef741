// Package period provides pure date-range, rounding, and formatting logic
// over sequences of time entries.
package period

import (
	"fmt"
	"strings"
	"time"

	"punch/internal/store"
)

// Period is a relative date-range filter anchored to a reference instant.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	All   Period = "all"
)

const dateLayout = "2006-01-02"

// Parse validates a period keyword.
func Parse(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Day:
		return Day, nil
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	case All, "":
		return All, nil
	}
	return "", fmt.Errorf("invalid period %q: use day, week, month, or all", s)
}

// Cutoff returns the earliest instant included in the period relative to ref:
// local midnight of ref's day, of the most recent Sunday, or of the 1st of
// ref's month. All has no cutoff (zero time).
func Cutoff(p Period, ref time.Time) time.Time {
	switch p {
	case Day:
		return startOfDay(ref)
	case Week:
		return startOfWeekSunday(ref)
	case Month:
		y, m, _ := ref.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	default:
		return time.Time{}
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeekSunday(t time.Time) time.Time {
	dayStart := startOfDay(t)
	return dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
}

// FilterByPeriod keeps entries whose date falls on or after the period cutoff.
// All returns the input unchanged in relative order.
func FilterByPeriod(entries []store.Entry, p Period, ref time.Time) []store.Entry {
	if p == All {
		return entries
	}
	cutoff := Cutoff(p, ref)
	out := []store.Entry{}
	for _, e := range entries {
		if !e.Day(ref.Location()).Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByProject keeps entries whose project contains filter,
// case-insensitively. Hierarchy-aware matching is layered on top by the
// tracker; this is the plain substring predicate.
func FilterByProject(entries []store.Entry, filter string) []store.Entry {
	if filter == "" {
		return entries
	}
	needle := strings.ToLower(filter)
	out := []store.Entry{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Project), needle) {
			out = append(out, e)
		}
	}
	return out
}

// FormatDuration renders minutes as "2h 5m", or just "45m" below one hour.
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// RoundToQuarter rounds session minutes to 15-minute buckets. The remainder
// within the hour decides the bucket: up to 7 is dropped, 8-22 becomes 15,
// 23-37 becomes 30, 38-52 becomes 45, and 53-59 rolls to the next whole hour.
// Durations this short are deliberately not billed as slivers.
func RoundToQuarter(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	h, r := minutes/60, minutes%60
	switch {
	case r < 8:
		return h * 60
	case r <= 22:
		return h*60 + 15
	case r <= 37:
		return h*60 + 30
	case r <= 52:
		return h*60 + 45
	default:
		return (h + 1) * 60
	}
}

// ResolveDateTime combines an optional YYYY-MM-DD day and an optional HH:MM
// 24-hour time into a concrete instant. An absent day means "now", still
// applying the time if given. Both formats are validated strictly.
func ResolveDateTime(dayOpt, timeOpt string, now time.Time) (time.Time, error) {
	t := now
	if dayOpt != "" {
		parsed, err := time.ParseInLocation(dateLayout, dayOpt, now.Location())
		if err != nil || parsed.Format(dateLayout) != dayOpt {
			return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dayOpt)
		}
		t = parsed
	}
	if timeOpt != "" {
		clock, err := time.Parse("15:04", timeOpt)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM (24-hour)", timeOpt)
		}
		y, m, d := t.Date()
		t = time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location())
	}
	return t, nil
}
