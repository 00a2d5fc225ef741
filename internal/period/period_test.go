package period

import (
	"testing"
	"time"

	"punch/internal/store"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"day", Day, false},
		{"week", Week, false},
		{"month", Month, false},
		{"all", All, false},
		{"", All, false},
		{"WEEK", Week, false},
		{" day ", Day, false},
		{"year", "", true},
		{"daily", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCutoff(t *testing.T) {
	// A Wednesday.
	ref := time.Date(2025, 8, 20, 15, 45, 30, 0, time.Local)

	tests := []struct {
		name string
		p    Period
		want time.Time
	}{
		{"day is local midnight", Day, time.Date(2025, 8, 20, 0, 0, 0, 0, time.Local)},
		{"week is most recent Sunday", Week, time.Date(2025, 8, 17, 0, 0, 0, 0, time.Local)},
		{"month is the 1st", Month, time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)},
		{"all has no cutoff", All, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cutoff(tt.p, ref); !got.Equal(tt.want) {
				t.Errorf("Cutoff(%q) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCutoff_WeekOnSunday(t *testing.T) {
	// When the reference day is itself a Sunday, the week starts that day.
	sunday := time.Date(2025, 8, 17, 10, 0, 0, 0, time.Local)
	want := time.Date(2025, 8, 17, 0, 0, 0, 0, time.Local)
	if got := Cutoff(Week, sunday); !got.Equal(want) {
		t.Errorf("Cutoff(week, sunday) = %v, want %v", got, want)
	}
}

func TestFilterByPeriod(t *testing.T) {
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.Local)
	entries := []store.Entry{
		{Project: "a", Date: "2025-07-31", Minutes: 10},
		{Project: "b", Date: "2025-08-01", Minutes: 20},
		{Project: "c", Date: "2025-08-17", Minutes: 30},
		{Project: "d", Date: "2025-08-20", Minutes: 40},
	}

	tests := []struct {
		p    Period
		want []string
	}{
		{Day, []string{"d"}},
		{Week, []string{"c", "d"}},
		{Month, []string{"b", "c", "d"}},
		{All, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.p), func(t *testing.T) {
			got := FilterByPeriod(entries, tt.p, ref)
			if len(got) != len(tt.want) {
				t.Fatalf("FilterByPeriod(%q) kept %d entries, want %d", tt.p, len(got), len(tt.want))
			}
			for i, project := range tt.want {
				if got[i].Project != project {
					t.Errorf("result[%d].Project = %q, want %q", i, got[i].Project, project)
				}
			}
		})
	}
}

func TestFilterByProject(t *testing.T) {
	entries := []store.Entry{
		{Project: "Business/Quote"},
		{Project: "business/invoicing"},
		{Project: "personal"},
	}

	got := FilterByProject(entries, "BUSINESS")
	if len(got) != 2 {
		t.Fatalf("FilterByProject kept %d entries, want 2", len(got))
	}

	if got := FilterByProject(entries, ""); len(got) != 3 {
		t.Errorf("empty filter kept %d entries, want all 3", len(got))
	}
	if got := FilterByProject(entries, "nope"); len(got) != 0 {
		t.Errorf("non-matching filter kept %d entries, want 0", len(got))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{59, "59m"},
		{60, "1h 0m"},
		{65, "1h 5m"},
		{150, "2h 30m"},
		{-5, "0m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestRoundToQuarter(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{-10, 0},
		{0, 0},
		{7, 0},   // too short to count
		{8, 15},  // boundary is inclusive
		{22, 15},
		{23, 30},
		{37, 30},
		{38, 45},
		{50, 45},
		{52, 45}, // boundary is inclusive
		{53, 60}, // rolls to the next whole hour
		{59, 60},
		{60, 60},
		{67, 60},  // 60 + remainder 7, dropped
		{68, 75},  // 60 + remainder 8
		{113, 120}, // 60 + remainder 53, rolls over
	}

	for _, tt := range tests {
		if got := RoundToQuarter(tt.minutes); got != tt.want {
			t.Errorf("RoundToQuarter(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}

func TestRoundToQuarter_AlwaysQuarterMultiple(t *testing.T) {
	for m := 0; m <= 600; m++ {
		if got := RoundToQuarter(m); got%15 != 0 {
			t.Fatalf("RoundToQuarter(%d) = %d, not a multiple of 15", m, got)
		}
	}
}

func TestResolveDateTime(t *testing.T) {
	now := time.Date(2025, 8, 20, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		day     string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{
			name: "absent day defaults to now",
			want: now,
		},
		{
			name: "day only",
			day:  "2025-08-16",
			want: time.Date(2025, 8, 16, 0, 0, 0, 0, time.Local),
		},
		{
			name:  "day and time",
			day:   "2025-08-16",
			clock: "09:15",
			want:  time.Date(2025, 8, 16, 9, 15, 0, 0, time.Local),
		},
		{
			name:  "time applies to today",
			clock: "08:00",
			want:  time.Date(2025, 8, 20, 8, 0, 0, 0, time.Local),
		},
		{
			name:    "non-padded date rejected",
			day:     "2025-8-16",
			wantErr: true,
		},
		{
			name:    "impossible date rejected",
			day:     "2025-02-30",
			wantErr: true,
		},
		{
			name:    "wrong date shape rejected",
			day:     "16/08/2025",
			wantErr: true,
		},
		{
			name:    "bad time rejected",
			clock:   "9am",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDateTime(tt.day, tt.clock, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDateTime(%q, %q) error = %v, wantErr %t", tt.day, tt.clock, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ResolveDateTime(%q, %q) = %v, want %v", tt.day, tt.clock, got, tt.want)
			}
		})
	}
}
