package ics

import (
	"errors"
	"testing"
	"time"

	"focusblock/internal/model"
)

const directiveDesc = "##blocking block_apps: slack; block_websites: youtube.com; ##blocking"

func TestExpandNonRecurring(t *testing.T) {
	t.Parallel()

	tmpl := model.EventTemplate{
		Title:       "Focus",
		Description: directiveDesc,
		Start:       time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC),
	}

	occs, err := Expand(tmpl, time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("Expand() returned %d occurrences, want 1", len(occs))
	}

	occ := occs[0]
	if occ.Title != tmpl.Title || !occ.Start.Equal(tmpl.Start) || !occ.End.Equal(tmpl.End) {
		t.Fatalf("occurrence %+v does not match template verbatim", occ)
	}
	if !occ.Directive.BlocksAnything() {
		t.Fatalf("directive not extracted: %+v", occ.Directive)
	}
}

func TestExpandWeeklyWithinHorizon(t *testing.T) {
	t.Parallel()

	tmpl := model.EventTemplate{
		Title:       "Focus",
		Description: directiveDesc,
		Start:       time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		RRule:       "FREQ=WEEKLY",
	}
	horizon := time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC)

	occs, err := Expand(tmpl, horizon)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("Expand() returned %d occurrences, want 2", len(occs))
	}

	wantStarts := []time.Time{
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	for i, occ := range occs {
		if !occ.Start.Equal(wantStarts[i]) {
			t.Fatalf("occurrence %d start = %v, want %v", i, occ.Start, wantStarts[i])
		}
		if got := occ.End.Sub(occ.Start); got != time.Hour {
			t.Fatalf("occurrence %d duration = %v, want 1h", i, got)
		}
		if !occ.Directive.BlocksAnything() {
			t.Fatalf("occurrence %d lost its directive", i)
		}
	}
}

func TestExpandMalformedRule(t *testing.T) {
	t.Parallel()

	tmpl := model.EventTemplate{
		Title: "Broken",
		Start: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		RRule: "FREQ=SOMETIMES",
	}

	_, err := Expand(tmpl, time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC))
	var rerr *RecurrenceError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expand() error = %v, want *RecurrenceError", err)
	}
	if rerr.Title != "Broken" || rerr.Rule != "FREQ=SOMETIMES" {
		t.Fatalf("unexpected error detail: %+v", rerr)
	}
}

func TestExpandAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	good := model.EventTemplate{
		Title: "Good",
		Start: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
	bad := model.EventTemplate{
		Title: "Bad",
		Start: good.Start,
		End:   good.End,
		RRule: "not-a-rule",
	}

	occs, err := ExpandAll([]model.EventTemplate{bad, good}, time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("ExpandAll() expected an error for the malformed rule")
	}
	var rerr *RecurrenceError
	if !errors.As(err, &rerr) {
		t.Fatalf("ExpandAll() error = %v, want to wrap *RecurrenceError", err)
	}
	if len(occs) != 1 || occs[0].Title != "Good" {
		t.Fatalf("healthy template corrupted by failing one: %+v", occs)
	}
}

func TestWeekHorizon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday rolls to sunday",
			now:  time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "sunday stays on sunday",
			now:  time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "saturday is almost the horizon",
			now:  time.Date(2024, 6, 8, 23, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WeekHorizon(tt.now); !got.Equal(tt.want) {
				t.Fatalf("WeekHorizon(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
