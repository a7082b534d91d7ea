package registry

import (
	"testing"
	"time"

	"focusblock/internal/model"
)

var blocking = model.Directive{
	Apps:     []string{"slack"},
	Websites: []string{"youtube.com"},
}

func occ(title string, start, end time.Time, d model.Directive) model.Occurrence {
	return model.Occurrence{Title: title, Start: start, End: end, Directive: d}
}

func TestFilterToday(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	inDay := occ("in day",
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC), blocking)
	startsToday := occ("straddles midnight forward",
		time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 4, 1, 0, 0, 0, time.UTC), blocking)
	endsToday := occ("straddles midnight backward",
		time.Date(2024, 6, 2, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 1, 0, 0, 0, time.UTC), blocking)
	otherDay := occ("tomorrow",
		time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC), blocking)

	got := FilterToday([]model.Occurrence{inDay, startsToday, endsToday, otherDay}, ref)
	if len(got) != 3 {
		t.Fatalf("FilterToday kept %d occurrences, want 3: %+v", len(got), got)
	}
	for _, o := range got {
		if o.Title == "tomorrow" {
			t.Fatal("occurrence on another day survived the filter")
		}
	}
}

func TestFindActiveFirstMatchWins(t *testing.T) {
	t.Parallel()

	a := occ("A",
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC), blocking)
	b := occ("B",
		time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC), blocking)

	r := New([]model.Occurrence{a, b})

	got, ok := r.FindActive(time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("FindActive found nothing in an overlapping window")
	}
	if got.Title != "A" {
		t.Fatalf("FindActive = %q, want first-registered A", got.Title)
	}
}

func TestFindActiveEligibility(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		directive model.Directive
		wantFound bool
	}{
		{name: "both lists", directive: blocking, wantFound: true},
		{name: "websites only", directive: model.Directive{Websites: []string{"x.com"}}, wantFound: false},
		{name: "apps only", directive: model.Directive{Apps: []string{"slack"}}, wantFound: false},
		{name: "empty directive", directive: model.Directive{}, wantFound: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := New([]model.Occurrence{occ("T", start, end, tt.directive)})
			if _, ok := r.FindActive(now); ok != tt.wantFound {
				t.Fatalf("FindActive found=%v, want %v", ok, tt.wantFound)
			}
		})
	}
}

func TestFindActiveSkipsIneligibleOverlap(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)

	webOnly := occ("web only", start, end, model.Directive{Websites: []string{"x.com"}})
	full := occ("full", start, end, blocking)

	r := New([]model.Occurrence{webOnly, full})
	got, ok := r.FindActive(time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	if !ok || got.Title != "full" {
		t.Fatalf("FindActive = (%+v, %v), want the eligible occurrence", got, ok)
	}
}

func TestFindActiveWindowBoundsInclusive(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)
	r := New([]model.Occurrence{occ("T", start, end, blocking)})

	if _, ok := r.FindActive(start); !ok {
		t.Fatal("start instant should be active (closed interval)")
	}
	if _, ok := r.FindActive(end); !ok {
		t.Fatal("end instant should be active (closed interval)")
	}
	if _, ok := r.FindActive(end.Add(time.Second)); ok {
		t.Fatal("instant past end should not be active")
	}
	if _, ok := r.FindActive(start.Add(-time.Second)); ok {
		t.Fatal("instant before start should not be active")
	}
}
