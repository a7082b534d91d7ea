package model

import "time"

// EventTemplate is a calendar event as it appears in the feed, before
// recurrence expansion. A template with a recurrence rule expands into many
// occurrences sharing its title and directive.
type EventTemplate struct {
	Title       string
	Description string

	Start time.Time
	End   time.Time

	// RRule is the raw RFC5545 recurrence rule, empty for one-off events.
	RRule string
}

// Recurring reports whether the template carries a recurrence rule.
func (t EventTemplate) Recurring() bool { return t.RRule != "" }

// Directive is the set of targets an occurrence intends to block. Both lists
// are lowercase and trimmed; either may be empty. A directive is produced
// once from the event description and never mutated afterward.
type Directive struct {
	Apps     []string
	Websites []string
}

// BlocksAnything reports whether the directive makes its occurrence eligible
// for activation. Both lists must be non-empty; an occurrence that names only
// apps or only websites never activates.
func (d Directive) BlocksAnything() bool {
	return len(d.Apps) > 0 && len(d.Websites) > 0
}

// Occurrence is one concrete, non-repeating time window derived from a
// template. Immutable once created.
type Occurrence struct {
	Title string

	Start time.Time
	End   time.Time

	Directive Directive
}

// Key identifies an occurrence for equality and de-dup purposes. Two
// expansions of the same template at the same instant are the same
// occurrence.
func (o Occurrence) Key() string {
	return o.Title + "|" + o.Start.Format(time.RFC3339Nano)
}

// ActiveAt reports whether the occurrence's window covers the given instant
// (inclusive on both ends).
func (o Occurrence) ActiveAt(now time.Time) bool {
	return !now.Before(o.Start) && !now.After(o.End)
}
