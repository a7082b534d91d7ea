package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"focusblock/internal/directive"
	appLog "focusblock/internal/log"
	"focusblock/internal/model"
)

// RecurrenceError reports a malformed recurrence rule on a template. Unlike
// an absent directive this is a configuration defect, so it is propagated
// instead of silently dropping the recurring task.
type RecurrenceError struct {
	Title string
	Rule  string
	Err   error
}

func (e *RecurrenceError) Error() string {
	return fmt.Sprintf("invalid recurrence rule %q on event %q: %v", e.Rule, e.Title, e.Err)
}

func (e *RecurrenceError) Unwrap() error { return e.Err }

// Expand produces the concrete occurrences of a template within the closed
// interval [template.Start, horizon].
//
// A template without a recurrence rule yields exactly one occurrence matching
// it verbatim. A recurring template yields one occurrence per rule-generated
// start instant, each preserving the template's duration and sharing its
// directive.
func Expand(tmpl model.EventTemplate, horizon time.Time) ([]model.Occurrence, error) {
	dir := extractDirective(tmpl)

	if !tmpl.Recurring() {
		return []model.Occurrence{{
			Title:     tmpl.Title,
			Start:     tmpl.Start,
			End:       tmpl.End,
			Directive: dir,
		}}, nil
	}

	r, err := rrule.StrToRRule(tmpl.RRule)
	if err != nil {
		return nil, &RecurrenceError{Title: tmpl.Title, Rule: tmpl.RRule, Err: err}
	}
	r.DTStart(tmpl.Start)

	duration := tmpl.End.Sub(tmpl.Start)

	starts := r.Between(tmpl.Start, horizon, true)
	out := make([]model.Occurrence, 0, len(starts))
	for _, start := range starts {
		out = append(out, model.Occurrence{
			Title:     tmpl.Title,
			Start:     start,
			End:       start.Add(duration),
			Directive: dir,
		})
	}
	return out, nil
}

// ExpandAll expands every template against the same horizon. Templates are
// expanded independently: a malformed rule on one does not corrupt the
// expansion of the others, but the joined error is still returned so the
// caller can refuse to start on a defective schedule.
func ExpandAll(templates []model.EventTemplate, horizon time.Time) ([]model.Occurrence, error) {
	var (
		out  []model.Occurrence
		errs []error
	)
	for _, tmpl := range templates {
		occs, err := Expand(tmpl, horizon)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, occs...)
	}
	return out, errors.Join(errs...)
}

// WeekHorizon returns the upper bound for recurrence expansion: the end of
// the current calendar week, i.e. the next occurring Sunday at end-of-day.
// Recomputed each run, never persisted.
func WeekHorizon(now time.Time) time.Time {
	days := (7 - int(now.Weekday())) % 7
	return time.Date(now.Year(), now.Month(), now.Day()+days, 23, 59, 59, 0, now.Location())
}

// extractDirective resolves the template's blocking directive, degrading to
// the empty directive when none is present or the block is malformed. The
// two cases are logged differently; neither is fatal.
func extractDirective(tmpl model.EventTemplate) model.Directive {
	dir, err := directive.Extract(tmpl.Description)
	switch {
	case err == nil:
	case errors.Is(err, directive.ErrNoDirective):
		appLog.Debug("event has no blocking directive", "title", tmpl.Title)
	default:
		appLog.Error("event directive is malformed, blocking nothing", err, "title", tmpl.Title)
	}
	return dir
}
