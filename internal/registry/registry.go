// Package registry holds the day's concrete occurrences and answers which
// one, if any, is active at a given instant. A registry is built once per
// scheduler session and never mutated while the polling loop runs.
package registry

import (
	"time"

	"focusblock/internal/model"
)

type Registry struct {
	occurrences []model.Occurrence
}

// New builds a registry over the given occurrences. Iteration order is
// preserved (effectively calendar-feed order).
func New(occurrences []model.Occurrence) *Registry {
	return &Registry{occurrences: occurrences}
}

// FilterToday keeps an occurrence iff its start date or its end date equals
// ref's calendar date. This is a coarse bound on the day's working set, not
// a strict containment test: an occurrence straddling midnight stays in.
func FilterToday(occurrences []model.Occurrence, ref time.Time) []model.Occurrence {
	out := make([]model.Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if sameDate(o.Start, ref) || sameDate(o.End, ref) {
			out = append(out, o)
		}
	}
	return out
}

// FindActive returns the first occurrence whose window covers now and whose
// directive blocks anything. At most one occurrence is returned even when
// windows overlap; the tie-break is registration order, nothing smarter.
func (r *Registry) FindActive(now time.Time) (model.Occurrence, bool) {
	for _, o := range r.occurrences {
		if o.ActiveAt(now) && o.Directive.BlocksAnything() {
			return o, true
		}
	}
	return model.Occurrence{}, false
}

// All returns the registry's occurrences in registration order.
func (r *Registry) All() []model.Occurrence {
	return r.occurrences
}

func (r *Registry) Len() int { return len(r.occurrences) }

func sameDate(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
