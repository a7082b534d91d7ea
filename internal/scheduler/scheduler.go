// Package scheduler runs the polling state machine that drives block and
// unblock commands off the day's task registry.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"focusblock/internal/blocker"
	appLog "focusblock/internal/log"
	"focusblock/internal/model"
	"focusblock/internal/registry"
)

// DefaultTick is the polling interval between state evaluations.
const DefaultTick = 5 * time.Second

// Config tunes a scheduler. Zero values pick defaults.
type Config struct {
	// Tick is the polling interval.
	Tick time.Duration

	// Now supplies the current instant; tests inject a fake clock.
	Now func() time.Time
}

// Scheduler tracks the single currently-active occurrence and diffs it
// against the registry once per tick. It owns its `current` state
// exclusively; the registry and blocker are read/called but never mutated.
type Scheduler struct {
	reg  *registry.Registry
	blk  blocker.Blocker
	tick time.Duration
	now  func() time.Time

	current *model.Occurrence
}

func New(reg *registry.Registry, blk blocker.Blocker, cfg Config) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		reg:  reg,
		blk:  blk,
		tick: cfg.Tick,
		now:  cfg.Now,
	}
}

// Run polls until ctx is canceled. Cancellation is observed between ticks,
// never mid-action, so stop latency is bounded by the tick interval.
//
// Whatever way the loop exits — cancellation or a fault during a tick —
// every occurrence the registry has ever known gets its websites unblocked
// exactly once before Run returns. No restriction outlives the loop.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: fault during tick: %v", r)
		}
		s.unblockAll()
	}()

	appLog.Info("scheduler started", "tick", s.tick, "tasks", s.reg.Len())

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		s.step(s.now())

		select {
		case <-ctx.Done():
			appLog.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// step performs one state-machine transition for the instant now.
func (s *Scheduler) step(now time.Time) {
	active, ok := s.reg.FindActive(now)

	switch {
	case ok && (s.current == nil || active.Key() != s.current.Key()):
		// IDLE -> ACTIVE (or a different occurrence took over).
		appLog.Info("blocking for task", "title", active.Title, "until", active.End)
		s.blk.BlockApps(active.Directive.Apps)
		s.blk.BlockWebsites(active.Directive.Websites)
		cur := active
		s.current = &cur

	case s.current != nil && !s.current.ActiveAt(now):
		// ACTIVE -> IDLE: the window has ended.
		appLog.Info("unblocking after task", "title", s.current.Title)
		s.blk.UnblockWebsites(s.current.Directive.Websites)
		s.current = nil

	case s.current != nil:
		// Steady state: re-assert app blocking, the user may have
		// relaunched something since the last tick. Host entries persist
		// on their own.
		s.blk.BlockApps(s.current.Directive.Apps)
	}
}

// unblockAll sweeps every occurrence known to the registry, including ones
// that never activated, unblocking each distinct occurrence's website list
// exactly once.
func (s *Scheduler) unblockAll() {
	seen := make(map[string]struct{}, s.reg.Len())
	for _, o := range s.reg.All() {
		if _, dup := seen[o.Key()]; dup {
			continue
		}
		seen[o.Key()] = struct{}{}
		s.blk.UnblockWebsites(o.Directive.Websites)
	}
	s.current = nil
	appLog.Info("all website blocks released", "tasks", len(seen))
}
