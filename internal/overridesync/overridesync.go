// Package overridesync delivers override state to observers one target group at a time.
package overridesync

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/unitbalance/internal/model"
)

// Member is one overridden attribute of a target.
type Member struct {
	Name    string
	Value   model.Value
	Enabled bool
	Queued  bool
}

// Group is one target with its overridden members.
type Group struct {
	Target  string
	Members []Member
}

// HasEnabled reports whether at least one member is enabled.
func (g Group) HasEnabled() bool {
	for _, m := range g.Members {
		if m.Enabled {
			return true
		}
	}
	return false
}

// OverrideSet is the host's visible override set.
// Swap replaces the visible set and returns the previous one; a nil set means "all groups".
type OverrideSet interface {
	Groups() []Group
	Swap(groups []Group) []Group
}

// Observer is a connected client that receives override state.
type Observer interface {
	ObserverID() int64
}

// Primitive serializes the whole visible set into one message for observer.
type Primitive interface {
	SendAll(ctx context.Context, observer Observer) error
}

// Scheduler defers work onto the host loop.
type Scheduler interface {
	After(d time.Duration, name string, fn func())
}

// Counters receives send outcomes. Implementations must accept a nil receiver.
type Counters interface {
	MessageSent()
	SendFailed()
}

// SendMode selects how Send delivers the set.
type SendMode int

const (
	// SendDirect calls the primitive once with the full set.
	SendDirect SendMode = iota
	// SendChunking calls the primitive once per group so every message stays small.
	SendChunking
)

func (m SendMode) String() string {
	if m == SendChunking {
		return "chunking"
	}
	return "direct"
}

// SendReport summarizes one Send call.
type SendReport struct {
	Observer int64
	Groups   int
	Sent     int
	Failed   int
}

// Syncer sends the host override set to observers.
type Syncer struct {
	set      OverrideSet
	prim     Primitive
	sched    Scheduler
	counters Counters
	log      *slog.Logger
}

// NewSyncer creates a syncer. counters may be nil.
func NewSyncer(set OverrideSet, prim Primitive, sched Scheduler, counters Counters, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{set: set, prim: prim, sched: sched, counters: counters, log: logger}
}

// Send delivers the visible set to observer.
// In chunking mode the full set is restored before Send returns, even when sends fail.
func (s *Syncer) Send(ctx context.Context, observer Observer, mode SendMode) SendReport {
	rep := SendReport{Observer: observer.ObserverID()}
	if mode == SendDirect {
		rep.Groups = len(s.set.Groups())
		s.send(ctx, observer, &rep, "")
		return rep
	}

	var groups []Group
	for _, g := range s.set.Groups() {
		if g.HasEnabled() {
			groups = append(groups, g)
		}
	}
	rep.Groups = len(groups)
	if len(groups) == 0 {
		return rep
	}

	prev := s.set.Swap([]Group{groups[0]})
	defer s.set.Swap(prev)

	for i, g := range groups {
		if i > 0 {
			s.set.Swap([]Group{g})
		}
		s.send(ctx, observer, &rep, g.Target)
	}
	s.log.Debug("chunked sync finished", "observer", rep.Observer, "groups", rep.Groups, "sent", rep.Sent, "failed", rep.Failed)
	return rep
}

func (s *Syncer) send(ctx context.Context, observer Observer, rep *SendReport, target string) {
	if err := s.prim.SendAll(ctx, observer); err != nil {
		rep.Failed++
		if s.counters != nil {
			s.counters.SendFailed()
		}
		s.log.Warn("override send failed", "observer", rep.Observer, "target", target, "err", err)
		return
	}
	rep.Sent++
	if s.counters != nil {
		s.counters.MessageSent()
	}
}

// SyncAll schedules one chunked send per observer, skipping the authoritative one.
// The first send runs after initial, each following one after another spacing.
// The observer list is snapshotted; each step reads the override set when it runs.
func (s *Syncer) SyncAll(ctx context.Context, observers []Observer, authoritative Observer, initial, spacing time.Duration, tag string, done func(SendReport)) int {
	var targets []Observer
	for _, o := range observers {
		if authoritative != nil && o.ObserverID() == authoritative.ObserverID() {
			continue
		}
		targets = append(targets, o)
	}
	for i, o := range targets {
		delay := initial + time.Duration(i)*spacing
		s.sched.After(delay, "sync "+tag, func() {
			rep := s.Send(ctx, o, SendChunking)
			if done != nil {
				done(rep)
			}
		})
	}
	s.log.Debug("sync scheduled", "observers", len(targets), "tag", tag, "initial", initial, "spacing", spacing)
	return len(targets)
}
