// Package scheduler runs delayed steps on the host loop.
package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type step struct {
	name string
	due  time.Time
	seq  uint64
	fn   func()
}

// Queue holds delayed steps and runs them when due. Steps run on the goroutine
// that calls Tick or Start, one at a time, in due order.
type Queue struct {
	clock  func() time.Time
	inbox  chan func()
	stopCh chan struct{}
	once   sync.Once

	mu    sync.Mutex
	steps []*step
	seq   uint64
}

// NewQueue creates a queue. A nil clock uses time.Now.
func NewQueue(clock func() time.Time) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{
		clock:  clock,
		inbox:  make(chan func(), 64),
		stopCh: make(chan struct{}),
	}
}

// After schedules fn to run d from now.
func (q *Queue) After(d time.Duration, name string, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	q.steps = append(q.steps, &step{name: name, due: q.clock().Add(d), seq: q.seq, fn: fn})
	slog.Debug("step scheduled", "name", name, "delay", d)
}

// Submit hands fn to the loop from another goroutine.
func (q *Queue) Submit(ctx context.Context, fn func()) error {
	select {
	case q.inbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of scheduled steps.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.steps)
}

// Tick runs submitted work and every step due at now. Steps scheduled while
// ticking run on a later tick. Returns the number of steps run.
func (q *Queue) Tick(now time.Time) int {
	q.drainInbox()

	q.mu.Lock()
	var due, rest []*step
	for _, s := range q.steps {
		if !s.due.After(now) {
			due = append(due, s)
		} else {
			rest = append(rest, s)
		}
	}
	q.steps = rest
	q.mu.Unlock()

	slices.SortFunc(due, func(a, b *step) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return int(a.seq) - int(b.seq)
	})
	for _, s := range due {
		s.fn()
	}
	return len(due)
}

func (q *Queue) drainInbox() {
	for {
		select {
		case fn := <-q.inbox:
			fn()
		default:
			return
		}
	}
}

// Start drives the queue every interval (blocks until context is canceled or Stop is called)
func (q *Queue) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping")
			return ctx.Err()

		case <-q.stopCh:
			slog.Info("scheduler stopped")
			return nil

		case fn := <-q.inbox:
			fn()

		case <-ticker.C:
			q.Tick(q.clock())
		}
	}
}

// Stop stops the loop started by Start.
func (q *Queue) Stop() {
	q.once.Do(func() { close(q.stopCh) })
}
