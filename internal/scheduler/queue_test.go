package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func TestQueue_RunsInDueOrder(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	q := NewQueue(clock.Now)

	var order []string
	q.After(1*time.Second, "b", func() { order = append(order, "b") })
	q.After(500*time.Millisecond, "a", func() { order = append(order, "a") })
	q.After(1*time.Second, "c", func() { order = append(order, "c") })

	assert.Equal(t, 0, q.Tick(clock.Advance(100*time.Millisecond)))
	assert.Equal(t, 1, q.Tick(clock.Advance(400*time.Millisecond)))
	assert.Equal(t, 2, q.Tick(clock.Advance(500*time.Millisecond)))

	assert.Equal(t, []string{"a", "b", "c"}, order, "equal due times keep scheduling order")
	assert.Equal(t, 0, q.Pending())
}

func TestQueue_StepsScheduledDuringTickRunLater(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	q := NewQueue(clock.Now)

	ran := 0
	q.After(0, "outer", func() {
		ran++
		q.After(0, "inner", func() { ran++ })
	})

	assert.Equal(t, 1, q.Tick(clock.now))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, q.Pending())

	assert.Equal(t, 1, q.Tick(clock.now))
	assert.Equal(t, 2, ran)
}

func TestQueue_SubmitRunsOnTick(t *testing.T) {
	q := NewQueue(nil)
	done := false
	require.NoError(t, q.Submit(context.Background(), func() { done = true }))
	assert.False(t, done)
	q.Tick(time.Now())
	assert.True(t, done)
}

func TestQueue_StartStops(t *testing.T) {
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{})
	q.After(0, "fire", func() { close(fired) })

	errCh := make(chan error, 1)
	go func() { errCh <- q.Start(ctx, 5*time.Millisecond) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("step was not run by the loop")
	}

	q.Stop()
	q.Stop()
	require.NoError(t, <-errCh)
}

func TestQueue_StartHonorsContext(t *testing.T) {
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- q.Start(ctx, time.Millisecond) }()
	cancel()
	err := <-errCh
	assert.True(t, errors.Is(err, context.Canceled))
}
