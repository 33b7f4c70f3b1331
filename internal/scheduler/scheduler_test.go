package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_RunsInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	m.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)

	m.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_SameDeadlineIsFIFO(t *testing.T) {
	m := NewManual()
	var order []int

	for i := range 5 {
		m.AfterFunc(0, func() { order = append(order, i) })
	}
	m.Flush()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestManual_StopPreventsCallback(t *testing.T) {
	m := NewManual()
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing to cancel")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_NestedTimersInsideWindow(t *testing.T) {
	m := NewManual()
	var at []time.Duration

	m.AfterFunc(10*time.Millisecond, func() {
		at = append(at, m.Elapsed())
		m.AfterFunc(10*time.Millisecond, func() {
			at = append(at, m.Elapsed())
		})
	})

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, at)
	assert.Equal(t, 100*time.Millisecond, m.Elapsed())
}

func TestManual_CallHonoursContext(t *testing.T) {
	m := NewManual()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Call(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	sentinel := errors.New("boom")
	assert.ErrorIs(t, m.Call(context.Background(), func() error { return sentinel }), sentinel)
}

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := NewLoop(nil)
	go func() { _ = l.Run(context.Background()) }()
	t.Cleanup(l.Stop)
	return l
}

func TestLoop_CallRunsOnLoop(t *testing.T) {
	l := startLoop(t)

	var counter int
	for range 100 {
		err := l.Call(context.Background(), func() error {
			counter++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 100, counter)
}

func TestLoop_CallRecoversPanic(t *testing.T) {
	l := startLoop(t)

	err := l.Call(context.Background(), func() error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// Loop is still alive.
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))
}

func TestLoop_AfterFuncFires(t *testing.T) {
	l := startLoop(t)

	var fired atomic.Bool
	l.AfterFunc(5*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestLoop_StoppedTimerNeverFires(t *testing.T) {
	l := startLoop(t)

	var fired atomic.Bool
	var timer Timer
	require.NoError(t, l.Call(context.Background(), func() error {
		timer = l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
		return nil
	}))
	require.NoError(t, l.Call(context.Background(), func() error {
		assert.True(t, timer.Stop())
		return nil
	}))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestLoop_RunTwice(t *testing.T) {
	l := startLoop(t)
	require.Eventually(t, func() bool {
		return l.Call(context.Background(), func() error { return nil }) == nil
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}

func TestLoop_CallAfterStop(t *testing.T) {
	l := NewLoop(nil)
	go func() { _ = l.Run(context.Background()) }()
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	l.Stop()

	assert.ErrorIs(t, l.Call(context.Background(), func() error { return nil }), ErrStopped)
	assert.False(t, l.Post(func() {}))
}
