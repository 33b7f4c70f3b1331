// Package scheduler provides the timer service that drives toast state
// transitions.
//
// Loop runs every task and timer callback on one goroutine, so code driven by
// it needs no locking. Manual advances a virtual clock and is used by tests
// that need deterministic control over time.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrStopped is returned when work is submitted to a loop that has stopped.
var ErrStopped = errors.New("scheduler: loop stopped")

// ErrRunning is returned when Run is called on a loop that is already running.
var ErrRunning = errors.New("scheduler: loop already running")

// Timer is a pending callback created by AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Executor runs fn in the scheduler's serialised context and waits for it.
type Executor interface {
	Call(ctx context.Context, fn func() error) error
}

// Runtime is a Scheduler that can also execute work on behalf of other
// goroutines.
type Runtime interface {
	Scheduler
	Executor
}
