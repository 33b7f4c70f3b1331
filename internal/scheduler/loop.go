package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const taskBuffer = 256

// Loop is a single-goroutine event loop. Tasks posted to it and timer
// callbacks scheduled through it run one at a time, in submission order.
type Loop struct {
	logger *slog.Logger

	tasks  chan func()
	stopCh chan struct{}
	doneCh chan struct{}

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		tasks:  make(chan func(), taskBuffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled or Stop is called.
// A loop can only be run once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrRunning
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.doneCh)

	l.logger.Debug("scheduler loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("scheduler loop stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-l.stopCh:
			l.logger.Debug("scheduler loop stopped")
			return nil
		case task := <-l.tasks:
			l.runTask(task)
		}
	}
}

// Stop ends Run and waits for it to return if it was started.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })

	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if running {
		<-l.doneCh
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("scheduler task panicked", "panic", r)
		}
	}()
	task()
}

// Post queues fn to run on the loop. It returns false if the loop has
// stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.stopCh:
		return false
	case <-l.doneCh:
		return false
	}
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("scheduler: task panicked: %v", r)
			}
		}()
		errCh <- fn()
	}

	select {
	case <-l.stopCh:
		return ErrStopped
	default:
	}

	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return ErrStopped
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.doneCh:
		select {
		case err := <-errCh:
			return err
		default:
			return ErrStopped
		}
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
	})
	return lt
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

// Stop is safe to call from the loop or any other goroutine. When called on
// the loop it is guaranteed that fn will not run afterwards, even if the
// underlying timer already fired and its callback is queued.
func (t *loopTimer) Stop() bool {
	wasStopped := t.stopped.Swap(true)
	t.timer.Stop()
	return !wasStopped && !t.fired.Load()
}
