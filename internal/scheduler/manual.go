package scheduler

import (
	"context"
	"sync"
	"time"
)

// Manual is a Runtime driven by an explicit virtual clock. Callbacks only run
// inside Advance, on the caller's goroutine, ordered by deadline and then by
// scheduling order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManual returns a manual scheduler whose clock starts at the Unix epoch.
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0).UTC()}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Elapsed returns the virtual time passed since the scheduler was created.
func (m *Manual) Elapsed() time.Duration {
	return m.Now().Sub(time.Unix(0, 0).UTC())
}

// AfterFunc schedules fn at now+d. Negative delays are treated as zero.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{
		m:   m,
		at:  m.now.Add(d),
		seq: m.seq,
		fn:  fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, running every callback that becomes
// due. Callbacks scheduled by other callbacks run too if they fall inside the
// window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Flush runs every callback that is already due without moving the clock.
func (m *Manual) Flush() {
	m.Advance(0)
}

// popDue removes and returns the earliest due timer, moving the clock to its
// deadline. Returns nil when nothing is due by target.
func (m *Manual) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if idx == -1 || t.at.Before(m.timers[idx].at) ||
			(t.at.Equal(m.timers[idx].at) && t.seq < m.timers[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}

	t := m.timers[idx]
	m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
	t.fired = true
	if t.at.After(m.now) {
		m.now = t.at
	}
	return t
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Call runs fn immediately on the caller's goroutine.
func (m *Manual) Call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	for i, other := range t.m.timers {
		if other == t {
			t.m.timers = append(t.m.timers[:i], t.m.timers[i+1:]...)
			break
		}
	}
	return true
}
