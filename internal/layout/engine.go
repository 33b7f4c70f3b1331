// Package layout computes stacked toast positions.
package layout

import (
	"time"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
)

// ResizeDebounce is how long the viewport must stay the same size before a
// resize triggers a reposition.
const ResizeDebounce = 150 * time.Millisecond

// Offsets returns the stacking offset of each element. heights is given in
// insertion order (oldest first) and the result is aligned with it. The
// most recent element sits at the anchor; every older element is pushed
// along by the height of each newer one plus gap.
func Offsets(heights []int, gap int) []int {
	offsets := make([]int, len(heights))
	acc := 0
	for i := len(heights) - 1; i >= 0; i-- {
		offsets[i] = acc
		acc += heights[i] + gap
	}
	return offsets
}

// IsMobile reports whether a viewport of the given width is below the
// mobile breakpoint. An unknown (zero) width is never mobile.
func IsMobile(width, breakpoint int) bool {
	return width > 0 && width < breakpoint
}

// Engine turns element heights into absolute positions using the current
// configuration.
type Engine struct {
	config *config.Store
}

// NewEngine creates a new layout engine.
func NewEngine(cfg *config.Store) *Engine {
	return &Engine{config: cfg}
}

// Anchor returns the container anchor from the configuration.
func (e *Engine) Anchor() surface.Anchor {
	c := e.config.Get()
	return surface.Anchor{Top: c.Container.Top, Right: c.Container.Right}
}

// Place returns a position for each height, in the same order.
func (e *Engine) Place(viewportWidth int, heights []int) []surface.Position {
	c := e.config.Get()
	offsets := Offsets(heights, c.Toasts.Gap)
	centered := IsMobile(viewportWidth, c.Breakpoints.Mobile)

	positions := make([]surface.Position, len(heights))
	for i, off := range offsets {
		positions[i] = surface.Position{
			Top:      c.Container.Top + off,
			Right:    c.Container.Right,
			Centered: centered,
		}
	}
	return positions
}

// Debouncer delays a call until triggers stop arriving for a fixed period.
// It must be used from the scheduler's goroutine.
type Debouncer struct {
	sched scheduler.Scheduler
	delay time.Duration
	timer scheduler.Timer
}

// NewDebouncer creates a debouncer that fires delay after the last trigger.
func NewDebouncer(sched scheduler.Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger schedules fn, replacing any call still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.Cancel()
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.timer = nil
		fn()
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}
