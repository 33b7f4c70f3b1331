package toast

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/layout"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
)

// EnterDelay is the render tick between appending a toast and making it
// visible, leaving room for an enter animation.
const EnterDelay = 16 * time.Millisecond

// ContainerFactory creates the toast container on first use.
type ContainerFactory func() surface.Container

// Registry owns the live set of toasts.
//
// A Registry is not safe for concurrent use. Every method, and every timer
// it schedules, must run on the scheduler's goroutine. Callers must also
// serialise operations that share an id: between ShowLoading(id) and the
// matching UpdateLoading(id) no other operation on id should be issued.
type Registry struct {
	config       *config.Store
	sched        scheduler.Scheduler
	engine       *layout.Engine
	resize       *layout.Debouncer
	newContainer ContainerFactory
	container    surface.Container
	logger       *slog.Logger

	toasts   []*Toast // Insertion order, oldest first
	byHandle map[Handle]*Toast
	byID     map[string][]*Toast

	onChange func()
}

// NewRegistry creates a registry. The container is not created until the
// first toast is shown.
func NewRegistry(cfg *config.Store, sched scheduler.Scheduler, newContainer ContainerFactory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		config:       cfg,
		sched:        sched,
		engine:       layout.NewEngine(cfg),
		resize:       layout.NewDebouncer(sched, layout.ResizeDebounce),
		newContainer: newContainer,
		logger:       logger,
		byHandle:     make(map[Handle]*Toast),
		byID:         make(map[string][]*Toast),
	}

	cfg.OnInit(func(config.Config) {
		if r.container != nil {
			r.container.SetAnchor(r.engine.Anchor())
			r.reposition()
		}
	})

	return r
}

// SetChangeCallback sets a callback invoked after the toast set or any
// toast's appearance changes.
func (r *Registry) SetChangeCallback(cb func()) {
	r.onChange = cb
}

func (r *Registry) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

func (r *Registry) ensureContainer() surface.Container {
	if r.container == nil {
		r.container = r.newContainer()
		r.container.SetAnchor(r.engine.Anchor())
		r.logger.Debug("toast container created")
	}
	return r.container
}

// Show displays a toast and returns its handle.
func (r *Registry) Show(spec Spec) Handle {
	return r.create(spec, false).handle
}

// ShowLoading replaces every toast tagged id with a persistent loading
// toast. Loading toasts cannot be dismissed by clicking.
func (r *Registry) ShowLoading(id string, spec LoadingSpec) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", &Error{Op: "show loading", Err: ErrInvalidArgument}
	}

	heading := spec.Heading
	if heading == "" {
		heading = DefaultLoadingHeading
	}
	message := spec.Message
	if message == "" {
		message = DefaultLoadingMessage
	}

	r.create(Spec{
		ID:       id,
		Heading:  heading,
		Message:  message,
		Icon:     IconLoading,
		Duration: Lasting(0),
	}, true)

	return id, nil
}

// UpdateLoading turns every live toast tagged id into a result toast and
// schedules its removal. It fails with ErrNotFound, changing nothing, if no
// live toast carries id.
func (r *Registry) UpdateLoading(id string, outcome Outcome, spec ResultSpec) error {
	if outcome != OutcomeSuccess && outcome != OutcomeError {
		return &Error{Op: "update loading", ID: id, Err: ErrInvalidArgument}
	}

	var live []*Toast
	for _, t := range r.byID[id] {
		if t.state < StateExiting {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return &Error{Op: "update loading", ID: id, Err: ErrNotFound}
	}

	cfg := r.config.Get()
	heading, message := outcome.defaults()
	if spec.Heading != "" {
		heading = spec.Heading
	}
	if spec.Message != "" {
		message = spec.Message
	}
	duration := cfg.Toasts.DefaultDuration.Duration()
	if spec.Duration != nil {
		duration = max(*spec.Duration, 0)
	}

	for _, t := range live {
		t.loading = false
		t.icon = outcome.icon()
		t.iconPath = cfg.Icons.Path(t.icon.String())
		t.heading = heading
		t.message = message
		t.duration = duration
		t.element.SetContent(t.content())
		t.element.SetClasses(t.classes())

		if t.removeTimer != nil {
			t.removeTimer.Stop()
			t.removeTimer = nil
		}
		// Still entering: enter() schedules removal once visible.
		if t.state == StateVisible && duration > 0 {
			r.scheduleRemoval(t)
		}
	}

	r.logger.Debug("loading toast updated",
		"id", id,
		"outcome", string(outcome),
		"toasts", len(live),
		"duration", duration,
	)

	r.reposition()
	return nil
}

// Click handles a user click on a toast. Dismissible toasts start their
// exit animation; anything else is ignored. It reports whether removal
// started.
func (r *Registry) Click(h Handle) bool {
	t, ok := r.byHandle[h]
	if !ok || !t.dismissible() {
		return false
	}
	r.removeAnimated(t, nil)
	return true
}

// Dismiss removes a toast with its exit animation, whatever its kind.
// onRemoved, if not nil, runs once the element is detached; it runs
// immediately when the toast is already gone. Dismiss reports whether the
// toast was still live.
func (r *Registry) Dismiss(h Handle, onRemoved func()) bool {
	t, ok := r.byHandle[h]
	if !ok {
		if onRemoved != nil {
			onRemoved()
		}
		return false
	}
	wasLive := t.state < StateExiting
	r.removeAnimated(t, onRemoved)
	return wasLive
}

// Resize schedules a debounced reposition, as after a viewport resize.
func (r *Registry) Resize() {
	r.resize.Trigger(r.reposition)
}

// Clear removes every toast immediately and cancels all timers.
func (r *Registry) Clear() {
	for _, t := range slices.Clone(r.toasts) {
		r.removeImmediate(t)
	}
	r.resize.Cancel()
}

// Len returns the number of toasts still attached, including exiting ones.
func (r *Registry) Len() int {
	return len(r.toasts)
}

// Snapshot returns every attached toast, oldest first.
func (r *Registry) Snapshot() []Info {
	out := make([]Info, len(r.toasts))
	for i, t := range r.toasts {
		out[i] = t.info()
	}
	return out
}

// Get returns the toast for h if it is still attached.
func (r *Registry) Get(h Handle) (Info, bool) {
	t, ok := r.byHandle[h]
	if !ok {
		return Info{}, false
	}
	return t.info(), true
}

// Tagged returns the attached toasts carrying id.
func (r *Registry) Tagged(id string) []Info {
	tagged := r.byID[id]
	out := make([]Info, len(tagged))
	for i, t := range tagged {
		out[i] = t.info()
	}
	return out
}

func (r *Registry) create(spec Spec, loading bool) *Toast {
	cfg := r.config.Get()

	if spec.ID != "" {
		r.supersede(spec.ID)
	}

	duration := cfg.Toasts.DefaultDuration.Duration()
	if spec.Duration != nil {
		duration = max(*spec.Duration, 0)
	}
	if loading {
		duration = 0
	}

	iconPath := spec.IconPath
	if iconPath == "" {
		iconPath = cfg.Icons.Path(spec.Icon.String())
	}

	t := &Toast{
		handle:    newHandle(),
		id:        spec.ID,
		heading:   spec.Heading,
		message:   spec.Message,
		icon:      spec.Icon,
		iconPath:  iconPath,
		duration:  duration,
		state:     StateEntering,
		loading:   loading,
		createdAt: r.sched.Now(),
	}

	t.element = r.ensureContainer().Create(string(t.handle))
	t.element.SetContent(t.content())
	t.element.SetClasses(t.classes())

	r.toasts = append(r.toasts, t)
	r.byHandle[t.handle] = t
	if t.id != "" {
		r.byID[t.id] = append(r.byID[t.id], t)
	}

	r.reposition()
	t.enterTimer = r.sched.AfterFunc(EnterDelay, func() {
		t.enterTimer = nil
		r.enter(t)
	})

	r.logger.Debug("toast shown",
		"handle", t.handle,
		"id", t.id,
		"icon", t.icon.String(),
		"loading", t.loading,
		"duration", t.duration,
		"active", len(r.toasts),
	)

	return t
}

// supersede force-removes every toast tagged id without animation.
func (r *Registry) supersede(id string) {
	existing := slices.Clone(r.byID[id])
	for _, t := range existing {
		r.removeImmediate(t)
	}
	if len(existing) > 0 {
		r.logger.Debug("superseded toasts", "id", id, "count", len(existing))
	}
}

func (r *Registry) enter(t *Toast) {
	if t.state != StateEntering {
		return
	}
	t.state = StateVisible
	t.element.SetClasses(t.classes())

	if t.duration > 0 && t.removeTimer == nil {
		r.scheduleRemoval(t)
	}
	r.changed()
}

func (r *Registry) scheduleRemoval(t *Toast) {
	if t.removeTimer != nil {
		t.removeTimer.Stop()
	}
	t.removeTimer = r.sched.AfterFunc(t.duration, func() {
		t.removeTimer = nil
		r.removeAnimated(t, nil)
	})
}

// removeAnimated plays the exit animation and detaches the element when it
// finishes.
func (r *Registry) removeAnimated(t *Toast, onRemoved func()) {
	switch t.state {
	case StateRemoved:
		if onRemoved != nil {
			onRemoved()
		}
		return
	case StateExiting:
		if onRemoved != nil {
			t.onRemoved = append(t.onRemoved, onRemoved)
		}
		return
	}

	t.stopTimers()
	t.state = StateExiting
	t.element.SetClasses(t.classes())
	if onRemoved != nil {
		t.onRemoved = append(t.onRemoved, onRemoved)
	}
	r.changed()

	t.exitTimer = r.sched.AfterFunc(r.config.Get().Animation.Duration.Duration(), func() {
		t.exitTimer = nil
		r.detach(t)
	})
}

// removeImmediate detaches the element synchronously, cancelling every
// pending timer.
func (r *Registry) removeImmediate(t *Toast) {
	if t.state == StateRemoved {
		return
	}
	t.stopTimers()
	r.detach(t)
}

func (r *Registry) detach(t *Toast) {
	if t.state == StateRemoved {
		return
	}
	t.state = StateRemoved
	t.element.Detach()

	r.toasts = slices.DeleteFunc(r.toasts, func(other *Toast) bool { return other == t })
	delete(r.byHandle, t.handle)
	if t.id != "" {
		tagged := slices.DeleteFunc(r.byID[t.id], func(other *Toast) bool { return other == t })
		if len(tagged) == 0 {
			delete(r.byID, t.id)
		} else {
			r.byID[t.id] = tagged
		}
	}

	r.logger.Debug("toast removed", "handle", t.handle, "id", t.id, "active", len(r.toasts))

	r.reposition()

	callbacks := t.onRemoved
	t.onRemoved = nil
	for _, cb := range callbacks {
		cb()
	}
}

// reposition recomputes every attached toast's position.
func (r *Registry) reposition() {
	if r.container == nil {
		return
	}

	heights := make([]int, len(r.toasts))
	for i, t := range r.toasts {
		heights[i] = t.element.Height()
	}

	positions := r.engine.Place(r.container.Width(), heights)
	for i, t := range r.toasts {
		t.position = positions[i]
		t.element.SetPosition(positions[i])
	}
	r.changed()
}
