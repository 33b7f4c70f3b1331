package toast

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
)

// IconKind selects the icon shown on a toast.
type IconKind int

const (
	IconNone IconKind = iota
	IconLoading
	IconSuccess
	IconError
)

// IconKindNames maps icon kinds to their names.
var IconKindNames = map[IconKind]string{
	IconNone:    "none",
	IconLoading: "loading",
	IconSuccess: "success",
	IconError:   "error",
}

func (k IconKind) String() string {
	if name, ok := IconKindNames[k]; ok {
		return name
	}
	return "none"
}

// ParseIconKind parses an icon kind name. The empty string is IconNone.
func ParseIconKind(s string) (IconKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return IconNone, nil
	case "loading":
		return IconLoading, nil
	case "success":
		return IconSuccess, nil
	case "error":
		return IconError, nil
	default:
		return IconNone, fmt.Errorf("%w: unknown icon kind %q", ErrInvalidArgument, s)
	}
}

// State is a toast's lifecycle phase. Transitions only move forward.
type State int

const (
	StateEntering State = iota
	StateVisible
	StateExiting
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateExiting:
		return "exiting"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Outcome is the result a loading toast is updated to.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// ParseOutcome parses "success" or "error".
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(strings.ToLower(strings.TrimSpace(s))); o {
	case OutcomeSuccess, OutcomeError:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalidArgument, s)
	}
}

func (o Outcome) icon() IconKind {
	if o == OutcomeError {
		return IconError
	}
	return IconSuccess
}

func (o Outcome) defaults() (heading, message string) {
	if o == OutcomeError {
		return "Error", "Something went wrong."
	}
	return "Success!", "Operation completed successfully."
}

// Default loading toast text.
const (
	DefaultLoadingHeading = "Loading..."
	DefaultLoadingMessage = "Please wait."
)

// Handle identifies one toast for manual dismissal.
type Handle string

func newHandle() Handle {
	return Handle(ulid.Make().String())
}

// Spec describes a toast to show. Zero values are valid.
type Spec struct {
	// ID tags the toast as part of a logical operation. Showing a toast
	// with an ID supersedes every live toast carrying the same ID.
	ID       string
	Heading  string
	Message  string
	Icon     IconKind
	IconPath string // Overrides the configured icon path when set

	// Duration is how long the toast stays visible. Nil uses the configured
	// default; zero keeps it until dismissed or superseded.
	Duration *time.Duration
}

// LoadingSpec describes the text of a loading toast.
type LoadingSpec struct {
	Heading string
	Message string
}

// ResultSpec describes how a loading toast is finished. Empty text falls
// back to the outcome's defaults; nil Duration uses the configured default.
type ResultSpec struct {
	Heading  string
	Message  string
	Duration *time.Duration
}

// Lasting returns d as a Spec or ResultSpec duration. Lasting(0) makes a
// toast persistent.
func Lasting(d time.Duration) *time.Duration {
	return &d
}

// Toast is a live notification owned by a Registry.
type Toast struct {
	handle    Handle
	id        string
	heading   string
	message   string
	icon      IconKind
	iconPath  string
	duration  time.Duration
	state     State
	loading   bool
	createdAt time.Time
	position  surface.Position

	element     surface.Element
	enterTimer  scheduler.Timer
	removeTimer scheduler.Timer
	exitTimer   scheduler.Timer
	onRemoved   []func()
}

// dismissible reports whether a click removes the toast.
func (t *Toast) dismissible() bool {
	return !t.loading && t.state < StateExiting
}

func (t *Toast) classes() []string {
	classes := []string{surface.ClassToast}
	switch t.state {
	case StateEntering:
		classes = append(classes, surface.ClassEntering)
	case StateVisible:
		classes = append(classes, surface.ClassVisible)
	case StateExiting, StateRemoved:
		classes = append(classes, surface.ClassExiting)
	}
	classes = append(classes, surface.ClassIconPrefix+t.icon.String())
	if t.loading {
		classes = append(classes, surface.ClassLoading, surface.ClassIconSpin)
	}
	if t.dismissible() {
		classes = append(classes, surface.ClassDismissible)
	}
	return classes
}

func (t *Toast) content() surface.Content {
	return surface.Content{
		Heading:  t.heading,
		Message:  t.message,
		Kind:     t.icon.String(),
		IconPath: t.iconPath,
	}
}

func (t *Toast) stopTimers() {
	for _, timer := range []*scheduler.Timer{&t.enterTimer, &t.removeTimer, &t.exitTimer} {
		if *timer != nil {
			(*timer).Stop()
			*timer = nil
		}
	}
}

// Info is a read-only view of a toast.
type Info struct {
	Handle      Handle
	ID          string
	Heading     string
	Message     string
	Icon        IconKind
	IconPath    string
	Duration    time.Duration
	State       State
	Loading     bool
	Dismissible bool
	CreatedAt   time.Time
	Position    surface.Position
	Classes     []string
}

func (t *Toast) info() Info {
	return Info{
		Handle:      t.handle,
		ID:          t.id,
		Heading:     t.heading,
		Message:     t.message,
		Icon:        t.icon,
		IconPath:    t.iconPath,
		Duration:    t.duration,
		State:       t.state,
		Loading:     t.loading,
		Dismissible: t.dismissible(),
		CreatedAt:   t.createdAt,
		Position:    t.position,
		Classes:     t.classes(),
	}
}
