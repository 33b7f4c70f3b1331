// Package surface defines the container that toasts are rendered into.
//
// A Container owns the on-screen elements. The toast registry creates one
// element per toast, drives its classes, content and position, and detaches
// it when the toast is removed. Hosts (the terminal UI, the headless Memory
// container) decide how that is drawn.
//
// # Class names
//
// Every element carries ClassToast plus exactly one lifecycle class:
//
//	toast-entering   appended, enter animation pending
//	toast-visible    on screen
//	toast-exiting    exit animation running
//
// and optionally:
//
//	toast-loading      in-flight operation, not click-dismissible
//	toast-dismissible  a click removes the toast
//	toast-icon-spin    the icon is animated
//	toast-icon-<kind>  icon kind: toast-icon-none, toast-icon-loading,
//	                   toast-icon-success, toast-icon-error
//
// These names are stable; host stylesheets and renderers may key on them.
package surface

// Stable class names applied to toast elements.
const (
	ClassToast       = "toast"
	ClassEntering    = "toast-entering"
	ClassVisible     = "toast-visible"
	ClassExiting     = "toast-exiting"
	ClassLoading     = "toast-loading"
	ClassDismissible = "toast-dismissible"
	ClassIconSpin    = "toast-icon-spin"
	ClassIconPrefix  = "toast-icon-"
)

// Anchor is the container's offset from the top-right corner of the viewport.
type Anchor struct {
	Top   int
	Right int
}

// Position is where an element is drawn. Top and Right are absolute offsets
// from the viewport's top-right corner. When Centered is set Right is
// ignored and the element is centred horizontally.
type Position struct {
	Top      int
	Right    int
	Centered bool
}

// Content is what an element displays.
type Content struct {
	Heading  string
	Message  string
	Kind     string // none, loading, success, error
	IconPath string
}

// Element is one rendered toast.
type Element interface {
	// Key is the registry handle the element was created for.
	Key() string
	SetClasses(classes []string)
	SetContent(c Content)
	SetPosition(p Position)
	// Height is the element's rendered height in pixels.
	Height() int
	// Detach removes the element from the container. Detaching twice is a
	// no-op.
	Detach()
}

// Container is the single persistent parent of all toast elements.
type Container interface {
	Create(key string) Element
	SetAnchor(a Anchor)
	// Width is the viewport width in pixels.
	Width() int
}

// HasClass reports whether classes contains name.
func HasClass(classes []string, name string) bool {
	for _, c := range classes {
		if c == name {
			return true
		}
	}
	return false
}
