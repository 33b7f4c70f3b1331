package tui

import (
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastkit/internal/surface"
)

// Terminal cells are mapped to the pixel sizes the layout works in.
const (
	CellWidth  = 8
	CellHeight = 16
)

const (
	toastWidth    = 40
	minToastWidth = 16
)

// Container is a surface.Container drawn by the terminal UI. Elements are
// mutated on the scheduler goroutine and read by the renderer, so every
// access is locked.
type Container struct {
	mu       sync.Mutex
	cols     int
	rows     int
	anchor   surface.Anchor
	elements []*element

	changes chan struct{}
}

// NewContainer creates a container for a terminal of the given size.
func NewContainer(cols, rows int) *Container {
	return &Container{
		cols:    cols,
		rows:    rows,
		changes: make(chan struct{}, 1),
	}
}

// Create appends an element.
func (c *Container) Create(key string) surface.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &element{c: c, key: key}
	c.elements = append(c.elements, e)
	return e
}

func (c *Container) SetAnchor(a surface.Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor = a
}

// Width returns the terminal width in layout pixels.
func (c *Container) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols * CellWidth
}

// SetSize records a new terminal size.
func (c *Container) SetSize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols = cols
	c.rows = rows
}

// Size returns the terminal size in cells.
func (c *Container) Size() (cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

// Notify signals the renderer that something changed. It never blocks;
// pending signals are coalesced.
func (c *Container) Notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Changes delivers a value after one or more Notify calls.
func (c *Container) Changes() <-chan struct{} {
	return c.changes
}

// view is a copy of an element taken for rendering.
type view struct {
	key      string
	classes  []string
	content  surface.Content
	position surface.Position
}

func (v view) has(class string) bool {
	return surface.HasClass(v.classes, class)
}

// snapshot copies the attached elements in creation order.
func (c *Container) snapshot() []view {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]view, len(c.elements))
	for i, e := range c.elements {
		out[i] = view{
			key:      e.key,
			classes:  slices.Clone(e.classes),
			content:  e.content,
			position: e.position,
		}
	}
	return out
}

// rect is an element's placement in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// place converts a layout position into a cell rectangle.
func place(p surface.Position, cols, boxW, boxH int) rect {
	r := rect{y: p.Top / CellHeight, w: boxW, h: boxH}
	if p.Centered {
		r.x = max((cols-boxW)/2, 0)
	} else {
		r.x = max(cols-boxW-p.Right/CellWidth, 0)
	}
	return r
}

// boxWidth is the rendered toast width for a terminal cols wide.
func boxWidth(cols int) int {
	if cols <= 0 {
		return toastWidth
	}
	return max(min(toastWidth, cols-4), minToastWidth)
}

// hit returns the key of the topmost element at cell (x, y).
func (c *Container) hit(x, y int) (string, bool) {
	views := c.snapshot()
	cols, _ := c.Size()
	w := boxWidth(cols)

	// Newest elements are drawn last, so search them first.
	for i := len(views) - 1; i >= 0; i-- {
		v := views[i]
		h := lipgloss.Height(renderBox(v, w, iconGlyph(v, "")))
		if place(v.position, cols, w, h).contains(x, y) {
			return v.key, true
		}
	}
	return "", false
}

type element struct {
	c        *Container
	key      string
	classes  []string
	content  surface.Content
	position surface.Position
	detached bool
}

func (e *element) Key() string { return e.key }

func (e *element) SetClasses(classes []string) {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	e.classes = slices.Clone(classes)
}

func (e *element) SetContent(content surface.Content) {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	e.content = content
}

func (e *element) SetPosition(p surface.Position) {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	e.position = p
}

// Height is the rendered box height converted to layout pixels.
func (e *element) Height() int {
	e.c.mu.Lock()
	v := view{key: e.key, classes: slices.Clone(e.classes), content: e.content}
	w := boxWidth(e.c.cols)
	e.c.mu.Unlock()

	return lipgloss.Height(renderBox(v, w, iconGlyph(v, ""))) * CellHeight
}

func (e *element) Detach() {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	if e.detached {
		return
	}
	e.detached = true
	e.c.elements = slices.DeleteFunc(e.c.elements, func(other *element) bool { return other == e })
}
