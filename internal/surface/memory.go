package surface

import (
	"slices"
	"sync"
)

// Memory is a headless Container. It records every element and operation,
// which makes it useful for tests and for running without a terminal.
type Memory struct {
	mu            sync.Mutex
	width         int
	elementHeight int
	anchor        Anchor
	anchorUpdates int
	elements      []*MemoryElement
	created       int
	detached      int
}

// NewMemory returns a container with the given viewport width whose
// elements report elementHeight pixels unless overridden.
func NewMemory(width, elementHeight int) *Memory {
	return &Memory{
		width:         width,
		elementHeight: elementHeight,
	}
}

// Create appends a new element.
func (m *Memory) Create(key string) Element {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &MemoryElement{
		m:      m,
		key:    key,
		height: m.elementHeight,
	}
	m.elements = append(m.elements, e)
	m.created++
	return e
}

// SetAnchor records the container anchor.
func (m *Memory) SetAnchor(a Anchor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchor = a
	m.anchorUpdates++
}

// Anchor returns the last anchor set and how many times it was set.
func (m *Memory) Anchor() (Anchor, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.anchor, m.anchorUpdates
}

// Width returns the viewport width.
func (m *Memory) Width() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width
}

// SetWidth changes the viewport width, as a window resize would.
func (m *Memory) SetWidth(w int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width = w
}

// Elements returns the attached elements in creation order.
func (m *Memory) Elements() []*MemoryElement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.elements)
}

// Find returns the attached element with key, or nil.
func (m *Memory) Find(key string) *MemoryElement {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.elements {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Counts returns how many elements were created and detached in total.
func (m *Memory) Counts() (created, detached int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created, m.detached
}

// MemoryElement is an element of a Memory container.
type MemoryElement struct {
	m        *Memory
	key      string
	classes  []string
	content  Content
	position Position
	height   int
	detached bool
}

func (e *MemoryElement) Key() string { return e.key }

func (e *MemoryElement) SetClasses(classes []string) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.classes = slices.Clone(classes)
}

func (e *MemoryElement) SetContent(c Content) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.content = c
}

func (e *MemoryElement) SetPosition(p Position) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.position = p
}

func (e *MemoryElement) Height() int {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return e.height
}

// SetHeight overrides the rendered height.
func (e *MemoryElement) SetHeight(h int) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.height = h
}

func (e *MemoryElement) Detach() {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.detached {
		return
	}
	e.detached = true
	e.m.detached++
	e.m.elements = slices.DeleteFunc(e.m.elements, func(other *MemoryElement) bool {
		return other == e
	})
}

func (e *MemoryElement) Classes() []string {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return slices.Clone(e.classes)
}

func (e *MemoryElement) HasClass(name string) bool {
	return HasClass(e.Classes(), name)
}

func (e *MemoryElement) Content() Content {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return e.content
}

func (e *MemoryElement) Position() Position {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return e.position
}

func (e *MemoryElement) Detached() bool {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return e.detached
}
