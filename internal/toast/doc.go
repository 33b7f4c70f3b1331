// Package toast manages the live set of toast notifications.
//
// A Registry creates an element for each toast in a surface.Container,
// drives it through the entering, visible and exiting states on a
// scheduler, and keeps the stack positioned with the layout engine.
//
// Toasts may carry an id tagging them as part of one logical operation.
// Showing a toast with an id first removes, without animation, every toast
// already carrying it. ShowLoading and UpdateLoading build the in-place
// loading flow on top of that: a persistent loading toast is later turned
// into a success or error toast that removes itself.
//
// The registry is confined to the scheduler goroutine. Operations that
// share an id must be serialised by the caller.
package toast
