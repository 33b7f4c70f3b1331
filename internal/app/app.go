// Package app wires the configuration store, the scheduler and the toast
// registry into one instance that other goroutines can drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/toast"
)

// App is the composition root. Every method hands its work to the runtime
// and waits for it, so App is safe for concurrent use.
type App struct {
	config   *config.Store
	rt       scheduler.Runtime
	registry *toast.Registry
	logger   *slog.Logger
}

// New creates an App. Toasts are rendered into the container returned by
// newContainer, which is called once, on the first toast.
func New(rt scheduler.Runtime, newContainer toast.ContainerFactory, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	store := config.NewStore(logger)
	return &App{
		config:   store,
		rt:       rt,
		registry: toast.NewRegistry(store, rt, newContainer, logger),
		logger:   logger,
	}
}

// SetChangeCallback sets a callback run on the runtime goroutine whenever
// the toast set changes. It must be called before the runtime starts.
func (a *App) SetChangeCallback(cb func()) {
	a.registry.SetChangeCallback(cb)
}

// Config returns the current configuration.
func (a *App) Config() config.Config {
	return a.config.Get()
}

// Configure applies p once. Later calls change nothing: the store logs a
// warning and Configure returns nil. An invalid p is rejected without
// consuming the one-time initialization.
func (a *App) Configure(ctx context.Context, p config.Partial) error {
	return a.rt.Call(ctx, func() error {
		if err := a.config.Init(p); err != nil && !errors.Is(err, config.ErrAlreadyInitialized) {
			return err
		}
		return nil
	})
}

// Show displays a toast.
func (a *App) Show(ctx context.Context, spec toast.Spec) (toast.Handle, error) {
	var h toast.Handle
	err := a.rt.Call(ctx, func() error {
		h = a.registry.Show(spec)
		return nil
	})
	return h, err
}

// ShowLoading displays a persistent loading toast tagged id.
func (a *App) ShowLoading(ctx context.Context, id string, spec toast.LoadingSpec) (string, error) {
	var out string
	err := a.rt.Call(ctx, func() error {
		var err error
		out, err = a.registry.ShowLoading(id, spec)
		return err
	})
	return out, err
}

// UpdateLoading finishes the loading toast tagged id.
func (a *App) UpdateLoading(ctx context.Context, id string, outcome toast.Outcome, spec toast.ResultSpec) error {
	return a.rt.Call(ctx, func() error {
		return a.registry.UpdateLoading(id, outcome, spec)
	})
}

// Click dismisses a toast the way a user click would. Loading toasts ignore
// it.
func (a *App) Click(ctx context.Context, h toast.Handle) (bool, error) {
	var ok bool
	err := a.rt.Call(ctx, func() error {
		ok = a.registry.Click(h)
		return nil
	})
	return ok, err
}

// Dismiss removes a toast and waits until its exit animation has finished.
// Dismissing a toast that is already gone returns nil.
func (a *App) Dismiss(ctx context.Context, h toast.Handle) error {
	done := make(chan struct{})
	err := a.rt.Call(ctx, func() error {
		a.registry.Dismiss(h, func() { close(done) })
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for toast %s: %w", h, ctx.Err())
	}
}

// DismissID removes every toast tagged id.
func (a *App) DismissID(ctx context.Context, id string) (int, error) {
	var n int
	err := a.rt.Call(ctx, func() error {
		for _, info := range a.registry.Tagged(id) {
			if a.registry.Dismiss(info.Handle, nil) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Resize schedules a debounced reposition after the viewport changed size.
func (a *App) Resize(ctx context.Context) error {
	return a.rt.Call(ctx, func() error {
		a.registry.Resize()
		return nil
	})
}

// Snapshot returns the attached toasts, oldest first.
func (a *App) Snapshot(ctx context.Context) ([]toast.Info, error) {
	var out []toast.Info
	err := a.rt.Call(ctx, func() error {
		out = a.registry.Snapshot()
		return nil
	})
	return out, err
}

// Clear removes every toast without animation.
func (a *App) Clear(ctx context.Context) error {
	return a.rt.Call(ctx, func() error {
		a.registry.Clear()
		return nil
	})
}

// Registry returns the registry. It may only be used from the runtime
// goroutine, for example inside a change callback.
func (a *App) Registry() *toast.Registry {
	return a.registry
}
