package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmylchreest/toastkit/internal/app"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
	"github.com/jmylchreest/toastkit/internal/toast"
	"github.com/jmylchreest/toastkit/internal/tui"
)

// headlessWidth is the viewport width, in pixels, assumed without a terminal.
const headlessWidth = 1280

// instance is a running App with its scheduler loop.
type instance struct {
	app  *app.App
	loop *scheduler.Loop

	// Exactly one of these is set.
	term   *tui.Container
	memory *surface.Memory
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// startInstance starts the scheduler loop and applies the config file.
func startInstance(ctx context.Context, headless bool) (*instance, error) {
	inst := &instance{loop: scheduler.NewLoop(logger)}

	var factory toast.ContainerFactory
	if headless {
		inst.memory = surface.NewMemory(headlessWidth, 4*tui.CellHeight)
		factory = func() surface.Container { return inst.memory }
	} else {
		inst.term = tui.NewContainer(0, 0)
		factory = func() surface.Container { return inst.term }
	}

	inst.app = app.New(inst.loop, factory, logger)
	if inst.term != nil {
		inst.app.SetChangeCallback(inst.term.Notify)
	}

	go func() {
		if err := inst.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler loop failed", "error", err)
		}
	}()

	if !filePartial.IsZero() {
		if err := inst.app.Configure(ctx, filePartial); err != nil {
			inst.stop()
			return nil, fmt.Errorf("failed to apply config: %w", err)
		}
	}

	logger.Debug("instance started", "headless", headless)
	return inst, nil
}

// runUI runs the terminal UI until it exits.
func (inst *instance) runUI(ctx context.Context) error {
	if inst.term == nil {
		return errors.New("instance is headless")
	}
	return tui.Run(ctx, inst.app, inst.term)
}

// waitIdle blocks until no toasts remain or ctx is done.
func (inst *instance) waitIdle(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap, err := inst.app.Snapshot(ctx)
		if err != nil {
			return err
		}
		if len(snap) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (inst *instance) stop() {
	inst.loop.Stop()
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
