package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
	"github.com/jmylchreest/toastkit/internal/toast"
)

func TestApp_LoadingFlow(t *testing.T) {
	clock := scheduler.NewManual()
	mem := surface.NewMemory(1024, 60)
	a := New(clock, func() surface.Container { return mem }, nil)
	ctx := context.Background()

	id, err := a.ShowLoading(ctx, "logOutToast", toast.LoadingSpec{Heading: "Logging out..."})
	require.NoError(t, err)
	assert.Equal(t, "logOutToast", id)

	clock.Advance(toast.EnterDelay)
	require.NoError(t, a.UpdateLoading(ctx, id, toast.OutcomeSuccess, toast.ResultSpec{Message: "Logged out."}))

	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "Success!", snap[0].Heading)
	assert.Equal(t, "Logged out.", snap[0].Message)

	err = a.UpdateLoading(ctx, "unknown", toast.OutcomeError, toast.ResultSpec{})
	assert.True(t, errors.Is(err, toast.ErrNotFound))
}

func TestApp_ConfigureOnce(t *testing.T) {
	clock := scheduler.NewManual()
	a := New(clock, func() surface.Container { return surface.NewMemory(1024, 60) }, nil)
	ctx := context.Background()

	require.NoError(t, a.Configure(ctx, config.Partial{
		Breakpoints: &config.BreakpointPartial{Mobile: config.Ptr(600)},
	}))
	require.NoError(t, a.Configure(ctx, config.Partial{
		Breakpoints: &config.BreakpointPartial{Mobile: config.Ptr(900)},
	}))
	assert.Equal(t, 600, a.Config().Breakpoints.Mobile)
}

func TestApp_ConfigureInvalidIsAnError(t *testing.T) {
	clock := scheduler.NewManual()
	a := New(clock, func() surface.Container { return surface.NewMemory(1024, 60) }, nil)
	ctx := context.Background()

	err := a.Configure(ctx, config.Partial{
		Breakpoints: &config.BreakpointPartial{Mobile: config.Ptr(-1)},
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, config.ErrAlreadyInitialized))

	require.NoError(t, a.Configure(ctx, config.Partial{
		Breakpoints: &config.BreakpointPartial{Mobile: config.Ptr(600)},
	}))
	assert.Equal(t, 600, a.Config().Breakpoints.Mobile)
}

func TestApp_CancelledContext(t *testing.T) {
	clock := scheduler.NewManual()
	a := New(clock, func() surface.Container { return surface.NewMemory(1024, 60) }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Show(ctx, toast.Spec{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApp_DismissIDAndClear(t *testing.T) {
	clock := scheduler.NewManual()
	mem := surface.NewMemory(1024, 60)
	a := New(clock, func() surface.Container { return mem }, nil)
	ctx := context.Background()

	_, err := a.Show(ctx, toast.Spec{ID: "auth"})
	require.NoError(t, err)
	_, err = a.Show(ctx, toast.Spec{})
	require.NoError(t, err)

	n, err := a.DismissID(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, a.Clear(ctx))
	assert.Empty(t, mem.Elements())
}

func TestApp_WithLoop(t *testing.T) {
	loop := scheduler.NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()
	defer loop.Stop()

	mem := surface.NewMemory(1024, 60)
	a := New(loop, func() surface.Container { return mem }, nil)

	require.NoError(t, a.Configure(ctx, config.Partial{
		Animation: &config.AnimationPartial{Duration: config.Ptr(config.Duration(5 * time.Millisecond))},
	}))

	h, err := a.Show(ctx, toast.Spec{Heading: "Hello", Duration: toast.Lasting(0)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := a.Snapshot(ctx)
		return err == nil && len(snap) == 1 && snap[0].State == toast.StateVisible
	}, time.Second, 5*time.Millisecond)

	dismissCtx, dismissCancel := context.WithTimeout(ctx, time.Second)
	defer dismissCancel()
	require.NoError(t, a.Dismiss(dismissCtx, h))

	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
	assert.Empty(t, mem.Elements())

	// Already gone.
	require.NoError(t, a.Dismiss(dismissCtx, h))
}
