package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/app"
	"github.com/jmylchreest/toastkit/internal/intake"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
	"github.com/jmylchreest/toastkit/internal/toast"
)

func TestPlayDemo(t *testing.T) {
	clock := scheduler.NewManual()
	mem := surface.NewMemory(headlessWidth, 64)
	a := app.New(clock, func() surface.Container { return mem }, nil)

	var out bytes.Buffer
	require.NoError(t, playDemo(context.Background(), a, 0, &out))

	assert.Contains(t, out.String(), `logOutToast: loading "Logging out..."`)
	assert.Contains(t, out.String(), `createAccountToast: error "A user with the same email already exists."`)

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 4)

	assert.Equal(t, "Logged out", snap[0].Heading)
	assert.Equal(t, toast.IconSuccess, snap[0].Icon)
	assert.Equal(t, "Error", snap[1].Heading)
	assert.Equal(t, toast.IconError, snap[1].Icon)
	assert.Equal(t, "Welcome back!", snap[2].Heading)
	assert.Equal(t, "Heads up", snap[3].Heading)
	for _, info := range snap {
		assert.False(t, info.Loading)
		assert.True(t, info.Dismissible)
	}

	// Everything removes itself.
	clock.Advance(time.Minute)
	assert.Empty(t, mem.Elements())
}

func TestBuildRequest(t *testing.T) {
	reset := sendOpts
	t.Cleanup(func() { sendOpts = reset })

	sendOpts.op = "loading"
	sendOpts.id = "upload"
	sendOpts.heading = "Uploading..."
	sendOpts.duration = "2s"

	req, err := buildRequest()
	require.NoError(t, err)
	assert.Equal(t, intake.OpLoading, req.Op)
	assert.Equal(t, "upload", req.ID)
	require.NotNil(t, req.Duration)
	assert.Equal(t, 2*time.Second, req.Duration.Duration())

	sendOpts.id = ""
	_, err = buildRequest()
	assert.Error(t, err)

	sendOpts.duration = "later"
	_, err = buildRequest()
	assert.Error(t, err)
}

func TestBuildRequest_RawJSON(t *testing.T) {
	reset := sendOpts
	t.Cleanup(func() { sendOpts = reset })

	sendOpts.raw = `{"op":"update","id":"upload","outcome":"success"}`
	req, err := buildRequest()
	require.NoError(t, err)
	assert.Equal(t, intake.OpUpdate, req.Op)
	assert.Equal(t, "success", req.Outcome)
}
