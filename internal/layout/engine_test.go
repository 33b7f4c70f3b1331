package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/scheduler"
	"github.com/jmylchreest/toastkit/internal/surface"
)

func TestOffsets(t *testing.T) {
	tests := []struct {
		name    string
		heights []int
		gap     int
		want    []int
	}{
		{"empty", nil, 4, []int{}},
		{"single", []int{60}, 4, []int{0}},
		// Oldest first: the newest (last) sits at the anchor.
		{"three equal", []int{60, 60, 60}, 4, []int{128, 64, 0}},
		{"mixed heights", []int{30, 50, 70}, 10, []int{140, 80, 0}},
		{"no gap", []int{10, 20}, 0, []int{20, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Offsets(tt.heights, tt.gap))
		})
	}
}

func TestOffsets_SumOfNewer(t *testing.T) {
	heights := []int{12, 48, 33, 90, 7}
	gap := 6
	offsets := Offsets(heights, gap)

	// Index i counted from the most recent toast.
	n := len(heights)
	for i := range n {
		want := 0
		for j := range i {
			want += heights[n-1-j] + gap
		}
		assert.Equal(t, want, offsets[n-1-i], "toast %d from newest", i)
	}
}

func TestIsMobile(t *testing.T) {
	assert.True(t, IsMobile(500, 768))
	assert.False(t, IsMobile(768, 768))
	assert.False(t, IsMobile(1200, 768))
	assert.False(t, IsMobile(0, 768))
}

func TestEngine_Place(t *testing.T) {
	store := config.NewStore(nil)
	require.NoError(t, store.Init(config.Partial{
		Toasts:    &config.ToastsPartial{Gap: config.Ptr(4)},
		Container: &config.ContainerPartial{Top: config.Ptr(10), Right: config.Ptr(15)},
	}))
	e := NewEngine(store)

	positions := e.Place(1024, []int{60, 60, 60})
	assert.Equal(t, []surface.Position{
		{Top: 138, Right: 15},
		{Top: 74, Right: 15},
		{Top: 10, Right: 15},
	}, positions)
	assert.Equal(t, surface.Anchor{Top: 10, Right: 15}, e.Anchor())

	mobile := e.Place(400, []int{60})
	assert.True(t, mobile[0].Centered)
}

func TestDebouncer(t *testing.T) {
	m := scheduler.NewManual()
	d := NewDebouncer(m, ResizeDebounce)
	calls := 0

	for range 5 {
		d.Trigger(func() { calls++ })
		m.Advance(50 * time.Millisecond)
	}
	assert.Zero(t, calls, "continuous triggers keep postponing")
	assert.True(t, d.Pending())

	m.Advance(ResizeDebounce)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	d.Trigger(func() { calls++ })
	d.Cancel()
	m.Advance(time.Second)
	assert.Equal(t, 1, calls)
}
