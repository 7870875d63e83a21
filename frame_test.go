package vkbase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

var (
	vkInitOnce sync.Once
	vkInitErr  error
)

// newTestComputeContext brings up a headless device, skipping on machines
// without a Vulkan driver.
func newTestComputeContext(t *testing.T) *ComputeContext {
	t.Helper()
	vkInitOnce.Do(func() {
		vk.SetDefaultGetInstanceProcAddr()
		vkInitErr = vk.Init()
	})
	if vkInitErr != nil {
		t.Skipf("vulkan unavailable: %v", vkInitErr)
	}
	ctx, err := NewComputeContext("vkbase test", false)
	if err != nil {
		t.Skipf("no compute device: %v", err)
	}
	return ctx
}

func TestFrameRingAbandonedFrameKeepsFenceSignaled(t *testing.T) {
	ctx := newTestComputeContext(t)
	defer ctx.Destroy()

	ring, err := NewFrameRing(ctx.Device, ctx.Pool, 2)
	require.NoError(t, err)
	defer ring.Destroy()

	// A frame bails out between Next and Submit when the acquire times out
	// or reports the swapchain out of date. The slot fence must stay
	// signaled through that path, or the next wait on the same slot would
	// block forever.
	for i := 0; i < 2*ring.Len(); i++ {
		slot, err := ring.Next()
		require.NoError(t, err)
		require.Equal(t, vk.Success, vk.GetFenceStatus(ctx.Device.Handle(), slot.Fence))
	}

	// The same holds when the ring cycles through every slot.
	for i := 0; i < 2*ring.Len(); i++ {
		slot, err := ring.Next()
		require.NoError(t, err)
		require.Equal(t, vk.Success, vk.GetFenceStatus(ctx.Device.Handle(), slot.Fence))
		ring.Advance()
	}
}

func TestFpsCounterEmpty(t *testing.T) {
	f := NewFpsCounter()
	assert.Zero(t, f.Fps())
}

func TestFpsCounterAverages(t *testing.T) {
	f := NewFpsCounter()
	// Feed the window directly to keep the test clock-independent.
	for i := range f.samples {
		f.samples[i] = 10 * time.Millisecond
	}
	f.filled = fpsSampleCount

	assert.InDelta(t, 100.0, float64(f.Fps()), 1.0)
}

func TestFpsCounterPartialWindow(t *testing.T) {
	f := NewFpsCounter()
	f.samples[0] = 20 * time.Millisecond
	f.filled = 1

	assert.InDelta(t, 50.0, float64(f.Fps()), 1.0)
}

func TestFpsCounterTick(t *testing.T) {
	f := NewFpsCounter()
	time.Sleep(2 * time.Millisecond)
	f.Tick()

	assert.Equal(t, 1, f.filled)
	assert.Greater(t, f.Delta(), float32(0))
	assert.Greater(t, f.Fps(), float32(0))
}

func TestFrameBudget(t *testing.T) {
	assert.Zero(t, frameBudget(0))
	assert.Zero(t, frameBudget(-30))
	assert.Equal(t, 10*time.Millisecond, frameBudget(100))
	assert.Equal(t, time.Second/60, frameBudget(60))
}

func TestFpsCounterWindowWraps(t *testing.T) {
	f := NewFpsCounter()
	for i := 0; i < fpsSampleCount*2; i++ {
		f.Tick()
	}
	assert.Equal(t, fpsSampleCount, f.filled)
}
