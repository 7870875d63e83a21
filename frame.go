package vkbase

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// FrameSlot is the per-frame synchronization state: one fence guarding
// command buffer reuse and a semaphore pair for acquire/present ordering.
type FrameSlot struct {
	Cmd            vk.CommandBuffer
	Fence          vk.Fence
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
}

// FrameRing cycles through a fixed number of frame slots so the CPU can
// record a frame while earlier ones are still on the GPU.
type FrameRing struct {
	device *CoreDevice
	pool   *CorePool
	slots  []FrameSlot
	index  int
}

func NewFrameRing(device *CoreDevice, pool *CorePool, framesInFlight int) (*FrameRing, error) {
	if framesInFlight < 1 {
		framesInFlight = 2
	}
	cmds, err := pool.Allocate(framesInFlight)
	if err != nil {
		return nil, err
	}
	ring := &FrameRing{device: device, pool: pool}
	for i := 0; i < framesInFlight; i++ {
		var fence vk.Fence
		ret := vk.CreateFence(device.handle, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &fence)
		if isError(ret) {
			ring.Destroy()
			return nil, createErr("frame fence", ret)
		}
		var acquire, render vk.Semaphore
		ret = vk.CreateSemaphore(device.handle, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &acquire)
		if isError(ret) {
			vk.DestroyFence(device.handle, fence, nil)
			ring.Destroy()
			return nil, createErr("frame semaphore", ret)
		}
		ret = vk.CreateSemaphore(device.handle, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &render)
		if isError(ret) {
			vk.DestroySemaphore(device.handle, acquire, nil)
			vk.DestroyFence(device.handle, fence, nil)
			ring.Destroy()
			return nil, createErr("frame semaphore", ret)
		}
		ring.slots = append(ring.slots, FrameSlot{
			Cmd:            cmds[i],
			Fence:          fence,
			ImageAvailable: acquire,
			RenderFinished: render,
		})
	}
	return ring, nil
}

// Next waits on the current slot's fence and returns the slot. The fence
// stays signaled until Submit: a frame abandoned after Next (failed or
// out-of-date acquire) must leave it waitable for the next pass.
func (r *FrameRing) Next() (*FrameSlot, error) {
	slot := &r.slots[r.index]
	fences := []vk.Fence{slot.Fence}
	ret := vk.WaitForFences(r.device.handle, 1, fences, vk.True, vk.MaxUint64)
	if isError(ret) {
		return nil, deviceErr("wait frame fence", ret)
	}
	return slot, nil
}

// Advance moves to the next slot after a successful submit.
func (r *FrameRing) Advance() {
	r.index = (r.index + 1) % len(r.slots)
}

// Submit queues the slot's command buffer, waiting on image acquisition at
// the color output stage and signaling the render-finished semaphore. The
// slot fence resets only here, once the submit that will re-signal it is
// certain to happen.
func (r *FrameRing) Submit(slot *FrameSlot) error {
	vk.ResetFences(r.device.handle, 1, []vk.Fence{slot.Fence})
	ret := vk.QueueSubmit(r.device.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.Cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderFinished},
	}}, slot.Fence)
	if isError(ret) {
		return deviceErr("queue submit", ret)
	}
	return nil
}

func (r *FrameRing) Len() int {
	return len(r.slots)
}

func (r *FrameRing) Destroy() {
	for _, slot := range r.slots {
		vk.DestroySemaphore(r.device.handle, slot.RenderFinished, nil)
		vk.DestroySemaphore(r.device.handle, slot.ImageAvailable, nil)
		vk.DestroyFence(r.device.handle, slot.Fence, nil)
	}
	r.slots = nil
}

func (r *FrameRing) Release() { r.Destroy() }

// frameBudget converts a preferred frame rate into a per-frame time budget.
// Zero means uncapped.
func frameBudget(preferFPS float32) time.Duration {
	if preferFPS <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(preferFPS))
}

const fpsSampleCount = 5

// FpsCounter keeps a short moving average of frame times.
type FpsCounter struct {
	samples [fpsSampleCount]time.Duration
	index   int
	filled  int
	last    time.Time
}

func NewFpsCounter() *FpsCounter {
	return &FpsCounter{last: time.Now()}
}

// Tick records the time since the previous tick as one frame sample.
func (f *FpsCounter) Tick() {
	now := time.Now()
	f.samples[f.index] = now.Sub(f.last)
	f.last = now
	f.index = (f.index + 1) % fpsSampleCount
	if f.filled < fpsSampleCount {
		f.filled++
	}
}

// Delta returns the most recent frame time in seconds.
func (f *FpsCounter) Delta() float32 {
	idx := (f.index + fpsSampleCount - 1) % fpsSampleCount
	return float32(f.samples[idx].Seconds())
}

// Fps returns the frame rate averaged over the sample window.
func (f *FpsCounter) Fps() float32 {
	if f.filled == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < f.filled; i++ {
		total += f.samples[i]
	}
	avg := total.Seconds() / float64(f.filled)
	if avg <= 0 {
		return 0
	}
	return float32(1.0 / avg)
}
