package vkbase

import (
	vk "github.com/vulkan-go/vulkan"
)

// CorePool wraps a command pool whose buffers can be reset individually.
type CorePool struct {
	device vk.Device
	pool   vk.CommandPool
}

func NewCorePool(device *CoreDevice, family uint32) (*CorePool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device.handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, createErr("command pool", ret)
	}
	return &CorePool{device: device.handle, pool: pool}, nil
}

// Handle returns the raw command pool.
func (c *CorePool) Handle() vk.CommandPool { return c.pool }

// Allocate returns count primary command buffers from the pool.
func (c *CorePool) Allocate(count int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if isError(ret) {
		return nil, createErr("command buffers", ret)
	}
	return buffers, nil
}

// Free returns command buffers to the pool.
func (c *CorePool) Free(buffers []vk.CommandBuffer) {
	if len(buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(buffers)), buffers)
	}
}

func (c *CorePool) Destroy() {
	if c.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(c.device, c.pool, nil)
		c.pool = vk.NullCommandPool
	}
}
