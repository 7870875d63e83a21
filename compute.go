package vkbase

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ComputeContext is a headless Vulkan context: instance, compute-capable
// device and a command pool, no window or swapchain.
type ComputeContext struct {
	Instance  *CoreInstance
	Device    *CoreDevice
	Pool      *CorePool
	Resources *Registry
}

// NewComputeContext brings up a device on the first GPU with a compute
// queue family. The caller is responsible for vk.Init and proc address
// setup having run.
func NewComputeContext(appName string, validation bool) (*ComputeContext, error) {
	instance, err := NewCoreInstance(appName, validation, nil)
	if err != nil {
		return nil, err
	}
	device, err := instance.CreateComputeDevice()
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	pool, err := NewCorePool(device, device.QueueFamily())
	if err != nil {
		device.Destroy()
		instance.Destroy()
		return nil, err
	}
	return &ComputeContext{
		Instance:  instance,
		Device:    device,
		Pool:      pool,
		Resources: NewRegistry(),
	}, nil
}

// Dispatch records one compute dispatch with the given pipeline state and
// waits for it to finish.
func (c *ComputeContext) Dispatch(pipeline vk.Pipeline, layout vk.PipelineLayout, sets []vk.DescriptorSet, x, y, z uint32) error {
	return OneShot(c.Device, c.Pool, func(rec *CmdRecorder) error {
		rec.BindComputePipeline(pipeline).
			BindDescriptorSets(vk.PipelineBindPointCompute, layout, sets, nil).
			Dispatch(x, y, z)
		return nil
	})
}

// Run is a free-form variant of Dispatch for workloads that record more
// than one command, still synchronous.
func (c *ComputeContext) Run(fn func(*CmdRecorder) error) error {
	if fn == nil {
		return fmt.Errorf("%w: nil compute recording", ErrDevice)
	}
	return OneShot(c.Device, c.Pool, fn)
}

// Destroy tears the context down in reverse creation order.
func (c *ComputeContext) Destroy() {
	if c.Device != nil {
		c.Device.WaitIdle()
		c.Resources.ReleaseAll()
		if c.Pool != nil {
			c.Pool.Destroy()
			c.Pool = nil
		}
		c.Device.Destroy()
		c.Device = nil
	}
	if c.Instance != nil {
		c.Instance.Destroy()
		c.Instance = nil
	}
}
