package vkbase

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreDevice bundles the selected physical device, its logical device and
// the queue the frame loop submits to.
type CoreDevice struct {
	gpu      vk.PhysicalDevice
	handle   vk.Device
	props    vk.PhysicalDeviceProperties
	memProps vk.PhysicalDeviceMemoryProperties
	limits   vk.PhysicalDeviceLimits

	queueFamily uint32
	queue       vk.Queue

	depthFormat vk.Format
}

// Handle returns the logical device handle.
func (d *CoreDevice) Handle() vk.Device { return d.handle }

// Gpu returns the physical device handle.
func (d *CoreDevice) Gpu() vk.PhysicalDevice { return d.gpu }

// Queue returns the device queue used for graphics or compute submission.
func (d *CoreDevice) Queue() vk.Queue { return d.queue }

// QueueFamily returns the family index Queue was created from.
func (d *CoreDevice) QueueFamily() uint32 { return d.queueFamily }

// MemoryProperties returns the physical device memory properties.
func (d *CoreDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties { return d.memProps }

// Limits returns the physical device limits, already dereferenced.
func (d *CoreDevice) Limits() vk.PhysicalDeviceLimits { return d.limits }

// DepthFormat returns the depth attachment format selected for this device.
func (d *CoreDevice) DepthFormat() vk.Format { return d.depthFormat }

// WaitIdle blocks until the device finished all outstanding work.
func (d *CoreDevice) WaitIdle() {
	vk.DeviceWaitIdle(d.handle)
}

// Destroy releases the logical device. The physical device handle needs no
// teardown.
func (d *CoreDevice) Destroy() {
	if d.handle != nil {
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
}

// DeviceName returns the driver-reported device name.
func (d *CoreDevice) DeviceName() string {
	return vk.ToString(d.props.DeviceName[:])
}

// MinUniformAlignment returns the device's minimum uniform buffer offset
// alignment. Dynamic uniform strides must be multiples of this.
func (d *CoreDevice) MinUniformAlignment() vk.DeviceSize {
	return d.limits.MinUniformBufferOffsetAlignment
}
