package vkbase

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreQueue holds the queue family layout of one physical device.
type CoreQueue struct {
	gpu      vk.PhysicalDevice
	families []vk.QueueFamilyProperties
}

// NewCoreQueue enumerates the queue families of a physical device. Returns
// nil when the device exposes no queue families at all.
func NewCoreQueue(gpu vk.PhysicalDevice) *CoreQueue {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return nil
	}
	q := &CoreQueue{
		gpu:      gpu,
		families: make([]vk.QueueFamilyProperties, count),
	}
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, q.families)
	return q
}

// FamilyWith returns the first queue family index matching all the given
// flag bits.
func (q *CoreQueue) FamilyWith(flags vk.QueueFlagBits) (uint32, bool) {
	for index := range q.families {
		family := q.families[index]
		family.Deref()
		if family.QueueFlags&vk.QueueFlags(flags) == vk.QueueFlags(flags) {
			return uint32(index), true
		}
	}
	return 0, false
}

// GraphicsFamily returns the first graphics-capable queue family.
func (q *CoreQueue) GraphicsFamily() (uint32, bool) {
	return q.FamilyWith(vk.QueueGraphicsBit)
}

// ComputeFamily returns the first compute-capable queue family.
func (q *CoreQueue) ComputeFamily() (uint32, bool) {
	return q.FamilyWith(vk.QueueComputeBit)
}

// SupportsPresent reports whether the family can present to the surface.
// The render path requires the graphics family to be presentable, matching
// the single-queue submission model of the frame loop.
func (q *CoreQueue) SupportsPresent(family uint32, surface vk.Surface) bool {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(q.gpu, family, surface, &supported)
	return ret == vk.Success && supported == vk.True
}

// CreateInfo builds the single-queue create info for one family.
func (q *CoreQueue) CreateInfo(family uint32) vk.DeviceQueueCreateInfo {
	return vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
}
