package vkbase

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CoreBuffer is a vk.Buffer bound to its own device memory allocation.
// Examples allocate one per resource; batching allocations is out of scope
// for this library.
type CoreBuffer struct {
	device vk.Device
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// Destroy frees the memory and the buffer object.
func (b *CoreBuffer) Destroy() {
	if b.device == nil {
		return
	}
	vk.FreeMemory(b.device, b.Memory, nil)
	vk.DestroyBuffer(b.device, b.Handle, nil)
	b.device = nil
}

// Release implements Releasable for registry tracking.
func (b *CoreBuffer) Release() { b.Destroy() }

// Descriptor returns the buffer's full-range descriptor info for set writes.
func (b *CoreBuffer) Descriptor() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.Handle,
		Offset: 0,
		Range:  b.Size,
	}
}

// Upload maps host-visible memory at the given offset and copies data in.
// Only valid for buffers allocated with host-visible, host-coherent memory.
func (b *CoreBuffer) Upload(offset vk.DeviceSize, data []byte) error {
	var pData unsafe.Pointer
	ret := vk.MapMemory(b.device, b.Memory, offset, vk.DeviceSize(len(data)), 0, &pData)
	if isError(ret) {
		return deviceErr("map memory", ret)
	}
	n := vk.Memcopy(pData, data)
	vk.UnmapMemory(b.device, b.Memory)
	if n != len(data) {
		return fmt.Errorf("%w: short memory copy, %d != %d", ErrDevice, n, len(data))
	}
	return nil
}

// Download maps host-visible memory at the given offset and copies data
// out. The inverse of Upload, used by compute read-back.
func (b *CoreBuffer) Download(offset vk.DeviceSize, data []byte) error {
	var pData unsafe.Pointer
	ret := vk.MapMemory(b.device, b.Memory, offset, vk.DeviceSize(len(data)), 0, &pData)
	if isError(ret) {
		return deviceErr("map memory", ret)
	}
	src := unsafe.Slice((*byte)(pData), len(data))
	copy(data, src)
	vk.UnmapMemory(b.device, b.Memory)
	return nil
}

// findMemoryType walks the device memory types for one that is allowed by
// typeBits and satisfies the required property flags.
func findMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		memProps.MemoryTypes[i].Deref()
		if memProps.MemoryTypes[i].PropertyFlags&vk.MemoryPropertyFlags(required) == vk.MemoryPropertyFlags(required) {
			return i, true
		}
	}
	return 0, false
}

func allocateBuffer(device *CoreDevice, size vk.DeviceSize, usage vk.BufferUsageFlagBits, memFlags vk.MemoryPropertyFlagBits) (*CoreBuffer, error) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(device.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if isError(ret) {
		return nil, createErr("buffer", ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device.handle, buffer, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(device.memProps, memReqs.MemoryTypeBits, memFlags)
	if !ok {
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, unsupportedErr("memory type for buffer")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, createErr("buffer memory", ret)
	}

	ret = vk.BindBufferMemory(device.handle, buffer, memory, 0)
	if isError(ret) {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, deviceErr("bind buffer memory", ret)
	}

	return &CoreBuffer{
		device: device.handle,
		Handle: buffer,
		Memory: memory,
		Size:   size,
	}, nil
}

// NewHostBuffer creates a host-visible, host-coherent buffer and copies data
// into it when data is non-nil.
func NewHostBuffer(device *CoreDevice, data []byte, size vk.DeviceSize, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	if data != nil {
		size = vk.DeviceSize(len(data))
	}
	buffer, err := allocateBuffer(device, size, usage,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := buffer.Upload(0, data); err != nil {
			buffer.Destroy()
			return nil, err
		}
	}
	return buffer, nil
}

// NewUniformBuffer creates a host-visible uniform buffer of the given size.
func NewUniformBuffer(device *CoreDevice, size vk.DeviceSize) (*CoreBuffer, error) {
	return NewHostBuffer(device, nil, size, vk.BufferUsageUniformBufferBit)
}

// NewDeviceLocalBuffer uploads data into device-local memory through a
// transient staging buffer: map-and-copy into a TransferSrc staging buffer,
// record a copy to the TransferDst target, submit and wait on a fence, then
// free the staging resources.
func NewDeviceLocalBuffer(device *CoreDevice, pool *CorePool, data []byte, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	staging, err := NewHostBuffer(device, data, 0, vk.BufferUsageTransferSrcBit)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	target, err := allocateBuffer(device, vk.DeviceSize(len(data)),
		usage|vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	err = OneShot(device, pool, func(rec *CmdRecorder) error {
		rec.CopyBuffer(staging.Handle, target.Handle, vk.DeviceSize(len(data)))
		return nil
	})
	if err != nil {
		target.Destroy()
		return nil, err
	}
	return target, nil
}

// AlignUniformOffset rounds size up to the next multiple of the device's
// minimum uniform offset alignment. Used for dynamic uniform buffer strides.
func AlignUniformOffset(size, minAlign vk.DeviceSize) vk.DeviceSize {
	if minAlign == 0 {
		return size
	}
	return (size + minAlign - 1) &^ (minAlign - 1)
}
