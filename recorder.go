package vkbase

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CmdRecorder records graphics and transfer work into one command buffer.
// Recording methods chain; errors surface at Begin/End and submission.
type CmdRecorder struct {
	device vk.Device
	cmd    vk.CommandBuffer
}

func NewCmdRecorder(device *CoreDevice, cmd vk.CommandBuffer) *CmdRecorder {
	return &CmdRecorder{device: device.handle, cmd: cmd}
}

// Cmd returns the command buffer being recorded.
func (r *CmdRecorder) Cmd() vk.CommandBuffer { return r.cmd }

func (r *CmdRecorder) Begin(oneTime bool) error {
	var flags vk.CommandBufferUsageFlags
	if oneTime {
		flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	ret := vk.BeginCommandBuffer(r.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	})
	return NewError(ret)
}

func (r *CmdRecorder) End() error {
	return NewError(vk.EndCommandBuffer(r.cmd))
}

func (r *CmdRecorder) Reset() error {
	ret := vk.ResetCommandBuffer(r.cmd, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
	return NewError(ret)
}

// DefaultClearValues returns the black clear color and the far-plane depth
// clear the examples use.
func DefaultClearValues() []vk.ClearValue {
	return []vk.ClearValue{
		vk.NewClearValue([]float32{0.0, 0.0, 0.0, 1.0}),
		vk.NewClearDepthStencil(1.0, 0.0),
	}
}

func (r *CmdRecorder) BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clears []vk.ClearValue) *CmdRecorder {
	vk.CmdBeginRenderPass(r.cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      vk.Rect2D{Offset: vk.Offset2D{}, Extent: extent},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
	return r
}

func (r *CmdRecorder) EndRenderPass() *CmdRecorder {
	vk.CmdEndRenderPass(r.cmd)
	return r
}

func (r *CmdRecorder) SetViewport(viewport vk.Viewport) *CmdRecorder {
	vk.CmdSetViewport(r.cmd, 0, 1, []vk.Viewport{viewport})
	return r
}

// FullViewport sets a viewport and scissor covering the whole extent.
func (r *CmdRecorder) FullViewport(extent vk.Extent2D) *CmdRecorder {
	r.SetViewport(vk.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	})
	return r.SetScissor(vk.Rect2D{Offset: vk.Offset2D{}, Extent: extent})
}

func (r *CmdRecorder) SetScissor(rect vk.Rect2D) *CmdRecorder {
	vk.CmdSetScissor(r.cmd, 0, 1, []vk.Rect2D{rect})
	return r
}

func (r *CmdRecorder) BindPipeline(pipeline vk.Pipeline) *CmdRecorder {
	vk.CmdBindPipeline(r.cmd, vk.PipelineBindPointGraphics, pipeline)
	return r
}

func (r *CmdRecorder) BindComputePipeline(pipeline vk.Pipeline) *CmdRecorder {
	vk.CmdBindPipeline(r.cmd, vk.PipelineBindPointCompute, pipeline)
	return r
}

// BindDescriptorSets binds sets at the given first slot. dynamicOffsets may
// be nil for layouts without dynamic uniform bindings.
func (r *CmdRecorder) BindDescriptorSets(bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, sets []vk.DescriptorSet, dynamicOffsets []uint32) *CmdRecorder {
	vk.CmdBindDescriptorSets(r.cmd, bindPoint, layout, 0,
		uint32(len(sets)), sets, uint32(len(dynamicOffsets)), dynamicOffsets)
	return r
}

func (r *CmdRecorder) BindVertexBuffer(buffer vk.Buffer) *CmdRecorder {
	vk.CmdBindVertexBuffers(r.cmd, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
	return r
}

func (r *CmdRecorder) BindIndexBuffer(buffer vk.Buffer, indexType vk.IndexType) *CmdRecorder {
	vk.CmdBindIndexBuffer(r.cmd, buffer, 0, indexType)
	return r
}

func (r *CmdRecorder) Draw(vertexCount, instanceCount uint32) *CmdRecorder {
	vk.CmdDraw(r.cmd, vertexCount, instanceCount, 0, 0)
	return r
}

func (r *CmdRecorder) DrawIndexed(indexCount uint32, firstIndex uint32) *CmdRecorder {
	vk.CmdDrawIndexed(r.cmd, indexCount, 1, firstIndex, 0, 0)
	return r
}

// PushConstants uploads a push constant block at the given offset.
func (r *CmdRecorder) PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlagBits, offset uint32, data []byte) *CmdRecorder {
	if len(data) == 0 {
		return r
	}
	vk.CmdPushConstants(r.cmd, layout, vk.ShaderStageFlags(stages),
		offset, uint32(len(data)), unsafe.Pointer(&data[0]))
	return r
}

func (r *CmdRecorder) Dispatch(x, y, z uint32) *CmdRecorder {
	vk.CmdDispatch(r.cmd, x, y, z)
	return r
}

// Transfer API, one method per copy direction.

func (r *CmdRecorder) CopyBuffer(src, dst vk.Buffer, size vk.DeviceSize) *CmdRecorder {
	vk.CmdCopyBuffer(r.cmd, src, dst, 1, []vk.BufferCopy{{Size: size}})
	return r
}

func (r *CmdRecorder) CopyBufferRegions(src, dst vk.Buffer, regions []vk.BufferCopy) *CmdRecorder {
	vk.CmdCopyBuffer(r.cmd, src, dst, uint32(len(regions)), regions)
	return r
}

func (r *CmdRecorder) CopyBufferToImage(src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) *CmdRecorder {
	vk.CmdCopyBufferToImage(r.cmd, src, dst, layout, uint32(len(regions)), regions)
	return r
}

func (r *CmdRecorder) CopyImage(src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy) *CmdRecorder {
	vk.CmdCopyImage(r.cmd, src, srcLayout, dst, dstLayout, uint32(len(regions)), regions)
	return r
}

func (r *CmdRecorder) BlitImage(src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageBlit, filter vk.Filter) *CmdRecorder {
	vk.CmdBlitImage(r.cmd, src, srcLayout, dst, dstLayout, uint32(len(regions)), regions, filter)
	return r
}

// ImageBarrier records a layout transition for the image's full subresource
// range of the given aspect.
func (r *CmdRecorder) ImageBarrier(image vk.Image, aspect vk.ImageAspectFlagBits,
	oldLayout, newLayout vk.ImageLayout,
	srcAccess, dstAccess vk.AccessFlagBits,
	srcStage, dstStage vk.PipelineStageFlagBits) *CmdRecorder {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(srcAccess),
		DstAccessMask:       vk.AccessFlags(dstAccess),
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(r.cmd, vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return r
}

// OneShot allocates a transient command buffer, records fn into it, submits
// it and blocks on a fence until the GPU is done. Used for staging copies
// and layout transitions outside the frame loop.
func OneShot(device *CoreDevice, pool *CorePool, fn func(*CmdRecorder) error) error {
	cmds, err := pool.Allocate(1)
	if err != nil {
		return err
	}
	defer pool.Free(cmds)

	rec := NewCmdRecorder(device, cmds[0])
	if err := rec.Begin(true); err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return err
	}
	if err := rec.End(); err != nil {
		return err
	}

	var fence vk.Fence
	ret := vk.CreateFence(device.handle, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if isError(ret) {
		return createErr("fence", ret)
	}
	defer vk.DestroyFence(device.handle, fence, nil)

	ret = vk.QueueSubmit(device.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}}, fence)
	if isError(ret) {
		return deviceErr("queue submit", ret)
	}

	ret = vk.WaitForFences(device.handle, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
	if isError(ret) {
		return deviceErr("wait for fence", ret)
	}
	return nil
}
