package vkbase

import (
	vk "github.com/vulkan-go/vulkan"
)

// Depth formats ordered by precision; the first one a device supports with
// optimal tiling wins.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32SfloatS8Uint,
	vk.FormatD32Sfloat,
	vk.FormatD24UnormS8Uint,
	vk.FormatD16UnormS8Uint,
	vk.FormatD16Unorm,
}

func pickDepthFormat(gpu vk.PhysicalDevice) (vk.Format, error) {
	for _, format := range depthFormatCandidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(gpu, format, &props)
		props.Deref()
		if props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			return format, nil
		}
	}
	return vk.FormatUndefined, unsupportedErr("depth stencil attachment format")
}

// NewDefaultRenderPass builds the pass every on-screen example renders with:
// one cleared color attachment presented at the end, one cleared depth
// attachment, a single graphics subpass and by-region dependencies at both
// ends of the pass.
func NewDefaultRenderPass(device *CoreDevice, colorFormat vk.Format) (vk.RenderPass, error) {
	return newRenderPass(device, colorFormat, vk.ImageLayoutPresentSrc)
}

// NewOffscreenRenderPass finalizes the color attachment for sampling rather
// than presentation, for render-to-texture passes.
func NewOffscreenRenderPass(device *CoreDevice, colorFormat vk.Format) (vk.RenderPass, error) {
	return newRenderPass(device, colorFormat, vk.ImageLayoutShaderReadOnlyOptimal)
}

func newRenderPass(device *CoreDevice, colorFormat vk.Format, colorFinal vk.ImageLayout) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{
		{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    colorFinal,
		},
		{
			Format:         device.depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorRefs := []vk.AttachmentReference{
		{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorRefs,
		PDepthStencilAttachment: &depthRef,
	}}

	dependencies := []vk.SubpassDependency{
		{
			SrcSubpass:      vk.MaxUint32,
			DstSubpass:      0,
			SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask:   vk.AccessFlags(vk.AccessMemoryReadBit),
			DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
		},
		{
			SrcSubpass:      0,
			DstSubpass:      vk.MaxUint32,
			SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			SrcAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			DstAccessMask:   vk.AccessFlags(vk.AccessMemoryReadBit),
			DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
		},
	}

	var renderPass vk.RenderPass
	ret := vk.CreateRenderPass(device.handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &renderPass)
	if isError(ret) {
		return vk.NullRenderPass, createErr("render pass", ret)
	}
	return renderPass, nil
}

// NewFramebuffers creates one framebuffer per swapchain image, each pairing
// the image's color view with the shared depth view.
func NewFramebuffers(device *CoreDevice, renderPass vk.RenderPass, swapchain *CoreSwapchain, depthView vk.ImageView) ([]vk.Framebuffer, error) {
	framebuffers := make([]vk.Framebuffer, 0, len(swapchain.Images))
	for _, img := range swapchain.Images {
		views := []vk.ImageView{img.View, depthView}
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(device.handle, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           swapchain.Extent.Width,
			Height:          swapchain.Extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if isError(ret) {
			for _, fb := range framebuffers {
				vk.DestroyFramebuffer(device.handle, fb, nil)
			}
			return nil, createErr("framebuffer", ret)
		}
		framebuffers = append(framebuffers, framebuffer)
	}
	return framebuffers, nil
}

// DestroyFramebuffers releases a framebuffer set.
func DestroyFramebuffers(device *CoreDevice, framebuffers []vk.Framebuffer) {
	for _, fb := range framebuffers {
		vk.DestroyFramebuffer(device.handle, fb, nil)
	}
}
