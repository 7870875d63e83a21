package vkbase

import (
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainImage pairs a presentable image with its view. The images belong
// to the swapchain and are destroyed with it; only the views are owned here.
type SwapchainImage struct {
	Image vk.Image
	View  vk.ImageView
}

// CoreSwapchain manages the presentable image chain for one surface.
type CoreSwapchain struct {
	handle vk.Swapchain

	Images []SwapchainImage
	// Format of the presentable images.
	Format vk.Format
	// Extent of the presentable images.
	Extent vk.Extent2D

	colorSpace vk.ColorSpace
	vsync      bool
}

// FramesInFlight returns how many frames the chain can have in flight,
// one per presentable image.
func (s *CoreSwapchain) FramesInFlight() int { return len(s.Images) }

// Handle returns the raw swapchain handle.
func (s *CoreSwapchain) Handle() vk.Swapchain { return s.handle }

// NewCoreSwapchain builds a swapchain against the surface. The extent is the
// requested dimension; the surface capabilities may override it.
func NewCoreSwapchain(device *CoreDevice, surface vk.Surface, extent vk.Extent2D, vsync bool) (*CoreSwapchain, error) {
	core := &CoreSwapchain{vsync: vsync}
	if err := core.build(device, surface, extent, vk.NullSwapchain); err != nil {
		return nil, err
	}
	return core, nil
}

// Rebuild recreates the swapchain for a new surface state, handing the old
// chain to the driver and releasing the old views afterwards. The caller is
// responsible for quiescing the device first.
func (s *CoreSwapchain) Rebuild(device *CoreDevice, surface vk.Surface, extent vk.Extent2D) error {
	old := s.handle
	oldImages := s.Images
	if err := s.build(device, surface, extent, old); err != nil {
		return err
	}
	for _, img := range oldImages {
		vk.DestroyImageView(device.handle, img.View, nil)
	}
	if old != vk.NullSwapchain {
		vk.DestroySwapchain(device.handle, old, nil)
	}
	return nil
}

func (s *CoreSwapchain) build(device *CoreDevice, surface vk.Surface, extent vk.Extent2D, old vk.Swapchain) error {
	format, err := optimalSurfaceFormat(device.gpu, surface)
	if err != nil {
		return err
	}
	presentMode, err := optimalPresentMode(device.gpu, surface, s.vsync)
	if err != nil {
		return err
	}
	caps, err := surfaceCapability(device.gpu, surface, extent)
	if err != nil {
		return err
	}

	var handle vk.Swapchain
	ret := vk.CreateSwapchain(device.handle, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    caps.imageCount,
		ImageFormat:      format.format,
		ImageColorSpace:  format.colorSpace,
		ImageExtent:      caps.extent,
		ImageArrayLayers: 1,
		ImageUsage:       caps.usage,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.transform,
		CompositeAlpha:   caps.compositeAlpha,
		PresentMode:      presentMode,
		// Allows the implementation to discard rendering outside the surface area.
		Clipped:      vk.True,
		OldSwapchain: old,
	}, nil, &handle)
	if isError(ret) {
		return createErr("swapchain", ret)
	}

	images, err := obtainImages(device, handle, format.format)
	if err != nil {
		vk.DestroySwapchain(device.handle, handle, nil)
		return err
	}

	s.handle = handle
	s.Images = images
	s.Format = format.format
	s.colorSpace = format.colorSpace
	s.Extent = caps.extent
	return nil
}

// Acquire retrieves the next presentable image index, signaling the given
// semaphore. Timeout, out-of-date and suboptimal states come back as the
// typed sync errors.
func (s *CoreSwapchain) Acquire(device *CoreDevice, signal vk.Semaphore) (uint32, error) {
	var index uint32
	ret := vk.AcquireNextImage(device.handle, s.handle, vk.MaxUint64, signal, vk.NullFence, &index)
	switch ret {
	case vk.Success:
		return index, nil
	case vk.Timeout, vk.NotReady:
		return 0, ErrSwapchainTimeout
	case vk.Suboptimal:
		return index, ErrSwapchainSuboptimal
	case vk.ErrorOutOfDate:
		return 0, ErrSwapchainOutOfDate
	default:
		return 0, NewError(ret)
	}
}

// Present queues the image for presentation after the wait semaphore fires.
func (s *CoreSwapchain) Present(queue vk.Queue, imageIndex uint32, wait vk.Semaphore) error {
	ret := vk.QueuePresent(queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.handle},
		PImageIndices:      []uint32{imageIndex},
	})
	switch ret {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		return ErrSwapchainSuboptimal
	case vk.ErrorOutOfDate:
		return ErrSwapchainOutOfDate
	default:
		return NewError(ret)
	}
}

// Destroy releases the image views and the swapchain. Outstanding work on
// acquired images must be complete first.
func (s *CoreSwapchain) Destroy(device *CoreDevice) {
	for _, img := range s.Images {
		vk.DestroyImageView(device.handle, img.View, nil)
	}
	s.Images = nil
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(device.handle, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
}

type surfaceFormat struct {
	format     vk.Format
	colorSpace vk.ColorSpace
}

func optimalSurfaceFormat(gpu vk.PhysicalDevice, surface vk.Surface) (surfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if isError(ret) || count == 0 {
		return surfaceFormat{}, queryErr("surface formats", ret)
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	if isError(ret) {
		return surfaceFormat{}, queryErr("surface formats", ret)
	}
	for i := range formats {
		formats[i].Deref()
	}

	// A single Undefined entry means the surface has no preference.
	if count == 1 && formats[0].Format == vk.FormatUndefined {
		return surfaceFormat{format: vk.FormatB8g8r8a8Unorm, colorSpace: formats[0].ColorSpace}, nil
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm {
			return surfaceFormat{format: f.Format, colorSpace: f.ColorSpace}, nil
		}
	}
	return surfaceFormat{format: formats[0].Format, colorSpace: formats[0].ColorSpace}, nil
}

func optimalPresentMode(gpu vk.PhysicalDevice, surface vk.Surface, vsync bool) (vk.PresentMode, error) {
	// FIFO is always available per spec and waits for the vertical blank.
	if vsync {
		return vk.PresentModeFifo, nil
	}

	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if isError(ret) {
		return vk.PresentModeFifo, queryErr("present modes", ret)
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	if isError(ret) {
		return vk.PresentModeFifo, queryErr("present modes", ret)
	}

	// Mailbox is the lowest latency non-tearing mode available.
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return vk.PresentModeMailbox, nil
		}
	}
	for _, mode := range modes {
		if mode == vk.PresentModeImmediate {
			return vk.PresentModeImmediate, nil
		}
	}
	return vk.PresentModeFifo, nil
}

type swapchainCaps struct {
	usage          vk.ImageUsageFlags
	imageCount     uint32
	extent         vk.Extent2D
	transform      vk.SurfaceTransformFlagBits
	compositeAlpha vk.CompositeAlphaFlagBits
}

func surfaceCapability(gpu vk.PhysicalDevice, surface vk.Surface, requested vk.Extent2D) (swapchainCaps, error) {
	var surfaceCaps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &surfaceCaps)
	if isError(ret) {
		return swapchainCaps{}, queryErr("surface capabilities", ret)
	}
	surfaceCaps.Deref()
	surfaceCaps.CurrentExtent.Deref()
	surfaceCaps.MinImageExtent.Deref()
	surfaceCaps.MaxImageExtent.Deref()

	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	if surfaceCaps.SupportedUsageFlags&vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit) != 0 {
		usage |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	if surfaceCaps.SupportedUsageFlags&vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) != 0 {
		usage |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	}

	// When width is the special 0xFFFFFFFF value the surface size is set by
	// the swapchain; clamp the requested size into the supported range.
	var extent vk.Extent2D
	if surfaceCaps.CurrentExtent.Width == vk.MaxUint32 {
		extent = vk.Extent2D{
			Width:  clampU32(requested.Width, surfaceCaps.MinImageExtent.Width, surfaceCaps.MaxImageExtent.Width),
			Height: clampU32(requested.Height, surfaceCaps.MinImageExtent.Height, surfaceCaps.MaxImageExtent.Height),
		}
	} else {
		extent = surfaceCaps.CurrentExtent
	}

	imageCount := surfaceCaps.MinImageCount + 1
	if surfaceCaps.MaxImageCount > 0 && imageCount > surfaceCaps.MaxImageCount {
		imageCount = surfaceCaps.MaxImageCount
	}

	transform := surfaceCaps.CurrentTransform
	if surfaceCaps.SupportedTransforms&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		transform = vk.SurfaceTransformIdentityBit
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, candidate := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if surfaceCaps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(candidate) != 0 {
			compositeAlpha = candidate
			break
		}
	}

	return swapchainCaps{
		usage:          usage,
		imageCount:     imageCount,
		extent:         extent,
		transform:      transform,
		compositeAlpha: compositeAlpha,
	}, nil
}

func obtainImages(device *CoreDevice, swapchain vk.Swapchain, format vk.Format) ([]SwapchainImage, error) {
	var count uint32
	ret := vk.GetSwapchainImages(device.handle, swapchain, &count, nil)
	if isError(ret) {
		return nil, queryErr("swapchain images", ret)
	}
	handles := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(device.handle, swapchain, &count, handles)
	if isError(ret) {
		return nil, queryErr("swapchain images", ret)
	}

	images := make([]SwapchainImage, 0, count)
	for _, handle := range handles {
		view, err := newImageView(device.handle, handle, format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			for _, img := range images {
				vk.DestroyImageView(device.handle, img.View, nil)
			}
			return nil, err
		}
		images = append(images, SwapchainImage{Image: handle, View: view})
	}
	return images, nil
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
