package vkbase

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

func newImageView(device vk.Device, img vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, createErr("image view", ret)
	}
	return view, nil
}

func allocateImage(device *CoreDevice, extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlagBits) (vk.Image, vk.DeviceMemory, error) {
	var img vk.Image
	ret := vk.CreateImage(device.handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if isError(ret) {
		return vk.NullImage, vk.NullDeviceMemory, createErr("image", ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.handle, img, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(device.memProps, memReqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		vk.DestroyImage(device.handle, img, nil)
		return vk.NullImage, vk.NullDeviceMemory, unsupportedErr("device local memory for image")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyImage(device.handle, img, nil)
		return vk.NullImage, vk.NullDeviceMemory, createErr("image memory", ret)
	}
	vk.BindImageMemory(device.handle, img, memory, 0)
	return img, memory, nil
}

// DepthImage is the shared depth attachment backing a framebuffer set.
type DepthImage struct {
	device vk.Device
	Image  vk.Image
	View   vk.ImageView
	Memory vk.DeviceMemory
	Format vk.Format
}

func NewDepthImage(device *CoreDevice, extent vk.Extent2D) (*DepthImage, error) {
	img, memory, err := allocateImage(device, extent, device.depthFormat, vk.ImageUsageDepthStencilAttachmentBit)
	if err != nil {
		return nil, err
	}
	view, err := newImageView(device.handle, img, device.depthFormat, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}
	return &DepthImage{
		device: device.handle,
		Image:  img,
		View:   view,
		Memory: memory,
		Format: device.depthFormat,
	}, nil
}

func (d *DepthImage) Destroy() {
	if d.device == nil {
		return
	}
	vk.DestroyImageView(d.device, d.View, nil)
	vk.FreeMemory(d.device, d.Memory, nil)
	vk.DestroyImage(d.device, d.Image, nil)
	d.device = nil
}

func (d *DepthImage) Release() { d.Destroy() }

// Texture2D is a sampled color image uploaded from a decoded host image.
type Texture2D struct {
	device  vk.Device
	Image   vk.Image
	View    vk.ImageView
	Memory  vk.DeviceMemory
	Sampler vk.Sampler
	Width   uint32
	Height  uint32
}

// LoadTexture2D decodes a PNG or JPEG file, stages the RGBA pixels into a
// device-local image and transitions it for shader sampling.
func LoadTexture2D(device *CoreDevice, pool *CorePool, path string) (*Texture2D, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return NewTexture2D(device, pool, decoded)
}

// NewTexture2D uploads an already decoded image.
func NewTexture2D(device *CoreDevice, pool *CorePool, src image.Image) (*Texture2D, error) {
	bounds := src.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)

	extent := vk.Extent2D{Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy())}

	img, memory, err := allocateImage(device, extent, vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	staging, err := NewHostBuffer(device, rgba.Pix, 0, vk.BufferUsageTransferSrcBit)
	if err != nil {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}
	defer staging.Destroy()

	err = OneShot(device, pool, func(rec *CmdRecorder) error {
		rec.ImageBarrier(img, vk.ImageAspectColorBit,
			vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
			0, vk.AccessTransferWriteBit,
			vk.PipelineStageTopOfPipeBit, vk.PipelineStageTransferBit)
		rec.CopyBufferToImage(staging.Handle, img, vk.ImageLayoutTransferDstOptimal, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		}})
		rec.ImageBarrier(img, vk.ImageAspectColorBit,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			vk.AccessTransferWriteBit, vk.AccessShaderReadBit,
			vk.PipelineStageTransferBit, vk.PipelineStageFragmentShaderBit)
		return nil
	})
	if err != nil {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}

	view, err := newImageView(device.handle, img, vk.FormatR8g8b8a8Unorm, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}

	sampler, err := newLinearSampler(device.handle)
	if err != nil {
		vk.DestroyImageView(device.handle, view, nil)
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}

	return &Texture2D{
		device:  device.handle,
		Image:   img,
		View:    view,
		Memory:  memory,
		Sampler: sampler,
		Width:   extent.Width,
		Height:  extent.Height,
	}, nil
}

// Descriptor returns the combined image sampler descriptor info.
func (t *Texture2D) Descriptor() vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     t.Sampler,
		ImageView:   t.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

func (t *Texture2D) Destroy() {
	if t.device == nil {
		return
	}
	vk.DestroySampler(t.device, t.Sampler, nil)
	vk.DestroyImageView(t.device, t.View, nil)
	vk.FreeMemory(t.device, t.Memory, nil)
	vk.DestroyImage(t.device, t.Image, nil)
	t.device = nil
}

func (t *Texture2D) Release() { t.Destroy() }

func newLinearSampler(device vk.Device) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterLinear,
		MinFilter:    vk.FilterLinear,
		MipmapMode:   vk.SamplerMipmapModeLinear,
		AddressModeU: vk.SamplerAddressModeRepeat,
		AddressModeV: vk.SamplerAddressModeRepeat,
		AddressModeW: vk.SamplerAddressModeRepeat,
		MaxLod:       1.0,
		BorderColor:  vk.BorderColorFloatOpaqueWhite,
	}, nil, &sampler)
	if isError(ret) {
		return vk.NullSampler, createErr("sampler", ret)
	}
	return sampler, nil
}

// RenderTarget is an offscreen color attachment that can also be sampled.
type RenderTarget struct {
	device  vk.Device
	Image   vk.Image
	View    vk.ImageView
	Memory  vk.DeviceMemory
	Sampler vk.Sampler
	Format  vk.Format
	Extent  vk.Extent2D
}

func NewRenderTarget(device *CoreDevice, extent vk.Extent2D, format vk.Format) (*RenderTarget, error) {
	img, memory, err := allocateImage(device, extent, format,
		vk.ImageUsageColorAttachmentBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}
	view, err := newImageView(device.handle, img, format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}
	sampler, err := newLinearSampler(device.handle)
	if err != nil {
		vk.DestroyImageView(device.handle, view, nil)
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, img, nil)
		return nil, err
	}
	return &RenderTarget{
		device:  device.handle,
		Image:   img,
		View:    view,
		Memory:  memory,
		Sampler: sampler,
		Format:  format,
		Extent:  extent,
	}, nil
}

// Descriptor returns the sampled-image descriptor info for the target.
func (rt *RenderTarget) Descriptor() vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     rt.Sampler,
		ImageView:   rt.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

func (rt *RenderTarget) Destroy() {
	if rt.device == nil {
		return
	}
	vk.DestroySampler(rt.device, rt.Sampler, nil)
	vk.DestroyImageView(rt.device, rt.View, nil)
	vk.FreeMemory(rt.device, rt.Memory, nil)
	vk.DestroyImage(rt.device, rt.Image, nil)
	rt.device = nil
}

func (rt *RenderTarget) Release() { rt.Destroy() }
