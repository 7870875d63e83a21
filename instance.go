package vkbase

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Device extensions every render instance needs. Further extensions come in
// through CreateRenderDevice.
var renderDeviceExtensions = []string{"VK_KHR_swapchain"}

// CoreInstance owns the vk.Instance, the enabled layer set and the optional
// debug report callback. Logical devices are created from it.
type CoreInstance struct {
	handle     vk.Instance
	extensions []string
	layers     []string
	debug      vk.DebugReportCallback
}

// NewCoreInstance creates a Vulkan instance. requiredExtensions is usually
// the set GLFW reports for surface creation; validation layers are enabled
// only when requested and actually present on the platform.
func NewCoreInstance(appName string, validation bool, requiredExtensions []string) (*CoreInstance, error) {
	log := Log("instance")

	actual, err := InstanceExtensions()
	if err != nil {
		return nil, err
	}
	extensions, missing := checkExisting(actual, requiredExtensions)
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d required instance extensions missing", ErrUnsupported, missing)
	}

	var layers []string
	if validation {
		actualLayers, err := ValidationLayers()
		if err != nil {
			return nil, err
		}
		wanted := []string{"VK_LAYER_KHRONOS_validation"}
		layers, missing = checkExisting(actualLayers, wanted)
		if missing > 0 {
			log.Warn().Int("missing", missing).Msg("validation requested but layers unavailable")
		}
		extensions = append(extensions, safeString("VK_EXT_debug_report"))
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(appName),
			PEngineName:        safeString("vkbase"),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &instance)
	if isError(ret) {
		return nil, createErr("instance", ret)
	}
	vk.InitInstance(instance)

	core := &CoreInstance{
		handle:     instance,
		extensions: extensions,
		layers:     layers,
	}

	if validation && len(layers) > 0 {
		ret = vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: debugReport,
		}, nil, &core.debug)
		if isError(ret) {
			log.Warn().Msg("debug report callback unavailable")
		}
	}

	log.Info().Int("extensions", len(extensions)).Int("layers", len(layers)).Msg("instance created")
	return core, nil
}

// Handle returns the raw vk.Instance.
func (i *CoreInstance) Handle() vk.Instance { return i.handle }

// Destroy releases the debug callback and the instance. Devices created from
// the instance must be destroyed first.
func (i *CoreInstance) Destroy() {
	if i.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debug, nil)
		i.debug = vk.NullDebugReportCallback
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
		i.handle = nil
	}
}

// CreateRenderDevice selects the first physical device whose graphics queue
// family can present to the surface, then creates the logical device with
// the swapchain extension plus any extra ones requested.
func (i *CoreInstance) CreateRenderDevice(surface vk.Surface, extraExtensions []string) (*CoreDevice, error) {
	gpu, queues, family, err := i.selectGpu(func(gpu vk.PhysicalDevice, q *CoreQueue) (uint32, bool) {
		family, ok := q.GraphicsFamily()
		if !ok {
			return 0, false
		}
		if !q.SupportsPresent(family, surface) {
			return 0, false
		}
		return family, true
	})
	if err != nil {
		return nil, err
	}
	wanted := append(append([]string{}, renderDeviceExtensions...), extraExtensions...)
	return i.createDevice(gpu, queues, family, wanted)
}

// CreateComputeDevice selects the first device with a compute queue family.
// No surface or swapchain extension is involved; used by headless examples.
func (i *CoreInstance) CreateComputeDevice() (*CoreDevice, error) {
	gpu, queues, family, err := i.selectGpu(func(gpu vk.PhysicalDevice, q *CoreQueue) (uint32, bool) {
		return q.ComputeFamily()
	})
	if err != nil {
		return nil, err
	}
	return i.createDevice(gpu, queues, family, nil)
}

func (i *CoreInstance) selectGpu(pick func(vk.PhysicalDevice, *CoreQueue) (uint32, bool)) (vk.PhysicalDevice, *CoreQueue, uint32, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(i.handle, &count, nil)
	if isError(ret) {
		return nil, nil, 0, queryErr("physical devices", ret)
	}
	if count == 0 {
		return nil, nil, 0, fmt.Errorf("%w: no GPU devices found", ErrUnsupported)
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(i.handle, &count, gpus)
	if isError(ret) {
		return nil, nil, 0, queryErr("physical devices", ret)
	}
	for _, gpu := range gpus {
		queues := NewCoreQueue(gpu)
		if queues == nil {
			continue
		}
		if family, ok := pick(gpu, queues); ok {
			return gpu, queues, family, nil
		}
	}
	return nil, nil, 0, fmt.Errorf("%w: no device with a suitable queue family", ErrUnsupported)
}

func (i *CoreInstance) createDevice(gpu vk.PhysicalDevice, queues *CoreQueue, family uint32, wanted []string) (*CoreDevice, error) {
	log := Log("device")

	actual, err := DeviceExtensions(gpu)
	if err != nil {
		return nil, err
	}
	extensions, missing := checkExisting(actual, wanted)
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d required device extensions missing", ErrUnsupported, missing)
	}

	queueInfos := []vk.DeviceQueueCreateInfo{queues.CreateInfo(family)}

	var device vk.Device
	ret := vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(i.layers)),
		PpEnabledLayerNames:     safeStrings(i.layers),
	}, nil, &device)
	if isError(ret) {
		return nil, createErr("logical device", ret)
	}

	core := &CoreDevice{
		gpu:         gpu,
		handle:      device,
		queueFamily: family,
	}
	vk.GetDeviceQueue(device, family, 0, &core.queue)

	vk.GetPhysicalDeviceProperties(gpu, &core.props)
	core.props.Deref()
	core.props.Limits.Deref()
	core.limits = core.props.Limits
	vk.GetPhysicalDeviceMemoryProperties(gpu, &core.memProps)
	core.memProps.Deref()

	format, err := pickDepthFormat(gpu)
	if err != nil {
		log.Warn().Err(err).Msg("no optimal depth format, falling back to D16")
		format = vk.FormatD16Unorm
	}
	core.depthFormat = format

	log.Info().Str("gpu", core.DeviceName()).Uint32("queue_family", family).Msg("device created")
	return core, nil
}

func debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, layerPrefix string,
	message string, userData unsafe.Pointer) vk.Bool32 {

	validationLog := Log("validation")
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		validationLog.Error().Str("layer", layerPrefix).Msg(message)
	default:
		validationLog.Warn().Str("layer", layerPrefix).Msg(message)
	}
	return vk.Bool32(vk.False)
}
