package vkbase

import (
	"errors"
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// Error categories. Callers match with errors.Is; the wrapped message names
// the object or feature involved.
var (
	// ErrCreate covers failed creation of a Vulkan object.
	ErrCreate = errors.New("vulkan object creation failed")
	// ErrQuery covers failed property queries against the instance or a device.
	ErrQuery = errors.New("vulkan property query failed")
	// ErrUnsupported marks a feature the selected device does not provide.
	ErrUnsupported = errors.New("feature not supported by device")
	// ErrDevice covers invalid device operations such as failed memory maps.
	ErrDevice = errors.New("invalid device operation")
)

// Swapchain synchronization results that are not plain failures. The frame
// loop reacts to these by rebuilding instead of aborting.
var (
	ErrSwapchainTimeout    = errors.New("no swapchain image became available within the time allowed")
	ErrSwapchainSuboptimal = errors.New("swapchain no longer matches the surface properties exactly")
	ErrSwapchainOutOfDate  = errors.New("surface has changed and is not compatible with the swapchain")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a non-success vk.Result into an error annotated with the
// caller's position. Returns nil on vk.Success.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	if pc, file, line, ok := runtime.Caller(1); ok {
		fn := runtime.FuncForPC(pc)
		return fmt.Errorf("vulkan error: %s (%d) at %s %s:%d",
			vk.Error(ret).Error(), ret, fn.Name(), file, line)
	}
	return fmt.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret)
}

func createErr(target string, ret vk.Result) error {
	return fmt.Errorf("%w: %s: %s", ErrCreate, target, vk.Error(ret).Error())
}

func queryErr(target string, ret vk.Result) error {
	return fmt.Errorf("%w: %s: %s", ErrQuery, target, vk.Error(ret).Error())
}

func unsupportedErr(feature string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, feature)
}

func deviceErr(op string, ret vk.Result) error {
	return fmt.Errorf("%w: %s: %s", ErrDevice, op, vk.Error(ret).Error())
}

// Fatal logs the error with the package logger and exits. Only the example
// binaries' top level should reach for this; library code returns errors.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	logger.Fatal().Err(err).Msg("fatal")
}
