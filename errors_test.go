package vkbase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewErrorNilOnSuccess(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))
}

func TestNewErrorAnnotatesCaller(t *testing.T) {
	err := NewError(vk.ErrorDeviceLost)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "errors_test.go")
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, errors.Is(createErr("swapchain", vk.ErrorOutOfDeviceMemory), ErrCreate))
	assert.True(t, errors.Is(queryErr("surface formats", vk.ErrorInitializationFailed), ErrQuery))
	assert.True(t, errors.Is(unsupportedErr("geometry shader"), ErrUnsupported))
	assert.True(t, errors.Is(deviceErr("map memory", vk.ErrorMemoryMapFailed), ErrDevice))

	// Categories stay distinct for errors.Is matching.
	assert.False(t, errors.Is(createErr("x", vk.ErrorDeviceLost), ErrQuery))
}

func TestErrorMessagesNameTheTarget(t *testing.T) {
	err := createErr("graphics pipeline", vk.ErrorOutOfHostMemory)
	assert.Contains(t, err.Error(), "graphics pipeline")
}
