package vkbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "VK_KHR_swapchain\x00", safeString("VK_KHR_swapchain"))
	// Already terminated strings pass through unchanged.
	assert.Equal(t, "abc\x00", safeString("abc\x00"))
}

func TestCheckExisting(t *testing.T) {
	actual := []string{"VK_KHR_surface\x00", "VK_KHR_swapchain\x00"}

	existing, missing := checkExisting(actual, []string{"VK_KHR_swapchain"})
	assert.Equal(t, 0, missing)
	assert.Equal(t, []string{"VK_KHR_swapchain\x00"}, existing)

	existing, missing = checkExisting(actual, []string{"VK_KHR_swapchain", "VK_EXT_missing"})
	assert.Equal(t, 1, missing)
	assert.Len(t, existing, 1)

	existing, missing = checkExisting(nil, []string{"anything"})
	assert.Equal(t, 1, missing)
	assert.Empty(t, existing)
}

func TestSliceUint32(t *testing.T) {
	// SPIR-V magic number in little-endian bytes.
	words := sliceUint32([]byte{0x03, 0x02, 0x23, 0x07})
	assert.Equal(t, []uint32{0x07230203}, words)
}

func TestAsBytes(t *testing.T) {
	v := struct{ A, B float32 }{1, 2}
	b := AsBytes(&v)
	assert.Len(t, b, 8)

	b[0] = 0
	b[1] = 0
	b[2] = 0x80
	b[3] = 0x3f
	assert.Equal(t, float32(1), v.A)
}

func TestSliceBytes(t *testing.T) {
	assert.Nil(t, SliceBytes([]float32(nil)))
	assert.Len(t, SliceBytes([]float32{1, 2, 3}), 12)
	assert.Len(t, SliceBytes([]uint32{7}), 4)
}
