package vkbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestAlignUniformOffset(t *testing.T) {
	cases := []struct {
		size, align, want vk.DeviceSize
	}{
		{0, 256, 0},
		{1, 256, 256},
		{64, 64, 64},
		{65, 64, 128},
		{192, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AlignUniformOffset(tc.size, tc.align),
			"size %d align %d", tc.size, tc.align)
	}
}
