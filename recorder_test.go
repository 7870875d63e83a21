package vkbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestPushConstantsEmptyBlock(t *testing.T) {
	// An empty block must not reach the driver, there is no byte to point
	// at. A zero-value recorder covers the early return.
	r := &CmdRecorder{}
	assert.NotPanics(t, func() {
		r.PushConstants(vk.NullPipelineLayout, vk.ShaderStageVertexBit, 0, nil)
	})
}
