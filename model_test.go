package vkbase

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestCubeMeshShape(t *testing.T) {
	mesh := CubeMesh()
	// Six faces, four vertices and six indices each.
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)

	for i, v := range mesh.Vertices {
		length := math.Sqrt(float64(v.Normal[0]*v.Normal[0] +
			v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2]))
		assert.InDelta(t, 1.0, length, 1e-6, "vertex %d normal", i)
	}
	for _, idx := range mesh.Indices {
		assert.Less(t, idx, uint32(len(mesh.Vertices)))
	}
}

func TestCubeMeshIsUnitSized(t *testing.T) {
	for _, v := range CubeMesh().Vertices {
		for axis := 0; axis < 3; axis++ {
			assert.LessOrEqual(t, float64(v.Pos[axis]), 0.5)
			assert.GreaterOrEqual(t, float64(v.Pos[axis]), -0.5)
		}
	}
}

func TestModelVertexBinding(t *testing.T) {
	binding, attrs := ModelVertexBinding()
	assert.Equal(t, uint32(unsafe.Sizeof(ModelVertex{})), binding.Stride)
	require.Len(t, attrs, 3)

	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[0].Format)
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[1].Format)
	assert.Equal(t, uint32(12), attrs[1].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[2].Format)
	assert.Equal(t, uint32(24), attrs[2].Offset)
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF("does-not-exist.gltf")
	assert.Error(t, err)
}
