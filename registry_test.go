package vkbase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// The resource types the examples track must satisfy Releasable.
var (
	_ Releasable = (*CoreBuffer)(nil)
	_ Releasable = (*Mesh)(nil)
	_ Releasable = (*Texture2D)(nil)
	_ Releasable = (*DescriptorPool)(nil)
	_ Releasable = (*DepthImage)(nil)
	_ Releasable = (*RenderTarget)(nil)
	_ Releasable = (*ShaderProgram)(nil)
	_ Releasable = (*FrameRing)(nil)
)

type recordingResource struct {
	name  string
	order *[]string
}

func (r *recordingResource) Release() {
	*r.order = append(*r.order, r.name)
}

func TestRegistryReleaseAllReversesOrder(t *testing.T) {
	reg := NewRegistry()
	var order []string
	reg.Track("first", &recordingResource{"first", &order})
	reg.Track("second", &recordingResource{"second", &order})
	reg.Track("third", &recordingResource{"third", &order})

	reg.ReleaseAll()
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Zero(t, reg.Len())
}

func TestRegistryReleaseById(t *testing.T) {
	reg := NewRegistry()
	var order []string
	id := reg.Track("only", &recordingResource{"only", &order})

	assert.True(t, reg.Release(id))
	assert.Equal(t, []string{"only"}, order)
	// A second release of the same id is a no-op.
	assert.False(t, reg.Release(id))
}

func TestRegistryReleaseUnknownId(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Release(uuid.New()))
}

func TestRegistryReleaseAllOnEmpty(t *testing.T) {
	reg := NewRegistry()
	reg.ReleaseAll()
	assert.Zero(t, reg.Len())
}

func TestComputeContextReleasesTrackedResources(t *testing.T) {
	ctx := newTestComputeContext(t)

	data := make([]byte, 256)
	buffer, err := NewHostBuffer(ctx.Device, data, 0, vk.BufferUsageStorageBufferBit)
	require.NoError(t, err)
	ctx.Resources.Track("test buffer", buffer)
	assert.Equal(t, 1, ctx.Resources.Len())

	ctx.Destroy()
	assert.Zero(t, ctx.Resources.Len())
	// The released buffer is inert; a second destroy is a no-op.
	buffer.Destroy()
}
