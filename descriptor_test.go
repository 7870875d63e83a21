package vkbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorPoolAllocateEmpty(t *testing.T) {
	// An empty allocation returns before any device call, so a zero-value
	// pool is enough to cover it.
	p := &DescriptorPool{}
	sets, err := p.Allocate()
	require.NoError(t, err)
	assert.Empty(t, sets)
}
