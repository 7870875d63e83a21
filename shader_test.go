package vkbase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderWatcherReportsSpvWrites(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewShaderWatcher(dir)
	require.NoError(t, err)
	defer sw.Close()

	path := filepath.Join(dir, "triangle.frag.spv")
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x02, 0x23, 0x07}, 0o644))

	assert.Eventually(t, func() bool {
		for _, changed := range sw.Changed() {
			if changed == path {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	// Drained; nothing new comes back.
	assert.Nil(t, sw.Changed())
}

func TestShaderWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewShaderWatcher(dir)
	require.NoError(t, err)
	defer sw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	assert.Never(t, func() bool {
		return len(sw.Changed()) > 0
	}, 300*time.Millisecond, 25*time.Millisecond)
}

func TestShaderWatcherMissingDir(t *testing.T) {
	_, err := NewShaderWatcher(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
