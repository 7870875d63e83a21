package vkbase

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// CoreDisplay owns the GLFW window and its Vulkan surface. One display
// carries exactly one swapchain at a time.
type CoreDisplay struct {
	window  *glfw.Window
	surface vk.Surface
	resized bool
}

// NewCoreDisplay creates the window. GLFW must be initialized and the caller
// must be locked to the OS thread.
func NewCoreDisplay(cfg Config) (*CoreDisplay, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	core := &CoreDisplay{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		core.resized = true
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return core, nil
}

// CreateSurface creates the window surface for the given instance.
func (d *CoreDisplay) CreateSurface(instance vk.Instance) error {
	surfPtr, err := d.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return fmt.Errorf("create window surface: %w", err)
	}
	d.surface = vk.SurfaceFromPointer(surfPtr)
	return nil
}

// Surface returns the Vulkan surface handle.
func (d *CoreDisplay) Surface() vk.Surface { return d.surface }

// Window returns the underlying GLFW window.
func (d *CoreDisplay) Window() *glfw.Window { return d.window }

// Extent returns the current framebuffer size in pixels.
func (d *CoreDisplay) Extent() vk.Extent2D {
	w, h := d.window.GetFramebufferSize()
	return vk.Extent2D{Width: uint32(w), Height: uint32(h)}
}

// ConsumeResize reports and clears the pending resize flag. The frame loop
// checks it once per frame and rebuilds the swapchain when set.
func (d *CoreDisplay) ConsumeResize() bool {
	r := d.resized
	d.resized = false
	return r
}

// ShouldClose reports whether the window was asked to close.
func (d *CoreDisplay) ShouldClose() bool {
	return d.window.ShouldClose()
}

// SetTitle updates the window title, used by the FPS readout.
func (d *CoreDisplay) SetTitle(title string) {
	d.window.SetTitle(title)
}

// KeyPressed reports whether the key is currently held down.
func (d *CoreDisplay) KeyPressed(key glfw.Key) bool {
	return d.window.GetKey(key) == glfw.Press
}

// CursorPos returns the current cursor position in screen coordinates.
func (d *CoreDisplay) CursorPos() (float64, float64) {
	return d.window.GetCursorPos()
}

// Destroy releases the surface and the window.
func (d *CoreDisplay) Destroy(instance vk.Instance) {
	if d.surface != vk.NullSurface {
		vk.DestroySurface(instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
	}
}
