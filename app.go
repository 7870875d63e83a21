package vkbase

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// RenderWorkflow is implemented by each example. The app drives the window
// and the swapchain; the workflow owns pipelines and per-frame resources.
type RenderWorkflow interface {
	// Init creates the workflow's pipelines and buffers. The app's device,
	// render pass and pools are ready when it runs.
	Init(app *App) error
	// RenderFrame records one frame into the recorder. The render pass is
	// not begun; the workflow begins and ends it itself.
	RenderFrame(app *App, rec *CmdRecorder, framebuffer vk.Framebuffer, delta float32) error
	// SwapchainReload runs after the swapchain was rebuilt, with the device
	// idle. Extent-dependent resources get recreated here.
	SwapchainReload(app *App) error
	// ReceiveInput runs once per frame before recording.
	ReceiveInput(app *App, delta float32)
	// Deinit releases the workflow's resources, device already idle.
	Deinit(app *App)
}

// App owns the window, the Vulkan instance and device, the swapchain with
// its default render pass and framebuffers, and the frame pacing state.
type App struct {
	Config    Config
	Instance  *CoreInstance
	Device    *CoreDevice
	Display   *CoreDisplay
	Swapchain *CoreSwapchain

	RenderPass   vk.RenderPass
	Framebuffers []vk.Framebuffer
	Depth        *DepthImage

	Pool      *CorePool
	Frames    *FrameRing
	Fps       *FpsCounter
	Resources *Registry

	watcher *ShaderWatcher
	title   string
}

// NewApp brings up GLFW, the instance, a presentable device and the
// swapchain chain of render pass, depth buffer and framebuffers.
func NewApp(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	SetLevel(ParseLevel(cfg.LogLevel))
	log := Log("app")

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("vulkan init: %w", err)
	}

	app := &App{
		Config:    cfg,
		Fps:       NewFpsCounter(),
		Resources: NewRegistry(),
		title:     cfg.Title,
	}

	display, err := NewCoreDisplay(cfg)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Display = display

	required := display.Window().GetRequiredInstanceExtensions()
	instance, err := NewCoreInstance(cfg.Title, cfg.Validation, required)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Instance = instance

	if err := display.CreateSurface(instance.Handle()); err != nil {
		app.Destroy()
		return nil, err
	}

	device, err := instance.CreateRenderDevice(display.Surface(), nil)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Device = device

	swapchain, err := NewCoreSwapchain(device, display.Surface(), display.Extent(), cfg.VSync)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Swapchain = swapchain

	renderPass, err := NewDefaultRenderPass(device, swapchain.Format)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.RenderPass = renderPass

	if err := app.buildTargets(); err != nil {
		app.Destroy()
		return nil, err
	}

	pool, err := NewCorePool(device, device.QueueFamily())
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Pool = pool

	frames, err := NewFrameRing(device, pool, cfg.FramesInFlight)
	if err != nil {
		app.Destroy()
		return nil, err
	}
	app.Frames = frames

	if cfg.HotReload {
		watcher, err := NewShaderWatcher(cfg.ShaderDir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.ShaderDir).Msg("shader hot reload disabled")
		} else {
			app.watcher = watcher
		}
	}

	log.Info().
		Str("gpu", device.DeviceName()).
		Uint32("width", swapchain.Extent.Width).
		Uint32("height", swapchain.Extent.Height).
		Int("images", len(swapchain.Images)).
		Msg("ready")
	return app, nil
}

// buildTargets creates the depth buffer and framebuffers for the current
// swapchain extent.
func (a *App) buildTargets() error {
	depth, err := NewDepthImage(a.Device, a.Swapchain.Extent)
	if err != nil {
		return err
	}
	framebuffers, err := NewFramebuffers(a.Device, a.RenderPass, a.Swapchain, depth.View)
	if err != nil {
		depth.Destroy()
		return err
	}
	a.Depth = depth
	a.Framebuffers = framebuffers
	return nil
}

func (a *App) destroyTargets() {
	DestroyFramebuffers(a.Device, a.Framebuffers)
	a.Framebuffers = nil
	if a.Depth != nil {
		a.Depth.Destroy()
		a.Depth = nil
	}
}

// ShadersChanged reports rewritten shader files when hot reload is on.
func (a *App) ShadersChanged() []string {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Changed()
}

// ShaderPath joins the configured shader directory with a file name.
func (a *App) ShaderPath(name string) string {
	return a.Config.ShaderDir + "/" + name
}

// AssetPath joins the configured asset directory with a file name.
func (a *App) AssetPath(name string) string {
	return a.Config.AssetDir + "/" + name
}

// reload quiesces the device and rebuilds everything sized by the surface.
func (a *App) reload(workflow RenderWorkflow) error {
	// A zero extent means the window is minimized; wait for events until it
	// has area again.
	for {
		extent := a.Display.Extent()
		if extent.Width > 0 && extent.Height > 0 {
			break
		}
		glfw.WaitEvents()
		if a.Display.ShouldClose() {
			return nil
		}
	}

	a.Device.WaitIdle()
	a.destroyTargets()
	if err := a.Swapchain.Rebuild(a.Device, a.Display.Surface(), a.Display.Extent()); err != nil {
		return err
	}
	if err := a.buildTargets(); err != nil {
		return err
	}
	return workflow.SwapchainReload(a)
}

// Run drives the workflow until the window closes. Frame pacing, swapchain
// recovery and the FPS title readout all live here.
func (a *App) Run(workflow RenderWorkflow) error {
	log := Log("app")

	if err := workflow.Init(a); err != nil {
		return err
	}
	defer func() {
		a.Device.WaitIdle()
		workflow.Deinit(a)
	}()

	var sinceTitle float32
	for !a.Display.ShouldClose() {
		frameStart := time.Now()
		glfw.PollEvents()
		a.Fps.Tick()
		delta := a.Fps.Delta()

		workflow.ReceiveInput(a, delta)

		if a.Display.ConsumeResize() {
			if err := a.reload(workflow); err != nil {
				return err
			}
			continue
		}

		slot, err := a.Frames.Next()
		if err != nil {
			return err
		}

		imageIndex, err := a.Swapchain.Acquire(a.Device, slot.ImageAvailable)
		switch {
		case errors.Is(err, ErrSwapchainOutOfDate):
			if err := a.reload(workflow); err != nil {
				return err
			}
			continue
		case errors.Is(err, ErrSwapchainTimeout):
			continue
		case err != nil && !errors.Is(err, ErrSwapchainSuboptimal):
			return err
		}

		rec := NewCmdRecorder(a.Device, slot.Cmd)
		if err := rec.Begin(false); err != nil {
			return err
		}
		if err := workflow.RenderFrame(a, rec, a.Framebuffers[imageIndex], delta); err != nil {
			return err
		}
		if err := rec.End(); err != nil {
			return err
		}

		if err := a.Frames.Submit(slot); err != nil {
			return err
		}

		err = a.Swapchain.Present(a.Device.Queue(), imageIndex, slot.RenderFinished)
		switch {
		case errors.Is(err, ErrSwapchainOutOfDate), errors.Is(err, ErrSwapchainSuboptimal):
			if err := a.reload(workflow); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		a.Frames.Advance()

		sinceTitle += delta
		if sinceTitle >= 1.0 {
			sinceTitle = 0
			a.Display.SetTitle(fmt.Sprintf("%s - %.0f fps", a.title, a.Fps.Fps()))
		}

		if budget := frameBudget(a.Config.PreferFPS); budget > 0 {
			if elapsed := time.Since(frameStart); elapsed < budget {
				time.Sleep(budget - elapsed)
			}
		}
	}
	log.Info().Msg("window closed")
	return nil
}

// Destroy tears everything down in reverse creation order.
func (a *App) Destroy() {
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	if a.Device != nil {
		a.Device.WaitIdle()
		a.Resources.ReleaseAll()
		if a.Frames != nil {
			a.Frames.Destroy()
			a.Frames = nil
		}
		if a.Pool != nil {
			a.Pool.Destroy()
			a.Pool = nil
		}
		a.destroyTargets()
		if a.RenderPass != vk.NullRenderPass {
			vk.DestroyRenderPass(a.Device.Handle(), a.RenderPass, nil)
			a.RenderPass = vk.NullRenderPass
		}
		if a.Swapchain != nil {
			a.Swapchain.Destroy(a.Device)
			a.Swapchain = nil
		}
		a.Device.Destroy()
		a.Device = nil
	}
	if a.Display != nil && a.Instance != nil {
		a.Display.Destroy(a.Instance.Handle())
		a.Display = nil
	}
	if a.Instance != nil {
		a.Instance.Destroy()
		a.Instance = nil
	}
	glfw.Terminate()
}
