package vkbase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	vk "github.com/vulkan-go/vulkan"
)

// NewShaderModule wraps raw SPIR-V bytes in a shader module. The byte
// length must be a multiple of four.
func NewShaderModule(device *CoreDevice, code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.NullShaderModule, createErr("shader module", vk.ErrorInvalidShaderNv)
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device.handle, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, createErr("shader module", ret)
	}
	return module, nil
}

// LoadShaderFile reads a precompiled .spv file and creates a module from it.
func LoadShaderFile(device *CoreDevice, path string) (vk.ShaderModule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("read shader %s: %w", path, err)
	}
	module, err := NewShaderModule(device, code)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("shader %s: %w", path, err)
	}
	return module, nil
}

// ShaderProgram owns one module per pipeline stage.
type ShaderProgram struct {
	device  *CoreDevice
	modules map[vk.ShaderStageFlagBits]vk.ShaderModule
}

func NewShaderProgram(device *CoreDevice) *ShaderProgram {
	return &ShaderProgram{
		device:  device,
		modules: make(map[vk.ShaderStageFlagBits]vk.ShaderModule),
	}
}

// AddStage loads one stage from a .spv file. Replaces any module already
// bound to that stage.
func (p *ShaderProgram) AddStage(stage vk.ShaderStageFlagBits, path string) error {
	module, err := LoadShaderFile(p.device, path)
	if err != nil {
		return err
	}
	if old, ok := p.modules[stage]; ok {
		vk.DestroyShaderModule(p.device.handle, old, nil)
	}
	p.modules[stage] = module
	return nil
}

func (p *ShaderProgram) Module(stage vk.ShaderStageFlagBits) vk.ShaderModule {
	return p.modules[stage]
}

// Stages builds the pipeline stage create infos with entry point "main".
func (p *ShaderProgram) Stages() []vk.PipelineShaderStageCreateInfo {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(p.modules))
	for stage, module := range p.modules {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: module,
			PName:  "main\x00",
		})
	}
	return stages
}

func (p *ShaderProgram) Destroy() {
	for stage, module := range p.modules {
		vk.DestroyShaderModule(p.device.handle, module, nil)
		delete(p.modules, stage)
	}
}

func (p *ShaderProgram) Release() { p.Destroy() }

// ShaderWatcher watches a directory for rewritten .spv files and reports
// which files changed since the last poll. The render loop polls Changed
// once per frame and rebuilds its pipelines when it returns paths.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	dirty   map[string]struct{}
	done    chan struct{}
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	sw := &ShaderWatcher{
		watcher: watcher,
		dirty:   make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	log := Log("shader")
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".spv" {
				continue
			}
			log.Debug().Str("file", event.Name).Msg("shader changed")
			sw.mu.Lock()
			sw.dirty[event.Name] = struct{}{}
			sw.mu.Unlock()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("shader watch error")
		}
	}
}

// Changed drains and returns the set of shader paths rewritten since the
// previous call. Returns nil when nothing changed.
func (sw *ShaderWatcher) Changed() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if len(sw.dirty) == 0 {
		return nil
	}
	paths := make([]string, 0, len(sw.dirty))
	for path := range sw.dirty {
		paths = append(paths, path)
		delete(sw.dirty, path)
	}
	return paths
}

func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
