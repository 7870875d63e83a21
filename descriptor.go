package vkbase

import vk "github.com/vulkan-go/vulkan"

// LayoutBuilder accumulates descriptor set layout bindings.
type LayoutBuilder struct {
	device   *CoreDevice
	bindings []vk.DescriptorSetLayoutBinding
}

func NewLayoutBuilder(device *CoreDevice) *LayoutBuilder {
	return &LayoutBuilder{device: device}
}

func (b *LayoutBuilder) Binding(binding uint32, descType vk.DescriptorType, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	b.bindings = append(b.bindings, vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  descType,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	})
	return b
}

func (b *LayoutBuilder) Uniform(binding uint32, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	return b.Binding(binding, vk.DescriptorTypeUniformBuffer, stages)
}

func (b *LayoutBuilder) DynamicUniform(binding uint32, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	return b.Binding(binding, vk.DescriptorTypeUniformBufferDynamic, stages)
}

func (b *LayoutBuilder) Sampler(binding uint32, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	return b.Binding(binding, vk.DescriptorTypeCombinedImageSampler, stages)
}

func (b *LayoutBuilder) Storage(binding uint32, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	return b.Binding(binding, vk.DescriptorTypeStorageBuffer, stages)
}

func (b *LayoutBuilder) Build() (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(b.device.handle, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(b.bindings)),
		PBindings:    b.bindings,
	}, nil, &layout)
	if isError(ret) {
		return vk.NullDescriptorSetLayout, createErr("descriptor set layout", ret)
	}
	return layout, nil
}

// DescriptorPool sizes itself from the layouts allocated through it.
type DescriptorPool struct {
	device *CoreDevice
	pool   vk.DescriptorPool
}

// NewDescriptorPool creates a pool with the given capacity per descriptor
// type and a maximum of maxSets set allocations.
func NewDescriptorPool(device *CoreDevice, maxSets uint32, sizes []vk.DescriptorPoolSize) (*DescriptorPool, error) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(device.handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &pool)
	if isError(ret) {
		return nil, createErr("descriptor pool", ret)
	}
	return &DescriptorPool{device: device, pool: pool}, nil
}

// Allocate returns one descriptor set per layout passed.
func (p *DescriptorPool) Allocate(layouts ...vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, nil
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	ret := vk.AllocateDescriptorSets(p.device.handle, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}, &sets[0])
	if isError(ret) {
		return nil, createErr("descriptor sets", ret)
	}
	return sets, nil
}

func (p *DescriptorPool) Handle() vk.DescriptorPool {
	return p.pool
}

func (p *DescriptorPool) Destroy() {
	if p.pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(p.device.handle, p.pool, nil)
		p.pool = vk.NullDescriptorPool
	}
}

func (p *DescriptorPool) Release() { p.Destroy() }

// WriteBatch accumulates descriptor writes and flushes them in one call.
type WriteBatch struct {
	device *CoreDevice
	writes []vk.WriteDescriptorSet
}

func NewWriteBatch(device *CoreDevice) *WriteBatch {
	return &WriteBatch{device: device}
}

func (w *WriteBatch) Buffer(set vk.DescriptorSet, binding uint32, descType vk.DescriptorType, info vk.DescriptorBufferInfo) *WriteBatch {
	w.writes = append(w.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  descType,
		PBufferInfo:     []vk.DescriptorBufferInfo{info},
	})
	return w
}

func (w *WriteBatch) Uniform(set vk.DescriptorSet, binding uint32, info vk.DescriptorBufferInfo) *WriteBatch {
	return w.Buffer(set, binding, vk.DescriptorTypeUniformBuffer, info)
}

func (w *WriteBatch) DynamicUniform(set vk.DescriptorSet, binding uint32, info vk.DescriptorBufferInfo) *WriteBatch {
	return w.Buffer(set, binding, vk.DescriptorTypeUniformBufferDynamic, info)
}

func (w *WriteBatch) Storage(set vk.DescriptorSet, binding uint32, info vk.DescriptorBufferInfo) *WriteBatch {
	return w.Buffer(set, binding, vk.DescriptorTypeStorageBuffer, info)
}

func (w *WriteBatch) Image(set vk.DescriptorSet, binding uint32, info vk.DescriptorImageInfo) *WriteBatch {
	w.writes = append(w.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{info},
	})
	return w
}

func (w *WriteBatch) Flush() {
	if len(w.writes) == 0 {
		return
	}
	vk.UpdateDescriptorSets(w.device.handle, uint32(len(w.writes)), w.writes, 0, nil)
	w.writes = w.writes[:0]
}
