package vkbase

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// NewPipelineLayout creates a layout from optional set layouts and push
// constant ranges.
func NewPipelineLayout(device *CoreDevice, setLayouts []vk.DescriptorSetLayout, pushRanges []vk.PushConstantRange) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device.handle, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: uint32(len(pushRanges)),
		PPushConstantRanges:    pushRanges,
	}, nil, &layout)
	if isError(ret) {
		return vk.NullPipelineLayout, createErr("pipeline layout", ret)
	}
	return layout, nil
}

// SpecConstants maps specialization constant IDs to uint32 values and
// produces the vk.SpecializationInfo the stage create info wants.
type SpecConstants struct {
	entries []vk.SpecializationMapEntry
	data    []uint32
}

func NewSpecConstants() *SpecConstants {
	return &SpecConstants{}
}

func (s *SpecConstants) Set(id uint32, value uint32) *SpecConstants {
	offset := uint32(len(s.data)) * 4
	s.entries = append(s.entries, vk.SpecializationMapEntry{
		ConstantID: id,
		Offset:     offset,
		Size:       4,
	})
	s.data = append(s.data, value)
	return s
}

func (s *SpecConstants) Info() *vk.SpecializationInfo {
	if len(s.entries) == 0 {
		return nil
	}
	return &vk.SpecializationInfo{
		MapEntryCount: uint32(len(s.entries)),
		PMapEntries:   s.entries,
		DataSize:      uint(len(s.data) * 4),
		PData:         unsafe.Pointer(&s.data[0]),
	}
}

// PipelineBuilder assembles a graphics pipeline with the conventional
// fixed-function defaults: filled triangles, back-face culling, depth test
// on, no blending, dynamic viewport and scissor.
type PipelineBuilder struct {
	device     *CoreDevice
	layout     vk.PipelineLayout
	renderPass vk.RenderPass
	stages     []vk.PipelineShaderStageCreateInfo
	bindings   []vk.VertexInputBindingDescription
	attrs      []vk.VertexInputAttributeDescription
	topology   vk.PrimitiveTopology
	polygon    vk.PolygonMode
	cull       vk.CullModeFlagBits
	front      vk.FrontFace
	depthTest  vk.Bool32
	depthWrite vk.Bool32
	blend      bool
	lineWidth  float32
}

func NewPipelineBuilder(device *CoreDevice, layout vk.PipelineLayout, renderPass vk.RenderPass) *PipelineBuilder {
	return &PipelineBuilder{
		device:     device,
		layout:     layout,
		renderPass: renderPass,
		topology:   vk.PrimitiveTopologyTriangleList,
		polygon:    vk.PolygonModeFill,
		cull:       vk.CullModeBackBit,
		front:      vk.FrontFaceCounterClockwise,
		depthTest:  vk.True,
		depthWrite: vk.True,
		lineWidth:  1.0,
	}
}

func (b *PipelineBuilder) Shaders(program *ShaderProgram) *PipelineBuilder {
	b.stages = program.Stages()
	return b
}

// ShaderStages replaces the stage list directly. Used when stages carry
// specialization info that Stages() does not attach.
func (b *PipelineBuilder) ShaderStages(stages []vk.PipelineShaderStageCreateInfo) *PipelineBuilder {
	b.stages = stages
	return b
}

func (b *PipelineBuilder) VertexInput(binding vk.VertexInputBindingDescription, attrs []vk.VertexInputAttributeDescription) *PipelineBuilder {
	b.bindings = []vk.VertexInputBindingDescription{binding}
	b.attrs = attrs
	return b
}

func (b *PipelineBuilder) Topology(topology vk.PrimitiveTopology) *PipelineBuilder {
	b.topology = topology
	return b
}

func (b *PipelineBuilder) PolygonMode(mode vk.PolygonMode) *PipelineBuilder {
	b.polygon = mode
	return b
}

func (b *PipelineBuilder) CullMode(mode vk.CullModeFlagBits) *PipelineBuilder {
	b.cull = mode
	return b
}

func (b *PipelineBuilder) FrontFace(front vk.FrontFace) *PipelineBuilder {
	b.front = front
	return b
}

func (b *PipelineBuilder) DepthTest(test, write bool) *PipelineBuilder {
	b.depthTest = boolToVk(test)
	b.depthWrite = boolToVk(write)
	return b
}

func (b *PipelineBuilder) AlphaBlend() *PipelineBuilder {
	b.blend = true
	return b
}

func (b *PipelineBuilder) LineWidth(width float32) *PipelineBuilder {
	b.lineWidth = width
	return b
}

func (b *PipelineBuilder) Build() (vk.Pipeline, error) {
	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	if b.blend {
		blendAttachment.BlendEnable = vk.True
		blendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blendAttachment.ColorBlendOp = vk.BlendOpAdd
		blendAttachment.SrcAlphaBlendFactor = vk.BlendFactorOne
		blendAttachment.DstAlphaBlendFactor = vk.BlendFactorZero
		blendAttachment.AlphaBlendOp = vk.BlendOpAdd
	}

	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(b.device.handle, vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{{
			SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount: uint32(len(b.stages)),
			PStages:    b.stages,
			PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
				SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
				VertexBindingDescriptionCount:   uint32(len(b.bindings)),
				PVertexBindingDescriptions:      b.bindings,
				VertexAttributeDescriptionCount: uint32(len(b.attrs)),
				PVertexAttributeDescriptions:    b.attrs,
			},
			PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
				SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
				Topology: b.topology,
			},
			PViewportState: &vk.PipelineViewportStateCreateInfo{
				SType:         vk.StructureTypePipelineViewportStateCreateInfo,
				ViewportCount: 1,
				ScissorCount:  1,
			},
			PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
				SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
				PolygonMode: b.polygon,
				CullMode:    vk.CullModeFlags(b.cull),
				FrontFace:   b.front,
				LineWidth:   b.lineWidth,
			},
			PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
				SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
				RasterizationSamples: vk.SampleCount1Bit,
			},
			PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
				SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
				DepthTestEnable:  b.depthTest,
				DepthWriteEnable: b.depthWrite,
				DepthCompareOp:   vk.CompareOpLessOrEqual,
				Back: vk.StencilOpState{
					CompareOp: vk.CompareOpAlways,
				},
				Front: vk.StencilOpState{
					CompareOp: vk.CompareOpAlways,
				},
			},
			PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
				SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
				AttachmentCount: 1,
				PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
			},
			PDynamicState: &vk.PipelineDynamicStateCreateInfo{
				SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
				DynamicStateCount: 2,
				PDynamicStates: []vk.DynamicState{
					vk.DynamicStateViewport,
					vk.DynamicStateScissor,
				},
			},
			Layout:     b.layout,
			RenderPass: b.renderPass,
		}}, nil, pipelines)
	if isError(ret) {
		return vk.NullPipeline, createErr("graphics pipeline", ret)
	}
	return pipelines[0], nil
}

// NewComputePipeline creates a compute pipeline from a single module. A nil
// spec leaves the shader's specialization constants at their defaults.
func NewComputePipeline(device *CoreDevice, layout vk.PipelineLayout, module vk.ShaderModule, spec *SpecConstants) (vk.Pipeline, error) {
	stage := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageComputeBit,
		Module: module,
		PName:  "main\x00",
	}
	if spec != nil {
		if info := spec.Info(); info != nil {
			stage.PSpecializationInfo = []vk.SpecializationInfo{*info}
		}
	}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateComputePipelines(device.handle, vk.NullPipelineCache, 1,
		[]vk.ComputePipelineCreateInfo{{
			SType:  vk.StructureTypeComputePipelineCreateInfo,
			Stage:  stage,
			Layout: layout,
		}}, nil, pipelines)
	if isError(ret) {
		return vk.NullPipeline, createErr("compute pipeline", ret)
	}
	return pipelines[0], nil
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
