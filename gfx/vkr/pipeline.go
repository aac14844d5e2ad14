// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// ShaderCode is the compiled SPIR-V of both pipeline stages.
type ShaderCode struct {
	Vertex   []uint32
	Fragment []uint32
}

// VertexLayout describes how the vertex buffer feeds the vertex stage.
type VertexLayout struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

type shaderModules struct {
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
}

func createShaderModules(device Device, code ShaderCode) (shaderModules, error) {
	var modules shaderModules
	vertex, err := device.CreateShaderModule(code.Vertex)
	if err != nil {
		return modules, errors.Wrap(err, "vertex shader module")
	}
	fragment, err := device.CreateShaderModule(code.Fragment)
	if err != nil {
		device.DestroyShaderModule(vertex)
		return modules, errors.Wrap(err, "fragment shader module")
	}
	modules.vertex, modules.fragment = vertex, fragment
	return modules, nil
}

func (s shaderModules) release(device Device) {
	device.DestroyShaderModule(s.fragment)
	device.DestroyShaderModule(s.vertex)
}

func (s shaderModules) stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: s.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: s.fragment,
			PName:  safeString("main"),
		},
	}
}

// pipelineState is a graphics pipeline and its layout, valid as long as
// the render pass it was built against.
type pipelineState struct {
	device   Device
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

// buildPipeline compiles the fixed function triangle pipeline. Viewport and
// scissor are dynamic. A driver failure is reported as a
// core.PipelineCreationError, with the last validation message when the
// sink has one.
func buildPipeline(device Device, renderPass vk.RenderPass, modules shaderModules, layout VertexLayout, sink DiagnosticSink) (*pipelineState, error) {
	pipelineLayout, err := device.CreatePipelineLayout(&vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pipeline layout")
	}

	stages := modules.stages()
	gpci := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(layout.Bindings)),
			PVertexBindingDescriptions:      layout.Bindings,
			VertexAttributeDescriptionCount: uint32(len(layout.Attributes)),
			PVertexAttributeDescriptions:    layout.Attributes,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateViewport,
				vk.DynamicStateScissor,
			},
		},
		Layout:     pipelineLayout,
		RenderPass: renderPass,
	}

	pipeline, ret := device.CreateGraphicsPipeline(&gpci)
	if err := check("vk.CreateGraphicsPipelines", ret); err != nil {
		device.DestroyPipelineLayout(pipelineLayout)
		diagnostic := err.Error()
		if last := sink.Last(); last != "" {
			diagnostic += ": " + last
		}
		return nil, &core.PipelineCreationError{Diagnostic: diagnostic}
	}

	return &pipelineState{
		device:   device,
		layout:   pipelineLayout,
		pipeline: pipeline,
	}, nil
}

// release destroys the pipeline before its layout.
func (p *pipelineState) release() {
	p.device.DestroyPipeline(p.pipeline)
	p.device.DestroyPipelineLayout(p.layout)
}
