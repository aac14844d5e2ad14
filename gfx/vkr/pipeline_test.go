// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
)

func buildTestPipeline(c *qt.C, f *fakeDriver, sink DiagnosticSink) (*pipelineState, error) {
	modules, err := createShaderModules(f, testShaders)
	c.Assert(err, qt.IsNil)
	renderPass, err := createRenderPass(f, testFormat.Format)
	c.Assert(err, qt.IsNil)
	return buildPipeline(f, renderPass, modules, triangleLayout(), sink)
}

func TestPipelineFixedState(t *testing.T) {
	c := qt.New(t)
	f := newFakeDriver(gpu("gpu", graphicsQueue))

	state, err := buildTestPipeline(c, f, nopSink{})
	c.Assert(err, qt.IsNil)
	c.Assert(state.pipeline != nil, qt.Equals, true)

	info := f.pipelineInfo
	c.Assert(len(info.PStages), qt.Equals, 2)
	c.Check(info.PStages[0].Stage, qt.Equals, vk.ShaderStageVertexBit)
	c.Check(info.PStages[1].Stage, qt.Equals, vk.ShaderStageFragmentBit)
	c.Check(info.PStages[0].PName, qt.Equals, "main\x00")

	c.Check(info.PInputAssemblyState.Topology, qt.Equals, vk.PrimitiveTopologyTriangleList)

	raster := info.PRasterizationState
	c.Check(raster.PolygonMode, qt.Equals, vk.PolygonModeFill)
	c.Check(raster.CullMode, qt.Equals, vk.CullModeFlags(vk.CullModeBackBit))
	c.Check(raster.FrontFace, qt.Equals, vk.FrontFaceClockwise)
	c.Check(raster.LineWidth, qt.Equals, float32(1))

	c.Check(info.PMultisampleState.RasterizationSamples, qt.Equals, vk.SampleCount1Bit)

	blend := info.PColorBlendState.PAttachments
	c.Assert(len(blend), qt.Equals, 1)
	c.Check(blend[0].BlendEnable, qt.Equals, vk.Bool32(vk.False))
	c.Check(blend[0].ColorWriteMask, qt.Equals, vk.ColorComponentFlags(0xF))

	c.Check(info.PDepthStencilState == nil, qt.Equals, true)
	c.Check(info.PViewportState.ViewportCount, qt.Equals, uint32(1))
	c.Check(info.PViewportState.ScissorCount, qt.Equals, uint32(1))
	c.Check(info.PViewportState.PViewports == nil, qt.Equals, true)
	c.Check(info.PDynamicState.PDynamicStates, qt.DeepEquals, []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	})

	c.Check(info.PVertexInputState.PVertexBindingDescriptions[0].Stride, qt.Equals, uint32(20))
	c.Check(len(info.PVertexInputState.PVertexAttributeDescriptions), qt.Equals, 2)
}

func TestPipelineRelease(t *testing.T) {
	c := qt.New(t)
	f := newFakeDriver(gpu("gpu", graphicsQueue))
	state, err := buildTestPipeline(c, f, nopSink{})
	c.Assert(err, qt.IsNil)

	mark := len(f.calls)
	state.release()
	c.Assert(f.calledSince(mark, "Destroy"), qt.DeepEquals, []string{
		"DestroyPipeline",
		"DestroyPipelineLayout",
	})
}

func TestPipelineCreationError(t *testing.T) {
	c := qt.New(t)
	f := newFakeDriver(gpu("gpu", graphicsQueue))
	f.pipelineResult = vk.ErrorInitializationFailed

	logger, _ := test.NewNullLogger()
	sink := NewDiagnosticSink(true, logger)
	sink.Report(SeverityError, "Validation", "vertex output location 1 is not consumed")

	mark := len(f.live)
	_, err := buildTestPipeline(c, f, sink)
	c.Assert(errors.Is(err, core.ErrPipelineCreation), qt.Equals, true)

	var pipelineErr *core.PipelineCreationError
	c.Assert(errors.As(err, &pipelineErr), qt.Equals, true)
	c.Check(strings.HasPrefix(pipelineErr.Diagnostic, "vk.CreateGraphicsPipelines(): "), qt.Equals, true)
	c.Check(strings.HasSuffix(pipelineErr.Diagnostic, ": vertex output location 1 is not consumed"), qt.Equals, true)

	// modules and render pass were created by the helper, the layout is gone
	c.Check(len(f.live), qt.Equals, mark+3)
}

func TestShaderModulesRelease(t *testing.T) {
	c := qt.New(t)
	f := newFakeDriver(gpu("gpu", graphicsQueue))

	_, err := createShaderModules(f, ShaderCode{Vertex: testShaders.Vertex})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Check(len(f.leaked()), qt.Equals, 0)

	modules, err := createShaderModules(f, testShaders)
	c.Assert(err, qt.IsNil)
	modules.release(f)
	c.Check(len(f.leaked()), qt.Equals, 0)
}
