// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FrameState is the stage the frame executor is in.
type FrameState int

// Frame stages, in the order a frame goes through them
const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// frameSync is the synchronization of the single frame in flight.
// The fence starts signaled so the first wait returns at once.
type frameSync struct {
	fence          vk.Fence
	imageAcquired  vk.Semaphore
	renderFinished vk.Semaphore
}

func newFrameSync(device Device) (*frameSync, error) {
	imageAcquired, err := device.CreateSemaphore()
	if err != nil {
		return nil, err
	}
	renderFinished, err := device.CreateSemaphore()
	if err != nil {
		device.DestroySemaphore(imageAcquired)
		return nil, err
	}
	fence, err := device.CreateFence(true)
	if err != nil {
		device.DestroySemaphore(renderFinished)
		device.DestroySemaphore(imageAcquired)
		return nil, err
	}
	return &frameSync{
		fence:          fence,
		imageAcquired:  imageAcquired,
		renderFinished: renderFinished,
	}, nil
}

func (s *frameSync) release(device Device) {
	device.DestroyFence(s.fence)
	device.DestroySemaphore(s.renderFinished)
	device.DestroySemaphore(s.imageAcquired)
}

// frameTarget is everything a frame draws with. It changes only on resize.
type frameTarget struct {
	generation   uint64
	swapchain    vk.Swapchain
	framebuffers []vk.Framebuffer
	renderPass   vk.RenderPass
	pipeline     vk.Pipeline
	vertices     *VertexBuffer
	extent       core.Extent
}

func (t frameTarget) viewport() vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(t.extent.Width),
		Height:   float32(t.extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

func (t frameTarget) scissor() vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: t.extent.Width, Height: t.extent.Height},
	}
}

// frameExecutor records, submits and presents one frame at a time
// from a single reusable command buffer.
type frameExecutor struct {
	device  Device
	sync    *frameSync
	command vk.CommandBuffer
	log     log.FieldLogger

	state FrameState
	// observe, if set, is called on every state change
	observe func(FrameState)

	warned    bool
	warnedGen uint64
}

func newFrameExecutor(device Device, sync *frameSync, command vk.CommandBuffer, logger log.FieldLogger) *frameExecutor {
	return &frameExecutor{
		device:  device,
		sync:    sync,
		command: command,
		log:     logger,
	}
}

func (f *frameExecutor) enter(state FrameState) {
	f.state = state
	if f.observe != nil {
		f.observe(state)
	}
}

// render draws one frame into target. The executor is idle again when it
// returns, whatever the outcome.
func (f *frameExecutor) render(target frameTarget) error {
	defer f.enter(FrameIdle)

	if err := f.device.WaitForFence(f.sync.fence); err != nil {
		return err
	}
	if err := f.device.ResetFence(f.sync.fence); err != nil {
		return err
	}

	f.enter(FrameAcquiring)
	index, ret := f.device.AcquireNextImage(target.swapchain, f.sync.imageAcquired)
	if !presentable(ret) {
		return &ResultError{Op: "vk.AcquireNextImage", Result: ret}
	}
	f.suboptimal("acquire", ret, target.generation)
	if int(index) >= len(target.framebuffers) {
		return errors.Errorf("acquired image %d of %d", index, len(target.framebuffers))
	}

	f.enter(FrameRecording)
	if err := f.record(target, index); err != nil {
		return err
	}

	if err := f.device.QueueSubmit(&vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.sync.imageAcquired},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{f.command},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.sync.renderFinished},
	}, f.sync.fence); err != nil {
		return err
	}
	f.enter(FrameSubmitted)

	f.enter(FramePresenting)
	ret = f.device.QueuePresent(&vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.sync.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{target.swapchain},
		PImageIndices:      []uint32{index},
	})
	if !presentable(ret) {
		return &ResultError{Op: "vk.QueuePresent", Result: ret}
	}
	f.suboptimal("present", ret, target.generation)
	return nil
}

func (f *frameExecutor) record(target frameTarget, index uint32) error {
	if err := f.device.ResetCommandBuffer(f.command); err != nil {
		return err
	}
	if err := f.device.BeginCommandBuffer(f.command); err != nil {
		return err
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{0, 0, 0, 1})

	f.device.CmdBeginRenderPass(f.command, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      target.renderPass,
		Framebuffer:     target.framebuffers[index],
		RenderArea:      target.scissor(),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	})
	f.device.CmdBindPipeline(f.command, target.pipeline)
	f.device.CmdSetViewport(f.command, target.viewport())
	f.device.CmdSetScissor(f.command, target.scissor())
	f.device.CmdBindVertexBuffer(f.command, target.vertices.Buffer())
	f.device.CmdDraw(f.command, target.vertices.Count())
	f.device.CmdEndRenderPass(f.command)

	return f.device.EndCommandBuffer(f.command)
}

// suboptimal logs the first suboptimal result seen for a swapchain generation.
func (f *frameExecutor) suboptimal(op string, ret vk.Result, generation uint64) {
	if ret != vk.Suboptimal || (f.warned && f.warnedGen == generation) {
		return
	}
	f.warned, f.warnedGen = true, generation
	f.log.WithFields(log.Fields{
		"op":         op,
		"generation": generation,
	}).Warn("surface is suboptimal, presenting anyway")
}
