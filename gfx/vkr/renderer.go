// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx"
	"github.com/devblok/prism/model"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the logger, the standard logger by default.
func WithLogger(logger log.FieldLogger) RendererOption {
	return func(r *Renderer) {
		r.log = logger
	}
}

// WithSink sets the diagnostic sink consulted on pipeline failures.
func WithSink(sink DiagnosticSink) RendererOption {
	return func(r *Renderer) {
		r.sink = sink
	}
}

// WithDeviceExtensions enables device extensions besides VK_KHR_swapchain.
func WithDeviceExtensions(extensions ...string) RendererOption {
	return func(r *Renderer) {
		r.extensions = append(r.extensions, extensions...)
	}
}

// WithPresentationSupport sets the windowing system presentation query
// used during device selection.
func WithPresentationSupport(presentation PresentationSupport) RendererOption {
	return func(r *Renderer) {
		r.presentation = presentation
	}
}

// Renderer draws the triangle into a surface. It owns the logical device
// and everything created on it. It must be used from one thread.
type Renderer struct {
	physical     Physical
	surface      vk.Surface
	presentation PresentationSupport
	extensions   []string
	sink         DiagnosticSink
	log          log.FieldLogger

	selection  Selection
	device     Device
	renderPass vk.RenderPass
	modules    shaderModules
	vertices   *VertexBuffer
	exec       *frameExecutor

	// resources live as long as the renderer, released in reverse
	resources gfx.Group

	extent     core.Extent
	chain      *presentationChain
	pipeline   *pipelineState
	generation uint64
	stale      bool
}

// NewRenderer selects an adapter able to present to surface, creates the
// logical device and builds everything needed to render at extent.
func NewRenderer(physical Physical, surface vk.Surface, extent core.Extent, shaders ShaderCode, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		physical: physical,
		surface:  surface,
		sink:     nopSink{},
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.initialise(extent, shaders); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initialise(extent core.Extent, shaders ShaderCode) error {
	selection, err := SelectDevice(r.physical, r.surface, r.presentation)
	if err != nil {
		return err
	}
	r.selection = selection
	r.log.WithFields(log.Fields{
		"adapter": selection.Properties.Name,
		"family":  selection.Family,
		"format":  selection.Format.Format,
	}).Info("device selected")

	device, err := r.physical.CreateDevice(selection.Adapter, selection.Family, r.deviceExtensions())
	if err != nil {
		return errors.Wrap(err, "logical device")
	}
	r.device = device
	r.resources.AddFunc(device.Destroy)

	sync, err := newFrameSync(device)
	if err != nil {
		return errors.Wrap(err, "synchronization")
	}
	r.resources.AddFunc(func() { sync.release(device) })

	renderPass, err := createRenderPass(device, selection.Format.Format)
	if err != nil {
		return errors.Wrap(err, "render pass")
	}
	r.renderPass = renderPass
	r.resources.AddFunc(func() { device.DestroyRenderPass(renderPass) })

	if r.chain, err = newPresentationChain(r.physical, device, selection, r.surface, renderPass, extent, r.log); err != nil {
		return err
	}
	r.extent = extent

	modules, err := createShaderModules(device, shaders)
	if err != nil {
		return err
	}
	r.modules = modules
	r.resources.AddFunc(func() { modules.release(device) })

	if r.pipeline, err = buildPipeline(device, renderPass, modules, triangleLayout(), r.sink); err != nil {
		return err
	}

	allocator := NewMemoryAllocator(device, r.physical, selection.Adapter)
	vertices, err := NewVertexBuffer(device, allocator, model.Triangle())
	if err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	r.vertices = vertices
	r.resources.Add(vertices)

	pool, err := device.CreateCommandPool(selection.Family)
	if err != nil {
		return errors.Wrap(err, "command pool")
	}
	r.resources.AddFunc(func() { device.DestroyCommandPool(pool) })
	command, err := device.AllocateCommandBuffer(pool)
	if err != nil {
		return errors.Wrap(err, "command buffer")
	}

	r.exec = newFrameExecutor(device, sync, command, r.log)
	r.generation = 1
	return nil
}

func (r *Renderer) deviceExtensions() []string {
	extensions := []string{core.SwapchainExtension}
	for _, ext := range r.extensions {
		if ext != core.SwapchainExtension {
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

func triangleLayout() VertexLayout {
	return VertexLayout{
		Bindings:   model.VertexBindingDescriptions(),
		Attributes: model.VertexAttributeDescriptions(),
	}
}

func (r *Renderer) target() frameTarget {
	return frameTarget{
		generation:   r.generation,
		swapchain:    r.chain.swapchain,
		framebuffers: r.chain.framebuffers,
		renderPass:   r.renderPass,
		pipeline:     r.pipeline.pipeline,
		vertices:     r.vertices,
		extent:       r.extent,
	}
}

// RenderFrame draws and presents one frame. It does nothing while the
// last resize left the renderer without a swapchain.
func (r *Renderer) RenderFrame() error {
	if r.stale {
		return nil
	}
	return r.exec.render(r.target())
}

// Resize waits for the device to go idle and rebuilds the swapchain, its
// views and framebuffers, and the pipeline for the new size. The render
// pass and shader modules are kept. When the size is outside the surface
// limits the error matches core.ErrUnsupportedExtent and rendering pauses
// until a later Resize succeeds.
func (r *Renderer) Resize(width, height int) error {
	extent := extentOf(width, height)

	if err := r.device.WaitIdle(); err != nil {
		return err
	}
	r.release()
	r.stale = true

	chain, err := newPresentationChain(r.physical, r.device, r.selection, r.surface, r.renderPass, extent, r.log)
	if err != nil {
		return err
	}
	r.chain = chain

	pipeline, err := buildPipeline(r.device, r.renderPass, r.modules, triangleLayout(), r.sink)
	if err != nil {
		return err
	}
	r.pipeline = pipeline

	r.extent = extent
	r.generation++
	r.stale = false
	r.log.WithFields(log.Fields{
		"width":      extent.Width,
		"height":     extent.Height,
		"generation": r.generation,
	}).Debug("resized")
	return nil
}

// extentOf converts a window size to an extent. Negative sizes become 0,
// which no surface supports.
func extentOf(width, height int) core.Extent {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return core.Extent{Width: uint32(width), Height: uint32(height)}
}

// release destroys the pipeline, then the presentation chain.
func (r *Renderer) release() {
	if r.pipeline != nil {
		r.pipeline.release()
		r.pipeline = nil
	}
	if r.chain != nil {
		r.chain.teardown()
		r.chain = nil
	}
}

// Viewport returns the viewport frames are recorded with. Like Scissor
// and Extent it keeps the last size rendered at while Stale.
func (r *Renderer) Viewport() vk.Viewport {
	return frameTarget{extent: r.extent}.viewport()
}

// Scissor returns the scissor frames are recorded with.
func (r *Renderer) Scissor() vk.Rect2D {
	return frameTarget{extent: r.extent}.scissor()
}

// Extent returns the size of the swapchain images. A failed Resize does
// not change it, check Stale to know whether a swapchain exists.
func (r *Renderer) Extent() core.Extent {
	return r.extent
}

// ImageCount returns the length of the presentation chain, zero while stale.
func (r *Renderer) ImageCount() int {
	if r.chain == nil {
		return 0
	}
	return len(r.chain.images)
}

// Selection returns the chosen adapter.
func (r *Renderer) Selection() Selection {
	return r.selection
}

// State returns the stage of the frame executor.
func (r *Renderer) State() FrameState {
	if r.exec == nil {
		return FrameIdle
	}
	return r.exec.state
}

// Stale tells whether rendering is paused waiting for a usable size.
func (r *Renderer) Stale() bool {
	return r.stale
}

// Destroy waits for the device to go idle and releases everything.
func (r *Renderer) Destroy() {
	if r.device != nil {
		if err := r.device.WaitIdle(); err != nil {
			r.log.WithError(err).Error("wait idle before destroy")
		}
	}
	r.release()
	r.resources.Release()
	r.device = nil
}
