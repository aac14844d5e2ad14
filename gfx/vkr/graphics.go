// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ShaderCompiler turns a shader source into SPIR-V words.
type ShaderCompiler interface {
	Compile(name string, stage core.ShaderType) ([]uint32, error)
}

// Graphics ties a window to a Renderer: it owns the instance, the
// surface and the renderer, and applies resize notifications between
// frames.
type Graphics struct {
	window   core.Window
	instance *Instance
	surface  vk.Surface
	renderer *Renderer
	log      log.FieldLogger

	resized bool
	size    [2]int
}

// NewGraphics creates the instance and surface for window, compiles both
// shaders and builds the renderer at the framebuffer size. Any failure is
// fatal and leaves nothing behind.
func NewGraphics(window core.Window, cfg core.Configuration, compiler ShaderCompiler, logger log.FieldLogger) (*Graphics, error) {
	sink := NewDiagnosticSink(cfg.Renderer.Validation, logger)
	instance, err := NewInstance(window.ProcAddr(), cfg.Window.Title, window.RequiredInstanceExtensions(), sink)
	if err != nil {
		return nil, errors.Wrap(err, "instance")
	}

	surface, err := window.CreateSurface(instance.Handle())
	if err != nil {
		instance.Destroy()
		return nil, errors.Wrap(err, "surface")
	}

	g := &Graphics{
		window:   window,
		instance: instance,
		surface:  surface,
		log:      logger,
	}

	shaders, err := compileShaders(compiler, cfg.Shader)
	if err != nil {
		g.Destroy()
		return nil, err
	}

	handle := instance.Handle()
	g.renderer, err = NewRenderer(instance.Physical(), surface,
		extentOf(window.FramebufferSize()), shaders,
		WithLogger(logger),
		WithSink(sink),
		WithDeviceExtensions(cfg.Renderer.DeviceExtensions...),
		WithPresentationSupport(func(pd vk.PhysicalDevice, family uint32) bool {
			return window.PresentationSupport(handle, pd, family)
		}),
	)
	if err != nil {
		g.Destroy()
		return nil, err
	}

	window.OnResize(func(w, h int) {
		g.resized = true
		g.size = [2]int{w, h}
	})
	return g, nil
}

func compileShaders(compiler ShaderCompiler, cfg core.ShaderConfiguration) (ShaderCode, error) {
	vertex, err := compiler.Compile(cfg.Vertex, core.VertexShaderType)
	if err != nil {
		return ShaderCode{}, err
	}
	fragment, err := compiler.Compile(cfg.Fragment, core.FragmentShaderType)
	if err != nil {
		return ShaderCode{}, err
	}
	return ShaderCode{Vertex: vertex, Fragment: fragment}, nil
}

// Stale tells whether rendering is paused until the window gets a
// size the surface supports.
func (g *Graphics) Stale() bool {
	return g.renderer.Stale()
}

// Renderer returns the renderer drawing into the window.
func (g *Graphics) Renderer() *Renderer {
	return g.renderer
}

// Frame applies a pending resize, then renders one frame. A size the
// surface does not support pauses rendering until the next resize.
func (g *Graphics) Frame() error {
	if g.resized {
		g.resized = false
		if err := g.renderer.Resize(g.size[0], g.size[1]); err != nil {
			if !errors.Is(err, core.ErrUnsupportedExtent) {
				return err
			}
			g.log.WithError(err).Info("rendering paused")
		}
	}
	return g.renderer.RenderFrame()
}

// Destroy waits for the device and releases the renderer, the surface
// and the instance.
func (g *Graphics) Destroy() {
	if g.renderer != nil {
		g.renderer.Destroy()
		g.renderer = nil
	}
	g.instance.DestroySurface(g.surface)
	g.instance.Destroy()
}
