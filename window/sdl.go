// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL is a Vulkan capable SDL2 window. Closing the window or pressing
// escape requests close.
type SDL struct {
	window   *sdl.Window
	onResize func(width, height int)
	closing  bool
}

// NewSDL initialises the SDL video subsystem, loads the Vulkan library
// and opens a resizable window.
func NewSDL(title string, width, height int) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl init")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl vulkan library")
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl window")
	}
	return &SDL{window: window}, nil
}

// ProcAddr implements core.Window
func (w *SDL) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// RequiredInstanceExtensions implements core.Window
func (w *SDL) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// CreateSurface implements core.Window
func (w *SDL) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}

// PresentationSupport implements core.Window. SDL2 has no such query,
// the surface support query decides alone.
func (w *SDL) PresentationSupport(instance vk.Instance, device vk.PhysicalDevice, family uint32) bool {
	return true
}

// FramebufferSize implements core.Window
func (w *SDL) FramebufferSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

// OnResize implements core.Window
func (w *SDL) OnResize(fn func(width, height int)) {
	w.onResize = fn
}

// ShouldClose implements core.Window
func (w *SDL) ShouldClose() bool {
	return w.closing
}

// PollEvents implements core.Window
func (w *SDL) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// WaitEvents implements core.Window
func (w *SDL) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *SDL) handle(event sdl.Event) {
	switch et := event.(type) {
	case *sdl.QuitEvent:
		w.closing = true
	case *sdl.KeyboardEvent:
		if et.Keysym.Sym == sdl.K_ESCAPE {
			w.closing = true
		}
	case *sdl.WindowEvent:
		if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED && w.onResize != nil {
			w.onResize(int(et.Data1), int(et.Data2))
		}
	}
}

// Destroy implements core.Window
func (w *SDL) Destroy() {
	w.window.Destroy()
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
