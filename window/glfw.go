// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

/*
// Defined by the glfw library the glfw package builds.
extern int glfwGetPhysicalDevicePresentationSupport(void* instance, void* device, unsigned int queuefamily);

static int presentationSupport(void* instance, void* device, unsigned int family) {
	return glfwGetPhysicalDevicePresentationSupport(instance, device, family);
}
*/
import "C"

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// GLFW is a window without a client API, ready for a Vulkan surface.
// All methods must be called from the main thread.
type GLFW struct {
	window   *glfw.Window
	onResize func(width, height int)
}

// NewGLFW initialises glfw and opens a resizable window.
func NewGLFW(title string, width, height int) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan loader not found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw window")
	}

	w := &GLFW{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	return w, nil
}

// ProcAddr implements core.Window
func (w *GLFW) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// RequiredInstanceExtensions implements core.Window
func (w *GLFW) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// CreateSurface implements core.Window
func (w *GLFW) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(surface), nil
}

// PresentationSupport implements core.Window
func (w *GLFW) PresentationSupport(instance vk.Instance, device vk.PhysicalDevice, family uint32) bool {
	return C.presentationSupport(unsafe.Pointer(instance), unsafe.Pointer(device), C.uint(family)) != 0
}

// FramebufferSize implements core.Window
func (w *GLFW) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// OnResize implements core.Window
func (w *GLFW) OnResize(fn func(width, height int)) {
	w.onResize = fn
}

// ShouldClose implements core.Window
func (w *GLFW) ShouldClose() bool {
	return w.window.ShouldClose()
}

// PollEvents implements core.Window
func (w *GLFW) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents implements core.Window
func (w *GLFW) WaitEvents() {
	glfw.WaitEvents()
}

// Destroy implements core.Window
func (w *GLFW) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}
