// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core holds the contracts shared by the engine, its
// collaborators and the command line programs.
package core

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Window describes the windowing system collaborator the renderer
// draws into. The renderer never owns the window lifecycle, it only
// consumes these queries.
type Window interface {
	// ProcAddr returns the vkGetInstanceProcAddr the windowing
	// system loaded, nil when the default loader should be used.
	ProcAddr() unsafe.Pointer

	// RequiredInstanceExtensions returns the platform specific
	// instance extensions needed for presentation.
	RequiredInstanceExtensions() []string

	// CreateSurface creates a presentable surface for the window.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// PresentationSupport asks the windowing system whether the queue
	// family of the device can present to it.
	PresentationSupport(instance vk.Instance, device vk.PhysicalDevice, family uint32) bool

	// FramebufferSize returns the current drawable size in pixels.
	FramebufferSize() (width, height int)

	// OnResize registers the function called with the new framebuffer
	// size whenever it changes.
	OnResize(func(width, height int))

	// ShouldClose reports whether closing was requested.
	ShouldClose() bool

	// PollEvents pumps pending window events once.
	PollEvents()

	// WaitEvents blocks until at least one event arrives, then pumps
	// the pending ones.
	WaitEvents()

	// Destroy destroys the window.
	Destroy()
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (s ShaderType) String() string {
	switch s {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}

// Extent is a size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}
