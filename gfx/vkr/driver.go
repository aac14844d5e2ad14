// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
)

// AdapterProperties is what the renderer needs to know about a physical device.
type AdapterProperties struct {
	Name          string
	Type          vk.PhysicalDeviceType
	ID            uint32
	VendorID      uint32
	DriverVersion uint32
	APIVersion    uint32
}

// SurfaceCapabilities are the surface limits reported for an adapter.
type SurfaceCapabilities struct {
	MinImageCount  uint32
	MaxImageCount  uint32
	CurrentExtent  core.Extent
	MinImageExtent core.Extent
	MaxImageExtent core.Extent
	Transform      vk.SurfaceTransformFlagBits
	CompositeAlpha vk.CompositeAlphaFlags
}

// MemoryRequirements of a buffer.
type MemoryRequirements struct {
	Size           vk.DeviceSize
	Alignment      vk.DeviceSize
	MemoryTypeBits uint32
}

// Physical answers queries about the adapters of one instance
// and creates logical devices on them.
type Physical interface {
	// Adapters returns the physical devices in enumeration order
	Adapters() ([]vk.PhysicalDevice, error)

	Properties(vk.PhysicalDevice) AdapterProperties

	// QueueFamilies returns the capability flags of each queue family, by index
	QueueFamilies(vk.PhysicalDevice) []vk.QueueFlags

	SurfaceFormats(vk.PhysicalDevice, vk.Surface) ([]vk.SurfaceFormat, error)

	// SurfaceSupport is the generic query for presentation from a queue family
	SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)

	SurfaceCapabilities(vk.PhysicalDevice, vk.Surface) (SurfaceCapabilities, error)

	// MemoryTypes returns the property flags of each memory type, by index
	MemoryTypes(vk.PhysicalDevice) []vk.MemoryPropertyFlags

	// MemoryHeaps returns the size of each memory heap, by index
	MemoryHeaps(vk.PhysicalDevice) []vk.DeviceSize

	Extensions(vk.PhysicalDevice) ([]string, error)

	// CreateDevice creates a logical device with one queue of the family
	CreateDevice(pd vk.PhysicalDevice, family uint32, extensions []string) (Device, error)
}

// Device is a logical device and its single queue. Every method
// maps onto one Vulkan call or a short fixed sequence of them.
type Device interface {
	CreateSwapchain(*vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(vk.Swapchain)

	CreateImageView(*vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(vk.ImageView)

	CreateRenderPass(*vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(vk.RenderPass)

	CreateFramebuffer(*vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(vk.Framebuffer)

	CreateShaderModule(code []uint32) (vk.ShaderModule, error)
	DestroyShaderModule(vk.ShaderModule)

	CreatePipelineLayout(*vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(vk.PipelineLayout)

	// CreateGraphicsPipeline returns the raw result so driver
	// failures can be reported with their code
	CreateGraphicsPipeline(*vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result)
	DestroyPipeline(vk.Pipeline)

	CreateBuffer(*vk.BufferCreateInfo) (vk.Buffer, error)
	BufferMemoryRequirements(vk.Buffer) MemoryRequirements
	BindBufferMemory(vk.Buffer, vk.DeviceMemory, vk.DeviceSize) error
	DestroyBuffer(vk.Buffer)

	AllocateMemory(size vk.DeviceSize, memoryType uint32) (vk.DeviceMemory, error)
	// WriteMemory maps the memory, copies data at offset and unmaps it
	WriteMemory(mem vk.DeviceMemory, offset vk.DeviceSize, data []byte) error
	FreeMemory(vk.DeviceMemory)

	CreateCommandPool(family uint32) (vk.CommandPool, error)
	AllocateCommandBuffer(vk.CommandPool) (vk.CommandBuffer, error)
	DestroyCommandPool(vk.CommandPool)

	CreateFence(signaled bool) (vk.Fence, error)
	WaitForFence(vk.Fence) error
	ResetFence(vk.Fence) error
	DestroyFence(vk.Fence)

	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(vk.Semaphore)

	AcquireNextImage(swapchain vk.Swapchain, signal vk.Semaphore) (uint32, vk.Result)

	ResetCommandBuffer(vk.CommandBuffer) error
	BeginCommandBuffer(vk.CommandBuffer) error
	CmdBeginRenderPass(vk.CommandBuffer, *vk.RenderPassBeginInfo)
	CmdBindPipeline(vk.CommandBuffer, vk.Pipeline)
	CmdSetViewport(vk.CommandBuffer, vk.Viewport)
	CmdSetScissor(vk.CommandBuffer, vk.Rect2D)
	CmdBindVertexBuffer(vk.CommandBuffer, vk.Buffer)
	CmdDraw(cmd vk.CommandBuffer, vertexCount uint32)
	CmdEndRenderPass(vk.CommandBuffer)
	EndCommandBuffer(vk.CommandBuffer) error

	QueueSubmit(*vk.SubmitInfo, vk.Fence) error
	QueuePresent(*vk.PresentInfo) vk.Result

	WaitIdle() error

	// Destroy destroys the logical device itself
	Destroy()
}

// PresentationSupport is the windowing system specific query for
// presentation from a queue family of an adapter.
type PresentationSupport func(pd vk.PhysicalDevice, family uint32) bool
