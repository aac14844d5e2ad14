// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"math"
	"unsafe"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
)

func extent(e vk.Extent2D) core.Extent {
	e.Deref()
	return core.Extent{Width: e.Width, Height: e.Height}
}

// vulkanPhysical implements Physical with the vk bindings.
type vulkanPhysical struct {
	instance vk.Instance
}

// Adapters implements interface
func (v vulkanPhysical) Adapters() ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := check("vk.EnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(v.instance, &deviceCount, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, deviceCount)
	if err := check("vk.EnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(v.instance, &deviceCount, devices)); err != nil {
		return nil, err
	}
	return devices[:deviceCount], nil
}

// Properties implements interface
func (v vulkanPhysical) Properties(pd vk.PhysicalDevice) AdapterProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &props)
	props.Deref()
	return AdapterProperties{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          props.DeviceType,
		ID:            props.DeviceID,
		VendorID:      props.VendorID,
		DriverVersion: props.DriverVersion,
		APIVersion:    props.ApiVersion,
	}
}

// QueueFamilies implements interface
func (v vulkanPhysical) QueueFamilies(pd vk.PhysicalDevice) []vk.QueueFlags {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	flags := make([]vk.QueueFlags, count)
	for idx := range props[:count] {
		props[idx].Deref()
		flags[idx] = props[idx].QueueFlags
	}
	return flags
}

// SurfaceFormats implements interface
func (v vulkanPhysical) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := check("vk.GetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := check("vk.GetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, formats)); err != nil {
		return nil, err
	}
	for idx := range formats[:count] {
		formats[idx].Deref()
	}
	return formats[:count], nil
}

// SurfaceSupport implements interface
func (v vulkanPhysical) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := check("vk.GetPhysicalDeviceSurfaceSupport", vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &supported)); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

// SurfaceCapabilities implements interface
func (v vulkanPhysical) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := check("vk.GetPhysicalDeviceSurfaceCapabilities", vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps)); err != nil {
		return SurfaceCapabilities{}, err
	}
	caps.Deref()
	return SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  extent(caps.CurrentExtent),
		MinImageExtent: extent(caps.MinImageExtent),
		MaxImageExtent: extent(caps.MaxImageExtent),
		Transform:      caps.CurrentTransform,
		CompositeAlpha: caps.SupportedCompositeAlpha,
	}, nil
}

// MemoryTypes implements interface
func (v vulkanPhysical) MemoryTypes(pd vk.PhysicalDevice) []vk.MemoryPropertyFlags {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memProperties)
	memProperties.Deref()

	types := make([]vk.MemoryPropertyFlags, memProperties.MemoryTypeCount)
	for idx := range types {
		memProperties.MemoryTypes[idx].Deref()
		types[idx] = memProperties.MemoryTypes[idx].PropertyFlags
	}
	return types
}

// MemoryHeaps implements interface
func (v vulkanPhysical) MemoryHeaps(pd vk.PhysicalDevice) []vk.DeviceSize {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memProperties)
	memProperties.Deref()

	heaps := make([]vk.DeviceSize, memProperties.MemoryHeapCount)
	for idx := range heaps {
		memProperties.MemoryHeaps[idx].Deref()
		heaps[idx] = memProperties.MemoryHeaps[idx].Size
	}
	return heaps
}

// Extensions implements interface
func (v vulkanPhysical) Extensions(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := check("vk.EnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := check("vk.EnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range props[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// CreateDevice implements interface
func (v vulkanPhysical) CreateDevice(pd vk.PhysicalDevice, family uint32, extensions []string) (Device, error) {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var device vk.Device
	if err := check("vk.CreateDevice", vk.CreateDevice(pd, &dci, nil, &device)); err != nil {
		return nil, err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)

	return &vulkanDevice{
		device: device,
		queue:  queue,
	}, nil
}

// vulkanDevice implements Device with the vk bindings.
type vulkanDevice struct {
	device vk.Device
	queue  vk.Queue
}

/* Swapchain */

func (v *vulkanDevice) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := check("vk.CreateSwapchain", vk.CreateSwapchain(v.device, info, nil, &swapchain)); err != nil {
		return nil, err
	}
	return swapchain, nil
}

func (v *vulkanDevice) SwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	var numImages uint32
	if err := check("vk.GetSwapchainImages", vk.GetSwapchainImages(v.device, swapchain, &numImages, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, numImages)
	if err := check("vk.GetSwapchainImages", vk.GetSwapchainImages(v.device, swapchain, &numImages, images)); err != nil {
		return nil, err
	}
	return images[:numImages], nil
}

func (v *vulkanDevice) DestroySwapchain(swapchain vk.Swapchain) {
	vk.DestroySwapchain(v.device, swapchain, nil)
}

func (v *vulkanDevice) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := check("vk.CreateImageView", vk.CreateImageView(v.device, info, nil, &view)); err != nil {
		return nil, err
	}
	return view, nil
}

func (v *vulkanDevice) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(v.device, view, nil)
}

func (v *vulkanDevice) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if err := check("vk.CreateRenderPass", vk.CreateRenderPass(v.device, info, nil, &renderPass)); err != nil {
		return nil, err
	}
	return renderPass, nil
}

func (v *vulkanDevice) DestroyRenderPass(renderPass vk.RenderPass) {
	vk.DestroyRenderPass(v.device, renderPass, nil)
}

func (v *vulkanDevice) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	if err := check("vk.CreateFramebuffer", vk.CreateFramebuffer(v.device, info, nil, &framebuffer)); err != nil {
		return nil, err
	}
	return framebuffer, nil
}

func (v *vulkanDevice) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(v.device, framebuffer, nil)
}

/* Pipeline */

func (v *vulkanDevice) CreateShaderModule(code []uint32) (vk.ShaderModule, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := check("vk.CreateShaderModule", vk.CreateShaderModule(v.device, &smci, nil, &module)); err != nil {
		return nil, err
	}
	return module, nil
}

func (v *vulkanDevice) DestroyShaderModule(module vk.ShaderModule) {
	vk.DestroyShaderModule(v.device, module, nil)
}

func (v *vulkanDevice) CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := check("vk.CreatePipelineLayout", vk.CreatePipelineLayout(v.device, info, nil, &layout)); err != nil {
		return nil, err
	}
	return layout, nil
}

func (v *vulkanDevice) DestroyPipelineLayout(layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(v.device, layout, nil)
}

func (v *vulkanDevice) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(v.device, nil, 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	return pipelines[0], ret
}

func (v *vulkanDevice) DestroyPipeline(pipeline vk.Pipeline) {
	vk.DestroyPipeline(v.device, pipeline, nil)
}

/* Memory */

func (v *vulkanDevice) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buffer vk.Buffer
	if err := check("vk.CreateBuffer", vk.CreateBuffer(v.device, info, nil, &buffer)); err != nil {
		return nil, err
	}
	return buffer, nil
}

func (v *vulkanDevice) BufferMemoryRequirements(buffer vk.Buffer) MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(v.device, buffer, &req)
	req.Deref()
	return MemoryRequirements{
		Size:           req.Size,
		Alignment:      req.Alignment,
		MemoryTypeBits: req.MemoryTypeBits,
	}
}

func (v *vulkanDevice) BindBufferMemory(buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return check("vk.BindBufferMemory", vk.BindBufferMemory(v.device, buffer, memory, offset))
}

func (v *vulkanDevice) DestroyBuffer(buffer vk.Buffer) {
	vk.DestroyBuffer(v.device, buffer, nil)
}

func (v *vulkanDevice) AllocateMemory(size vk.DeviceSize, memoryType uint32) (vk.DeviceMemory, error) {
	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if err := check("vk.AllocateMemory", vk.AllocateMemory(v.device, &mai, nil, &memory)); err != nil {
		return nil, err
	}
	return memory, nil
}

func (v *vulkanDevice) WriteMemory(memory vk.DeviceMemory, offset vk.DeviceSize, data []byte) error {
	var mapped unsafe.Pointer
	if err := check("vk.MapMemory", vk.MapMemory(v.device, memory, offset, vk.DeviceSize(len(data)), 0, &mapped)); err != nil {
		return err
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(v.device, memory)
	return nil
}

func (v *vulkanDevice) FreeMemory(memory vk.DeviceMemory) {
	vk.FreeMemory(v.device, memory, nil)
}

/* Commands */

func (v *vulkanDevice) CreateCommandPool(family uint32) (vk.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var commandPool vk.CommandPool
	if err := check("vk.CreateCommandPool", vk.CreateCommandPool(v.device, &cpci, nil, &commandPool)); err != nil {
		return nil, err
	}
	return commandPool, nil
}

func (v *vulkanDevice) AllocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := check("vk.AllocateCommandBuffers", vk.AllocateCommandBuffers(v.device, &cbai, commandBuffers)); err != nil {
		return nil, err
	}
	return commandBuffers[0], nil
}

func (v *vulkanDevice) DestroyCommandPool(pool vk.CommandPool) {
	vk.DestroyCommandPool(v.device, pool, nil)
}

func (v *vulkanDevice) ResetCommandBuffer(cmd vk.CommandBuffer) error {
	return check("vk.ResetCommandBuffer", vk.ResetCommandBuffer(cmd, 0))
}

func (v *vulkanDevice) BeginCommandBuffer(cmd vk.CommandBuffer) error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return check("vk.BeginCommandBuffer", vk.BeginCommandBuffer(cmd, &cbbi))
}

func (v *vulkanDevice) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cmd, info, vk.SubpassContentsInline)
}

func (v *vulkanDevice) CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
}

func (v *vulkanDevice) CmdSetViewport(cmd vk.CommandBuffer, viewport vk.Viewport) {
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{viewport})
}

func (v *vulkanDevice) CmdSetScissor(cmd vk.CommandBuffer, scissor vk.Rect2D) {
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{scissor})
}

func (v *vulkanDevice) CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
}

func (v *vulkanDevice) CmdDraw(cmd vk.CommandBuffer, vertexCount uint32) {
	vk.CmdDraw(cmd, vertexCount, 1, 0, 0)
}

func (v *vulkanDevice) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (v *vulkanDevice) EndCommandBuffer(cmd vk.CommandBuffer) error {
	return check("vk.EndCommandBuffer", vk.EndCommandBuffer(cmd))
}

/* Synchronization */

func (v *vulkanDevice) CreateFence(signaled bool) (vk.Fence, error) {
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fci.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := check("vk.CreateFence", vk.CreateFence(v.device, &fci, nil, &fence)); err != nil {
		return nil, err
	}
	return fence, nil
}

func (v *vulkanDevice) WaitForFence(fence vk.Fence) error {
	return check("vk.WaitForFences", vk.WaitForFences(v.device, 1, []vk.Fence{fence}, vk.True, math.MaxUint64))
}

func (v *vulkanDevice) ResetFence(fence vk.Fence) error {
	return check("vk.ResetFences", vk.ResetFences(v.device, 1, []vk.Fence{fence}))
}

func (v *vulkanDevice) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(v.device, fence, nil)
}

func (v *vulkanDevice) CreateSemaphore() (vk.Semaphore, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if err := check("vk.CreateSemaphore", vk.CreateSemaphore(v.device, &sci, nil, &semaphore)); err != nil {
		return nil, err
	}
	return semaphore, nil
}

func (v *vulkanDevice) DestroySemaphore(semaphore vk.Semaphore) {
	vk.DestroySemaphore(v.device, semaphore, nil)
}

/* Queue */

func (v *vulkanDevice) AcquireNextImage(swapchain vk.Swapchain, signal vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	ret := vk.AcquireNextImage(v.device, swapchain, math.MaxUint64, signal, nil, &imageIndex)
	return imageIndex, ret
}

func (v *vulkanDevice) QueueSubmit(info *vk.SubmitInfo, fence vk.Fence) error {
	return check("vk.QueueSubmit", vk.QueueSubmit(v.queue, 1, []vk.SubmitInfo{*info}, fence))
}

func (v *vulkanDevice) QueuePresent(info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(v.queue, info)
}

func (v *vulkanDevice) WaitIdle() error {
	return check("vk.DeviceWaitIdle", vk.DeviceWaitIdle(v.device))
}

func (v *vulkanDevice) Destroy() {
	vk.DestroyDevice(v.device, nil)
}
