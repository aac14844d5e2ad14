// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
)

var testFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Unorm,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

type fakeAdapter struct {
	props    AdapterProperties
	families []vk.QueueFlags
	support  []bool
	formats  []vk.SurfaceFormat
}

func gpu(name string, families ...vk.QueueFlags) fakeAdapter {
	support := make([]bool, len(families))
	for idx := range support {
		support[idx] = true
	}
	return fakeAdapter{
		props:    AdapterProperties{Name: name, Type: vk.PhysicalDeviceTypeDiscreteGpu},
		families: families,
		support:  support,
		formats:  []vk.SurfaceFormat{testFormat},
	}
}

var (
	graphicsQueue = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	computeQueue  = vk.QueueFlags(vk.QueueComputeBit)
)

// fakeDriver implements Physical and Device without a GPU. Handles are
// unique pointers, every call is recorded and the fence and command
// buffer rules of a single frame in flight are enforced.
type fakeDriver struct {
	adapters []fakeAdapter
	pds      []vk.PhysicalDevice
	caps     SurfaceCapabilities

	calls []string
	names map[unsafe.Pointer]string
	live  map[unsafe.Pointer]bool
	next  int

	extensions       []string
	swapchainInfo    vk.SwapchainCreateInfo
	renderPassInfo   vk.RenderPassCreateInfo
	pipelineInfo     vk.GraphicsPipelineCreateInfo
	pipelineResult   vk.Result
	viewports        []vk.Viewport
	scissors         []vk.Rect2D
	draws            []uint32
	framebuffersUsed []vk.Framebuffer
	written          []byte

	images         int
	nextImage      uint32
	acquireResults []vk.Result
	presentResults []vk.Result
	failWaitIdle   error

	fenceSignaled bool
	inFlight      bool
}

func newFakeDriver(adapters ...fakeAdapter) *fakeDriver {
	f := &fakeDriver{
		adapters: adapters,
		caps: SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  core.Extent{Width: 1280, Height: 720},
			MinImageExtent: core.Extent{Width: 1, Height: 1},
			MaxImageExtent: core.Extent{Width: 4096, Height: 4096},
			Transform:      vk.SurfaceTransformIdentityBit,
			CompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		names: make(map[unsafe.Pointer]string),
		live:  make(map[unsafe.Pointer]bool),
	}
	for range adapters {
		f.pds = append(f.pds, vk.PhysicalDevice(f.handle("adapter")))
	}
	// adapters are not owned resources
	f.live = make(map[unsafe.Pointer]bool)
	return f
}

func (f *fakeDriver) handle(kind string) unsafe.Pointer {
	p := unsafe.Pointer(new(uint64))
	f.next++
	f.names[p] = fmt.Sprintf("%s%d", kind, f.next)
	f.live[p] = true
	return p
}

func (f *fakeDriver) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeDriver) destroy(call string, p unsafe.Pointer) {
	f.record(call)
	if !f.live[p] {
		panic(call + ": " + f.names[p] + " is not alive")
	}
	delete(f.live, p)
}

// leaked lists handles created and never destroyed.
func (f *fakeDriver) leaked() []string {
	var names []string
	for p := range f.live {
		names = append(names, f.names[p])
	}
	return names
}

// calledSince returns the calls recorded from mark on, filtered by prefix.
func (f *fakeDriver) calledSince(mark int, prefixes ...string) []string {
	var calls []string
	for _, call := range f.calls[mark:] {
		for _, prefix := range prefixes {
			if strings.HasPrefix(call, prefix) {
				calls = append(calls, call)
				break
			}
		}
	}
	return calls
}

func (f *fakeDriver) adapter(pd vk.PhysicalDevice) fakeAdapter {
	for idx, p := range f.pds {
		if p == pd {
			return f.adapters[idx]
		}
	}
	panic("unknown adapter")
}

/* Physical */

func (f *fakeDriver) Adapters() ([]vk.PhysicalDevice, error) {
	return f.pds, nil
}

func (f *fakeDriver) Properties(pd vk.PhysicalDevice) AdapterProperties {
	return f.adapter(pd).props
}

func (f *fakeDriver) QueueFamilies(pd vk.PhysicalDevice) []vk.QueueFlags {
	return f.adapter(pd).families
}

func (f *fakeDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	return f.adapter(pd).formats, nil
}

func (f *fakeDriver) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	return f.adapter(pd).support[family], nil
}

func (f *fakeDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	f.record("SurfaceCapabilities")
	return f.caps, nil
}

func (f *fakeDriver) MemoryTypes(pd vk.PhysicalDevice) []vk.MemoryPropertyFlags {
	return []vk.MemoryPropertyFlags{
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}
}

func (f *fakeDriver) MemoryHeaps(pd vk.PhysicalDevice) []vk.DeviceSize {
	return []vk.DeviceSize{1 << 30, 1 << 28}
}

func (f *fakeDriver) Extensions(pd vk.PhysicalDevice) ([]string, error) {
	return []string{core.SwapchainExtension}, nil
}

func (f *fakeDriver) CreateDevice(pd vk.PhysicalDevice, family uint32, extensions []string) (Device, error) {
	f.record(fmt.Sprintf("CreateDevice %s %d", f.adapter(pd).props.Name, family))
	f.extensions = extensions
	return f, nil
}

/* Device */

func (f *fakeDriver) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	f.record("CreateSwapchain")
	f.swapchainInfo = *info
	f.images = int(info.MinImageCount)
	return vk.Swapchain(f.handle("swapchain")), nil
}

func (f *fakeDriver) SwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	images := make([]vk.Image, f.images)
	for idx := range images {
		// images belong to the swapchain
		p := f.handle("image")
		delete(f.live, p)
		images[idx] = vk.Image(p)
	}
	return images, nil
}

func (f *fakeDriver) DestroySwapchain(swapchain vk.Swapchain) {
	f.destroy("DestroySwapchain", unsafe.Pointer(swapchain))
}

func (f *fakeDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	f.record("CreateImageView")
	return vk.ImageView(f.handle("view")), nil
}

func (f *fakeDriver) DestroyImageView(view vk.ImageView) {
	f.destroy("DestroyImageView", unsafe.Pointer(view))
}

func (f *fakeDriver) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	f.record("CreateRenderPass")
	f.renderPassInfo = *info
	return vk.RenderPass(f.handle("renderpass")), nil
}

func (f *fakeDriver) DestroyRenderPass(renderPass vk.RenderPass) {
	f.destroy("DestroyRenderPass", unsafe.Pointer(renderPass))
}

func (f *fakeDriver) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	f.record("CreateFramebuffer")
	return vk.Framebuffer(f.handle("framebuffer")), nil
}

func (f *fakeDriver) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	f.destroy("DestroyFramebuffer", unsafe.Pointer(framebuffer))
}

func (f *fakeDriver) CreateShaderModule(code []uint32) (vk.ShaderModule, error) {
	f.record("CreateShaderModule")
	if len(code) == 0 {
		return nil, &ResultError{Op: "vk.CreateShaderModule", Result: vk.ErrorInitializationFailed}
	}
	return vk.ShaderModule(f.handle("shader")), nil
}

func (f *fakeDriver) DestroyShaderModule(module vk.ShaderModule) {
	f.destroy("DestroyShaderModule", unsafe.Pointer(module))
}

func (f *fakeDriver) CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	f.record("CreatePipelineLayout")
	return vk.PipelineLayout(f.handle("layout")), nil
}

func (f *fakeDriver) DestroyPipelineLayout(layout vk.PipelineLayout) {
	f.destroy("DestroyPipelineLayout", unsafe.Pointer(layout))
}

func (f *fakeDriver) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	f.record("CreateGraphicsPipeline")
	f.pipelineInfo = *info
	if f.pipelineResult != vk.Success {
		return nil, f.pipelineResult
	}
	return vk.Pipeline(f.handle("pipeline")), vk.Success
}

func (f *fakeDriver) DestroyPipeline(pipeline vk.Pipeline) {
	f.destroy("DestroyPipeline", unsafe.Pointer(pipeline))
}

func (f *fakeDriver) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	f.record("CreateBuffer")
	return vk.Buffer(f.handle("buffer")), nil
}

func (f *fakeDriver) BufferMemoryRequirements(buffer vk.Buffer) MemoryRequirements {
	return MemoryRequirements{Size: 256, Alignment: 16, MemoryTypeBits: 0x3}
}

func (f *fakeDriver) BindBufferMemory(buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	f.record("BindBufferMemory")
	return nil
}

func (f *fakeDriver) DestroyBuffer(buffer vk.Buffer) {
	f.destroy("DestroyBuffer", unsafe.Pointer(buffer))
}

func (f *fakeDriver) AllocateMemory(size vk.DeviceSize, memoryType uint32) (vk.DeviceMemory, error) {
	f.record(fmt.Sprintf("AllocateMemory %d", memoryType))
	return vk.DeviceMemory(f.handle("memory")), nil
}

func (f *fakeDriver) WriteMemory(memory vk.DeviceMemory, offset vk.DeviceSize, data []byte) error {
	f.record("WriteMemory")
	f.written = append([]byte{}, data...)
	return nil
}

func (f *fakeDriver) FreeMemory(memory vk.DeviceMemory) {
	f.destroy("FreeMemory", unsafe.Pointer(memory))
}

func (f *fakeDriver) CreateCommandPool(family uint32) (vk.CommandPool, error) {
	f.record("CreateCommandPool")
	return vk.CommandPool(f.handle("pool")), nil
}

func (f *fakeDriver) AllocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error) {
	p := f.handle("command")
	delete(f.live, p)
	return vk.CommandBuffer(p), nil
}

func (f *fakeDriver) DestroyCommandPool(pool vk.CommandPool) {
	f.destroy("DestroyCommandPool", unsafe.Pointer(pool))
}

func (f *fakeDriver) CreateFence(signaled bool) (vk.Fence, error) {
	f.record("CreateFence")
	f.fenceSignaled = signaled
	return vk.Fence(f.handle("fence")), nil
}

func (f *fakeDriver) WaitForFence(fence vk.Fence) error {
	f.record("WaitForFence")
	if !f.fenceSignaled {
		return errors.New("wait on a fence nothing will signal")
	}
	f.inFlight = false
	return nil
}

func (f *fakeDriver) ResetFence(fence vk.Fence) error {
	f.record("ResetFence")
	if f.inFlight {
		return errors.New("fence reset before the frame retired")
	}
	f.fenceSignaled = false
	return nil
}

func (f *fakeDriver) DestroyFence(fence vk.Fence) {
	f.destroy("DestroyFence", unsafe.Pointer(fence))
}

func (f *fakeDriver) CreateSemaphore() (vk.Semaphore, error) {
	f.record("CreateSemaphore")
	return vk.Semaphore(f.handle("semaphore")), nil
}

func (f *fakeDriver) DestroySemaphore(semaphore vk.Semaphore) {
	f.destroy("DestroySemaphore", unsafe.Pointer(semaphore))
}

func popResult(results *[]vk.Result) vk.Result {
	if len(*results) == 0 {
		return vk.Success
	}
	ret := (*results)[0]
	*results = (*results)[1:]
	return ret
}

func (f *fakeDriver) AcquireNextImage(swapchain vk.Swapchain, signal vk.Semaphore) (uint32, vk.Result) {
	f.record("AcquireNextImage")
	if !f.live[unsafe.Pointer(swapchain)] {
		return 0, vk.ErrorOutOfDate
	}
	index := f.nextImage % uint32(f.images)
	f.nextImage++
	return index, popResult(&f.acquireResults)
}

func (f *fakeDriver) ResetCommandBuffer(cmd vk.CommandBuffer) error {
	f.record("ResetCommandBuffer")
	if f.inFlight {
		return errors.New("command buffer reset while in flight")
	}
	return nil
}

func (f *fakeDriver) BeginCommandBuffer(cmd vk.CommandBuffer) error {
	f.record("BeginCommandBuffer")
	return nil
}

func (f *fakeDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	f.record("CmdBeginRenderPass")
	f.framebuffersUsed = append(f.framebuffersUsed, info.Framebuffer)
}

func (f *fakeDriver) CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline) {
	f.record("CmdBindPipeline")
}

func (f *fakeDriver) CmdSetViewport(cmd vk.CommandBuffer, viewport vk.Viewport) {
	f.record("CmdSetViewport")
	f.viewports = append(f.viewports, viewport)
}

func (f *fakeDriver) CmdSetScissor(cmd vk.CommandBuffer, scissor vk.Rect2D) {
	f.record("CmdSetScissor")
	f.scissors = append(f.scissors, scissor)
}

func (f *fakeDriver) CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	f.record("CmdBindVertexBuffer")
}

func (f *fakeDriver) CmdDraw(cmd vk.CommandBuffer, vertexCount uint32) {
	f.record("CmdDraw")
	f.draws = append(f.draws, vertexCount)
}

func (f *fakeDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	f.record("CmdEndRenderPass")
}

func (f *fakeDriver) EndCommandBuffer(cmd vk.CommandBuffer) error {
	f.record("EndCommandBuffer")
	return nil
}

func (f *fakeDriver) QueueSubmit(info *vk.SubmitInfo, fence vk.Fence) error {
	f.record("QueueSubmit")
	f.inFlight = true
	// the fake GPU finishes at once
	f.fenceSignaled = true
	return nil
}

func (f *fakeDriver) QueuePresent(info *vk.PresentInfo) vk.Result {
	f.record("QueuePresent")
	return popResult(&f.presentResults)
}

func (f *fakeDriver) WaitIdle() error {
	f.record("WaitIdle")
	if f.failWaitIdle != nil {
		return f.failWaitIdle
	}
	f.inFlight = false
	return nil
}

func (f *fakeDriver) Destroy() {
	f.record("DestroyDevice")
}

var testShaders = ShaderCode{
	Vertex:   []uint32{core.SPIRVMagic, 0x00010000, 0, 1, 0},
	Fragment: []uint32{core.SPIRVMagic, 0x00010000, 0, 1, 0},
}

var testSurface = vk.Surface(unsafe.Pointer(new(uint64)))

// viewport and rect hold the plain fields of vk.Viewport and vk.Rect2D,
// which also carry cgo bookkeeping that can't be compared.
type viewport struct {
	X, Y, Width, Height, MinDepth, MaxDepth float32
}

func viewportOf(v vk.Viewport) viewport {
	return viewport{v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth}
}

type rect struct {
	X, Y          int32
	Width, Height uint32
}

func rectOf(r vk.Rect2D) rect {
	return rect{r.Offset.X, r.Offset.Y, r.Extent.Width, r.Extent.Height}
}
