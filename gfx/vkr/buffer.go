// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/model"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// VertexBuffer is static geometry uploaded once into host visible memory.
type VertexBuffer struct {
	device Device
	buffer vk.Buffer
	memory Memory
	count  uint32
}

// NewVertexBuffer creates a buffer sized for the vertices, binds host
// visible and coherent memory to it and copies the vertices in.
func NewVertexBuffer(device Device, allocator *MemoryAllocator, vertices []model.Vertex) (*VertexBuffer, error) {
	if len(vertices) == 0 {
		return nil, errors.New("no vertices")
	}
	data := model.Bytes(vertices)

	buffer, err := device.CreateBuffer(&vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		SharingMode: vk.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}

	memory, err := allocator.Malloc(device.BufferMemoryRequirements(buffer),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		device.DestroyBuffer(buffer)
		return nil, errors.Wrap(err, "vertex buffer memory")
	}

	vb := &VertexBuffer{
		device: device,
		buffer: buffer,
		memory: memory,
		count:  uint32(len(vertices)),
	}
	if err := device.BindBufferMemory(buffer, memory.Get(), memory.Offset()); err != nil {
		vb.Release()
		return nil, err
	}
	if err := memory.Write(data); err != nil {
		vb.Release()
		return nil, err
	}
	return vb, nil
}

// Buffer returns the buffer handle.
func (vb *VertexBuffer) Buffer() vk.Buffer {
	return vb.buffer
}

// Count returns the number of vertices in the buffer.
func (vb *VertexBuffer) Count() uint32 {
	return vb.count
}

// Release implements gfx.Releasable
func (vb *VertexBuffer) Release() {
	vb.device.DestroyBuffer(vb.buffer)
	vb.memory.Release()
}
