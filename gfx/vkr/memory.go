// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
)

// Memory defines a usable memory region.
type Memory struct {
	len, offset vk.DeviceSize
	device      Device
	memory      vk.DeviceMemory
}

// Len returns the length of assigned memory.
func (m *Memory) Len() vk.DeviceSize {
	return m.len
}

// Offset returns the start location of assigned memory.
func (m *Memory) Offset() vk.DeviceSize {
	return m.offset
}

// Get returns the vulkan memory handle.
func (m *Memory) Get() vk.DeviceMemory {
	return m.memory
}

// Write copies data into the region. The memory must be host visible.
func (m *Memory) Write(data []byte) error {
	if vk.DeviceSize(len(data)) > m.len {
		return fmt.Errorf("write of %d bytes into %d byte region", len(data), m.len)
	}
	return m.device.WriteMemory(m.memory, m.offset, data)
}

// Release frees the memory.
func (m *Memory) Release() {
	m.device.FreeMemory(m.memory)
}

// NewMemoryAllocator creates a new memory allocator. Allocates for the logical device,
// reads memory properties of the physical device to influence allocation.
func NewMemoryAllocator(device Device, physical Physical, pd vk.PhysicalDevice) *MemoryAllocator {
	return &MemoryAllocator{
		device:      device,
		memoryTypes: physical.MemoryTypes(pd),
	}
}

// MemoryAllocator is responsible returning usable
// memory for any resources that may need it.
type MemoryAllocator struct {
	device      Device
	memoryTypes []vk.MemoryPropertyFlags
}

// Malloc returns a usable memory chunk ready for use.
func (ma *MemoryAllocator) Malloc(req MemoryRequirements, prop vk.MemoryPropertyFlags) (Memory, error) {
	memTypeIdx, err := ma.findMemoryType(req.MemoryTypeBits, prop)
	if err != nil {
		return Memory{}, err
	}

	memory, err := ma.device.AllocateMemory(req.Size, memTypeIdx)
	if err != nil {
		return Memory{}, err
	}

	return Memory{
		offset: 0,
		len:    req.Size,
		device: ma.device,
		memory: memory,
	}, nil
}

func (ma *MemoryAllocator) findMemoryType(filter uint32, prop vk.MemoryPropertyFlags) (uint32, error) {
	for idx, flags := range ma.memoryTypes {
		if filter&(1<<uint(idx)) != 0 && flags&prop == prop {
			return uint32(idx), nil
		}
	}
	return 0, fmt.Errorf("no memory type with properties %#x in filter %#b", prop, filter)
}
