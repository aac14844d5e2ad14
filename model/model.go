// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model describes the vertex data the renderer draws.
package model

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Vertex is a model vertex
type Vertex struct {
	Pos   glm.Vec2
	Color glm.Vec3
}

// VertexSize is the stride of one Vertex in a vertex buffer.
const VertexSize = unsafe.Sizeof(Vertex{})

var triangle = [...]Vertex{
	{Pos: glm.Vec2{0.0, -0.5}, Color: glm.Vec3{1, 0, 0}},
	{Pos: glm.Vec2{0.5, 0.5}, Color: glm.Vec3{0, 1, 0}},
	{Pos: glm.Vec2{-0.5, 0.5}, Color: glm.Vec3{0, 0, 1}},
}

// Triangle returns the fixed triangle, wound clockwise in
// framebuffer coordinates. The returned slice is a copy.
func Triangle() []Vertex {
	vertices := make([]Vertex, len(triangle))
	copy(vertices, triangle[:])
	return vertices
}

// Bytes returns the raw memory of the vertices, ready to be copied
// into a vertex buffer. It aliases the given slice.
func Bytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexSize))
}

// VertexBindingDescriptions return Vulkan Vertex descriptors
func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(VertexSize),
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributeDescriptions return Vulkan attribute descriptors
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}
