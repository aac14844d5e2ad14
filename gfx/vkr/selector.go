// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Selection is the adapter chosen for rendering, fixed for the
// lifetime of the engine.
type Selection struct {
	Adapter    vk.PhysicalDevice
	Family     uint32
	Format     vk.SurfaceFormat
	Properties AdapterProperties
}

// SelectDevice picks the first adapter, in enumeration order, that is not
// CPU emulated, reports at least one surface format and has a graphics queue
// family able to present to surface. The lowest index qualifying family
// and the first reported format are chosen. A nil presentation query is
// treated as always supported.
func SelectDevice(physical Physical, surface vk.Surface, presentation PresentationSupport) (Selection, error) {
	adapters, err := physical.Adapters()
	if err != nil {
		return Selection{}, errors.Wrap(err, "enumerate adapters")
	}

	for _, pd := range adapters {
		if sel, reason := evaluate(physical, pd, surface, presentation); reason == "" {
			return sel, nil
		}
	}
	return Selection{}, errors.Wrapf(core.ErrNoSuitableDevice, "%d adapters considered", len(adapters))
}

// Suitable tells whether the adapter passes selection, and why not if it doesn't.
func Suitable(physical Physical, pd vk.PhysicalDevice, surface vk.Surface, presentation PresentationSupport) (bool, string) {
	_, reason := evaluate(physical, pd, surface, presentation)
	if reason != "" {
		return false, reason
	}
	return true, "suitable"
}

func evaluate(physical Physical, pd vk.PhysicalDevice, surface vk.Surface, presentation PresentationSupport) (Selection, string) {
	props := physical.Properties(pd)
	if props.Type == vk.PhysicalDeviceTypeCpu {
		return Selection{}, "CPU emulated adapter"
	}

	formats, err := physical.SurfaceFormats(pd, surface)
	if err != nil {
		return Selection{}, err.Error()
	}
	if len(formats) == 0 {
		return Selection{}, "no surface formats"
	}

	family, reason := presentingFamily(physical, pd, surface, presentation)
	if reason != "" {
		return Selection{}, reason
	}

	return Selection{
		Adapter:    pd,
		Family:     family,
		Format:     formats[0],
		Properties: props,
	}, ""
}

func presentingFamily(physical Physical, pd vk.PhysicalDevice, surface vk.Surface, presentation PresentationSupport) (uint32, string) {
	families := physical.QueueFamilies(pd)
	graphics := 0
	for idx, flags := range families {
		if flags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		graphics++

		family := uint32(idx)
		supported, err := physical.SurfaceSupport(pd, family, surface)
		if err != nil || !supported {
			continue
		}
		if presentation != nil && !presentation(pd, family) {
			continue
		}
		return family, ""
	}

	if graphics == 0 {
		return 0, "no graphics queue family"
	}
	return 0, fmt.Sprintf("none of %d graphics queue families can present", graphics)
}
