// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// PhysicalDeviceInfo describes an adapter and whether it can render.
type PhysicalDeviceInfo struct {
	Name          string
	Type          string
	ID            uint32
	VendorID      uint32
	DriverVersion uint32
	APIVersion    string
	Memory        vk.DeviceSize
	Extensions    []string
	Invalid       bool

	Suitable bool
	Reason   string
	// Selected marks the adapter SelectDevice would pick
	Selected bool
}

// Report describes every adapter with its selection verdict for surface.
func Report(physical Physical, surface vk.Surface, presentation PresentationSupport) ([]PhysicalDeviceInfo, error) {
	adapters, err := physical.Adapters()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate adapters")
	}

	pdi := make([]PhysicalDeviceInfo, len(adapters))
	selected := false
	for i, pd := range adapters {
		props := physical.Properties(pd)
		pdi[i].Name = props.Name
		pdi[i].Type = deviceTypeName(props.Type)
		pdi[i].ID = props.ID
		pdi[i].VendorID = props.VendorID
		pdi[i].DriverVersion = props.DriverVersion
		pdi[i].APIVersion = versionString(props.APIVersion)

		for _, heap := range physical.MemoryHeaps(pd) {
			pdi[i].Memory += heap
		}
		if pdi[i].Extensions, err = physical.Extensions(pd); err != nil {
			pdi[i].Invalid = true
		}

		pdi[i].Suitable, pdi[i].Reason = Suitable(physical, pd, surface, presentation)
		if pdi[i].Suitable && !selected {
			pdi[i].Selected = true
			selected = true
		}
	}
	return pdi, nil
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
