// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Validation layer and the extension the diagnostic sink listens on
const (
	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
	DebugReportExtension = "VK_EXT_debug_report"
)

// Instance is a Vulkan instance with the optional debug report
// callback attached to it.
type Instance struct {
	instance vk.Instance
	sink     DiagnosticSink

	debug        vk.DebugReportCallback
	debugEnabled bool
}

// NewInstance loads the Vulkan loader through procAddr, or the default
// one when nil, and creates an instance with the given extensions. The
// validation layer is enabled when the sink is.
func NewInstance(procAddr unsafe.Pointer, appName string, extensions []string, sink DiagnosticSink) (*Instance, error) {
	if sink == nil {
		sink = nopSink{}
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	var layers []string
	if sink.Enabled() {
		layers = append(layers, ValidationLayer)
		extensions = append(append([]string{}, extensions...), DebugReportExtension)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(appName),
		PEngineName:        safeString("prism"),
	}
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	inst := &Instance{sink: sink}
	if err := check("vk.CreateInstance", vk.CreateInstance(&instanceInfo, nil, &inst.instance)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(inst.instance); err != nil {
		vk.DestroyInstance(inst.instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	if sink.Enabled() {
		debugInfo := vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
			PfnCallback: debugReportCallback(sink),
		}
		if err := check("vk.CreateDebugReportCallback",
			vk.CreateDebugReportCallback(inst.instance, &debugInfo, nil, &inst.debug)); err != nil {
			vk.DestroyInstance(inst.instance, nil)
			return nil, err
		}
		inst.debugEnabled = true
	}

	return inst, nil
}

// Handle returns the raw instance handle.
func (i *Instance) Handle() vk.Instance {
	return i.instance
}

// Sink returns the diagnostic sink attached to the instance.
func (i *Instance) Sink() DiagnosticSink {
	return i.sink
}

// Physical returns the adapter queries of this instance.
func (i *Instance) Physical() Physical {
	return vulkanPhysical{instance: i.instance}
}

// DestroySurface destroys a surface created for this instance.
func (i *Instance) DestroySurface(surface vk.Surface) {
	vk.DestroySurface(i.instance, surface, nil)
}

// Destroy destroys the debug callback and the instance.
func (i *Instance) Destroy() {
	if i.debugEnabled {
		vk.DestroyDebugReportCallback(i.instance, i.debug, nil)
		i.debugEnabled = false
	}
	vk.DestroyInstance(i.instance, nil)
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}
