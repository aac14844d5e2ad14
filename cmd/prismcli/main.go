// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx/vkr"
	"github.com/devblok/prism/window"
	vk "github.com/devblok/vulkan"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile = flag.String("env", ".env", "Environment file with configuration")
	indent  = flag.Bool("indent", false, "Indent the JSON output")
)

// Prints every adapter with its selection verdict as JSON. Presentation
// is checked against a window of the configured backend.
func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.WithError(err).Error("report failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfiguration(*envFile)
	if err != nil {
		return err
	}
	if err := core.ConfigureLogger(log.StandardLogger(), cfg.Log); err != nil {
		return err
	}

	win, err := window.New(cfg.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	instance, err := vkr.NewInstance(win.ProcAddr(), "prismcli", win.RequiredInstanceExtensions(),
		vkr.NewDiagnosticSink(cfg.Renderer.Validation, log.StandardLogger()))
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surface, err := win.CreateSurface(instance.Handle())
	if err != nil {
		return err
	}
	defer instance.DestroySurface(surface)

	handle := instance.Handle()
	info, err := vkr.Report(instance.Physical(), surface, func(pd vk.PhysicalDevice, family uint32) bool {
		return win.PresentationSupport(handle, pd, family)
	})
	if err != nil {
		return err
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(info, "", "  ")
	} else {
		bytes, err = json.Marshal(info)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", bytes)
	return nil
}
