// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx/vkr"
	"github.com/devblok/prism/shader"
	"github.com/devblok/prism/window"
)

func init() {
	runtime.LockOSThread()
}

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	envFile      = flag.String("env", ".env", "Environment file with configuration")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.WithError(err).Error("fatal")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfiguration(*envFile)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	if *debug {
		cfg.Renderer.Validation = true
	}
	logger := log.StandardLogger()
	if err := core.ConfigureLogger(logger, cfg.Log); err != nil {
		return err
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	source, closeSource, err := shaderSource(cfg.Shader)
	if err != nil {
		return err
	}
	defer closeSource()

	win, err := window.New(cfg.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	compiler := shader.NewCompiler(source, cfg.Shader.Glslc, shader.WithLogger(logger))
	graphics, err := vkr.NewGraphics(win, cfg, compiler, logger)
	if err != nil {
		return err
	}
	defer graphics.Destroy()

	timeService := core.NewTime(cfg.Time, logger)
	defer timeService.Stop()

	if err := loop(win, graphics, timeService); err != nil {
		return err
	}
	logger.Info("window closed")

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// frameRenderer is the part of vkr.Graphics the frame loop drives.
type frameRenderer interface {
	Frame() error
	Stale() bool
}

// loop renders until the window asks to close. While rendering is paused
// it blocks on window events rather than pacing empty frames.
func loop(win core.Window, graphics frameRenderer, timeService *core.Time) error {
	for !win.ShouldClose() {
		timeService.Pace()
		if err := graphics.Frame(); err != nil {
			return errors.Wrap(err, "frame")
		}
		if graphics.Stale() {
			win.WaitEvents()
			continue
		}
		timeService.FrameDone()
		win.PollEvents()
	}
	return nil
}

// shaderSource opens the configured shader source. The returned
// function closes it.
func shaderSource(cfg core.ShaderConfiguration) (shader.Source, func(), error) {
	switch cfg.Source {
	case core.ShaderSourceArchive:
		ar, err := shader.OpenArchive(cfg.Archive)
		if err != nil {
			return nil, nil, errors.Wrap(err, "shader archive")
		}
		return ar, func() { ar.Close() }, nil
	case core.ShaderSourceEmbedded:
		return shader.NewBox(packr.NewBox("../../shaders")), func() {}, nil
	default:
		return shader.Dir(cfg.Directory), func() {}, nil
	}
}
