// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// SwapchainExtension is always requested from the logical device.
const SwapchainExtension = "VK_KHR_swapchain"

// Shader source kinds
const (
	ShaderSourceDirectory = "dir"
	ShaderSourceArchive   = "archive"
	ShaderSourceEmbedded  = "embedded"
)

// Window backends
const (
	BackendGLFW = "glfw"
	BackendSDL  = "sdl"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Window   WindowConfiguration
	Renderer RendererConfiguration
	Shader   ShaderConfiguration
	Time     TimeConfiguration
	Log      LogConfiguration
}

// WindowConfiguration selects and sizes the window.
type WindowConfiguration struct {
	Backend string
	Title   string
	Width   int
	Height  int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	// Validation enables the validation layer and the diagnostic sink
	Validation       bool
	DeviceExtensions []string
}

// ShaderConfiguration tells where shader sources come from
// and how GLSL is compiled.
type ShaderConfiguration struct {
	Source    string
	Directory string
	Archive   string
	Vertex    string
	Fragment  string
	Glslc     string
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// StatsInterval is the number of seconds between frame count
	// reports, 0 disables them
	StatsInterval int
}

// LogConfiguration configures the root logger.
type LogConfiguration struct {
	Level  string
	Format string
}

// DefaultConfiguration returns the configuration used when
// nothing is set in the environment.
func DefaultConfiguration() Configuration {
	return Configuration{
		Window: WindowConfiguration{
			Backend: BackendGLFW,
			Title:   "vulkan_triangle",
			Width:   1280,
			Height:  720,
		},
		Renderer: RendererConfiguration{
			DeviceExtensions: []string{SwapchainExtension},
		},
		Shader: ShaderConfiguration{
			Source:    ShaderSourceDirectory,
			Directory: "shaders",
			Archive:   "shaders.kar",
			Vertex:    "triangle.vert",
			Fragment:  "triangle.frag",
			Glslc:     "glslc",
		},
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfiguration loads the given env files, skipping the ones that
// don't exist, and reads the configuration from the environment.
// Values already present in the environment win over the files.
func LoadConfiguration(files ...string) (Configuration, error) {
	var loaded bool
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Configuration{}, errors.Wrapf(err, "load %s", f)
		}
		loaded = true
	}
	if loaded {
		envy.Reload()
	}

	cfg := DefaultConfiguration()
	r := envReader{}

	cfg.Window.Backend = strings.ToLower(envy.Get("PRISM_WINDOW_BACKEND", cfg.Window.Backend))
	cfg.Window.Title = envy.Get("PRISM_WINDOW_TITLE", cfg.Window.Title)
	cfg.Window.Width = r.int("PRISM_WINDOW_WIDTH", cfg.Window.Width)
	cfg.Window.Height = r.int("PRISM_WINDOW_HEIGHT", cfg.Window.Height)

	cfg.Renderer.Validation = r.bool("PRISM_VALIDATION", cfg.Renderer.Validation)
	cfg.Renderer.DeviceExtensions = deviceExtensions(envy.Get("PRISM_DEVICE_EXTENSIONS", ""))

	cfg.Shader.Source = strings.ToLower(envy.Get("PRISM_SHADER_SOURCE", cfg.Shader.Source))
	cfg.Shader.Directory = envy.Get("PRISM_SHADER_DIR", cfg.Shader.Directory)
	cfg.Shader.Archive = envy.Get("PRISM_SHADER_ARCHIVE", cfg.Shader.Archive)
	cfg.Shader.Vertex = envy.Get("PRISM_VERTEX_SHADER", cfg.Shader.Vertex)
	cfg.Shader.Fragment = envy.Get("PRISM_FRAGMENT_SHADER", cfg.Shader.Fragment)
	cfg.Shader.Glslc = envy.Get("PRISM_GLSLC", cfg.Shader.Glslc)

	cfg.Time.FramesPerSecond = r.int("PRISM_FPS", cfg.Time.FramesPerSecond)
	cfg.Time.StatsInterval = r.int("PRISM_STATS_INTERVAL", cfg.Time.StatsInterval)

	cfg.Log.Level = envy.Get("PRISM_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envy.Get("PRISM_LOG_FORMAT", cfg.Log.Format)

	if r.err != nil {
		return Configuration{}, r.err
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that can't be checked while parsing.
func (c Configuration) Validate() error {
	switch c.Window.Backend {
	case BackendGLFW, BackendSDL:
	default:
		return errors.Errorf("unknown window backend %q", c.Window.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	}
	switch c.Shader.Source {
	case ShaderSourceDirectory, ShaderSourceArchive, ShaderSourceEmbedded:
	default:
		return errors.Errorf("unknown shader source %q", c.Shader.Source)
	}
	if c.Time.FramesPerSecond < 0 || c.Time.StatsInterval < 0 {
		return errors.New("time settings can't be negative")
	}
	return nil
}

func deviceExtensions(list string) []string {
	exts := []string{SwapchainExtension}
	for _, e := range strings.Split(list, ",") {
		e = strings.TrimSpace(e)
		if e == "" || e == SwapchainExtension {
			continue
		}
		exts = append(exts, e)
	}
	return exts
}

// envReader keeps the first parse error so every key can be read in a row.
type envReader struct {
	err error
}

func (r *envReader) int(key string, def int) int {
	v := envy.Get(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && r.err == nil {
		r.err = errors.Wrapf(err, "%s", key)
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	v := envy.Get(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && r.err == nil {
		r.err = errors.Wrapf(err, "%s", key)
	}
	return b
}
