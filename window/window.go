// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window implements core.Window with GLFW and SDL2.
package window

import (
	"github.com/devblok/prism/core"
	"github.com/pkg/errors"
)

var (
	_ core.Window = (*GLFW)(nil)
	_ core.Window = (*SDL)(nil)
)

// New opens a window with the configured backend.
func New(cfg core.WindowConfiguration) (core.Window, error) {
	switch cfg.Backend {
	case core.BackendGLFW:
		return NewGLFW(cfg.Title, cfg.Width, cfg.Height)
	case core.BackendSDL:
		return NewSDL(cfg.Title, cfg.Width, cfg.Height)
	default:
		return nil, errors.Errorf("unknown window backend %q", cfg.Backend)
	}
}
