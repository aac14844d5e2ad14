// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/prism/core"
)

func TestSDLEvents(t *testing.T) {
	w := &SDL{}
	var sizes [][2]int
	w.OnResize(func(width, height int) {
		sizes = append(sizes, [2]int{width, height})
	})

	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 640, Data2: 480})
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MOVED, Data1: 10, Data2: 10})
	if len(sizes) != 1 || sizes[0] != [2]int{640, 480} {
		t.Fatalf("unexpected resizes %v", sizes)
	}
	if w.ShouldClose() {
		t.Fatal("closing before any close request")
	}

	w.handle(&sdl.KeyboardEvent{Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}})
	if !w.ShouldClose() {
		t.Fatal("escape did not request close")
	}
}

func TestSDLQuit(t *testing.T) {
	w := &SDL{}
	// no resize callback registered
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 1, Data2: 1})
	w.handle(&sdl.QuitEvent{})
	if !w.ShouldClose() {
		t.Fatal("quit did not request close")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(core.WindowConfiguration{Backend: "wayland"}); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
