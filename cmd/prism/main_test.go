// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/prism/core"
	vk "github.com/devblok/vulkan"
)

type loopWindow struct {
	polls, waits int
	closeAfter   int
}

func (w *loopWindow) ProcAddr() unsafe.Pointer { return nil }
func (w *loopWindow) RequiredInstanceExtensions() []string { return nil }
func (w *loopWindow) CreateSurface(vk.Instance) (vk.Surface, error) { return nil, nil }
func (w *loopWindow) FramebufferSize() (int, int) { return 0, 0 }
func (w *loopWindow) OnResize(func(width, height int)) {}
func (w *loopWindow) ShouldClose() bool { return w.polls+w.waits >= w.closeAfter }
func (w *loopWindow) PollEvents() { w.polls++ }
func (w *loopWindow) WaitEvents() { w.waits++ }
func (w *loopWindow) Destroy() {}
func (w *loopWindow) PresentationSupport(vk.Instance, vk.PhysicalDevice, uint32) bool {
	return true
}

// loopGraphics is stale for the first frames, as a minimized window is.
type loopGraphics struct {
	frames, staleFrames int
	err                 error
}

func (g *loopGraphics) Frame() error {
	g.frames++
	return g.err
}

func (g *loopGraphics) Stale() bool {
	return g.frames <= g.staleFrames
}

func newLoopTime() *core.Time {
	logger, _ := test.NewNullLogger()
	return core.NewTime(core.TimeConfiguration{}, logger)
}

func TestLoopWaitsWhileStale(t *testing.T) {
	win := &loopWindow{closeAfter: 5}
	graphics := &loopGraphics{staleFrames: 2}

	if err := loop(win, graphics, newLoopTime()); err != nil {
		t.Fatal(err)
	}
	if win.waits != 2 || win.polls != 3 {
		t.Errorf("expected 2 waits and 3 polls, got %d and %d", win.waits, win.polls)
	}
	if graphics.frames != 5 {
		t.Errorf("expected 5 frames, got %d", graphics.frames)
	}
}

func TestLoopStopsOnError(t *testing.T) {
	win := &loopWindow{closeAfter: 10}
	graphics := &loopGraphics{err: errors.New("device lost")}

	err := loop(win, graphics, newLoopTime())
	if err == nil || err.Error() != "frame: device lost" {
		t.Fatalf("unexpected error %v", err)
	}
	if graphics.frames != 1 || win.polls+win.waits != 0 {
		t.Errorf("loop went on after the error")
	}
}

var _ core.Window = (*loopWindow)(nil)
