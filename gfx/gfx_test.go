// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"reflect"
	"testing"

	"github.com/devblok/prism/gfx"
)

func TestGroupReleasesInReverse(t *testing.T) {
	var order []string
	var g gfx.Group
	for _, name := range []string{"swapchain", "views", "framebuffers"} {
		name := name
		g.AddFunc(func() { order = append(order, name) })
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 members, got %d", g.Len())
	}

	g.Release()
	expected := []string{"framebuffers", "views", "swapchain"}
	if !reflect.DeepEqual(order, expected) {
		t.Errorf("released in order %v", order)
	}
	if g.Len() != 0 {
		t.Errorf("group not empty after release")
	}

	g.Release()
	if len(order) != 3 {
		t.Error("released members twice")
	}
}

func TestNestedGroup(t *testing.T) {
	var order []string
	var outer, inner gfx.Group
	outer.AddFunc(func() { order = append(order, "device") })
	inner.AddFunc(func() { order = append(order, "chain") })
	outer.Add(&inner)
	outer.AddFunc(func() { order = append(order, "pipeline") })

	outer.Release()
	expected := []string{"pipeline", "chain", "device"}
	if !reflect.DeepEqual(order, expected) {
		t.Errorf("released in order %v", order)
	}
}
