// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers must implement.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// ReleaseFunc adapts a function to Releasable.
type ReleaseFunc func()

// Release implements interface
func (f ReleaseFunc) Release() {
	f()
}

// Group is a set of resources that are created together and torn down
// together. Members are released in the reverse order of addition, so a
// resource added after the one it references is always freed first.
// A released Group is empty and can be filled again.
type Group struct {
	members []Releasable
}

// Add appends a member to the group.
func (g *Group) Add(r Releasable) {
	g.members = append(g.members, r)
}

// AddFunc appends a release function to the group.
func (g *Group) AddFunc(f func()) {
	g.Add(ReleaseFunc(f))
}

// Len returns the number of members not yet released.
func (g *Group) Len() int {
	return len(g.members)
}

// Release implements interface
func (g *Group) Release() {
	for idx := len(g.members) - 1; idx >= 0; idx-- {
		g.members[idx].Release()
		g.members[idx] = nil
	}
	g.members = g.members[:0]
}
