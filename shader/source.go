// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"io/ioutil"
	"path/filepath"

	"github.com/devblok/prism/utility/kar"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// Source provides shader source files by name.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// Dir reads sources from a directory on disk.
type Dir string

// ReadFile implements interface
func (d Dir) ReadFile(name string) ([]byte, error) {
	return ioutil.ReadFile(filepath.Join(string(d), name))
}

// OpenArchive memory maps a kar archive and serves sources from it.
// The archive must be closed when no longer needed.
func OpenArchive(path string) (*Archive, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrap(err, path)
	}
	return &Archive{archive: ar, close: r.Close}, nil
}

// NewArchive serves sources from an already opened archive.
func NewArchive(ar *kar.Archive) *Archive {
	return &Archive{archive: ar}
}

// Archive reads sources from a kar archive.
type Archive struct {
	archive *kar.Archive
	close   func() error
}

// ReadFile implements interface
func (a *Archive) ReadFile(name string) ([]byte, error) {
	return a.archive.ReadAll(filepath.ToSlash(name))
}

// Close unmaps the archive if it was opened by OpenArchive.
func (a *Archive) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Box reads sources from a packr box, which is embedded
// into the binary when built with packr.
type Box struct {
	box packr.Box
}

// NewBox wraps a packr box.
func NewBox(box packr.Box) Box {
	return Box{box: box}
}

// ReadFile implements interface
func (b Box) ReadFile(name string) ([]byte, error) {
	return b.box.Find(filepath.ToSlash(name))
}
