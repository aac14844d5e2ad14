// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader loads shader sources and compiles them into SPIR-V
// words ready for shader module creation. The language is picked by
// file extension: GLSL (.vert, .frag, .glsl) goes through glslc, WGSL
// (.wgsl) through naga, and .spv files are taken as they are.
package shader

import (
	"path/filepath"
	"strings"

	"github.com/devblok/prism/core"
	log "github.com/sirupsen/logrus"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithBackend uses b for files with the given extension.
func WithBackend(ext string, b Backend) Option {
	return func(c *Compiler) {
		c.backends[strings.ToLower(ext)] = b
	}
}

// WithLogger sets the logger, the standard logger is used otherwise.
func WithLogger(logger log.FieldLogger) Option {
	return func(c *Compiler) {
		c.log = logger
	}
}

// NewCompiler creates a Compiler reading from source. GLSL is compiled
// with the glslc found at glslcPath, or on PATH when empty.
func NewCompiler(source Source, glslcPath string, opts ...Option) *Compiler {
	glsl := Glslc{Path: glslcPath}
	c := &Compiler{
		source: source,
		backends: map[string]Backend{
			".vert": glsl,
			".frag": glsl,
			".glsl": glsl,
			".wgsl": WGSL{},
			".spv":  SPIRV{},
		},
		log: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compiler is the shader compiler adapter.
type Compiler struct {
	source   Source
	backends map[string]Backend
	log      log.FieldLogger
}

// Compile reads the named source and compiles it for the stage.
// Fails with core.ShaderIOError when the source can't be read and
// with core.ShaderCompileError carrying the diagnostic otherwise.
func (c *Compiler) Compile(name string, stage core.ShaderType) ([]uint32, error) {
	source, err := c.source.ReadFile(name)
	if err != nil {
		return nil, &core.ShaderIOError{Path: name, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(name))
	backend, ok := c.backends[ext]
	if !ok {
		return nil, &core.ShaderCompileError{Path: name, Stage: stage, Diagnostic: "no compiler for " + ext + " files"}
	}

	binary, err := backend.Compile(name, source, stage)
	if err != nil {
		return nil, &core.ShaderCompileError{Path: name, Stage: stage, Diagnostic: err.Error()}
	}

	words, err := core.SPIRVWords(binary)
	if err != nil {
		return nil, &core.ShaderCompileError{Path: name, Stage: stage, Diagnostic: err.Error()}
	}

	c.log.WithFields(log.Fields{
		"shader": name,
		"stage":  stage,
		"words":  len(words),
	}).Debug("shader compiled")
	return words, nil
}
