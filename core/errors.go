// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
)

// Engine error kinds. Everything the engine returns can be matched
// against one of these with errors.Is, GPU call failures aside.
var (
	ErrNoSuitableDevice  = errors.New("no suitable device")
	ErrUnsupportedExtent = errors.New("unsupported surface extent")
	ErrShaderIO          = errors.New("shader source could not be read")
	ErrShaderCompile     = errors.New("shader compilation failed")
	ErrPipelineCreation  = errors.New("pipeline creation failed")
)

// ShaderIOError is returned when a shader source can't be opened or read fully.
type ShaderIOError struct {
	Path string
	Err  error
}

func (e *ShaderIOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrShaderIO, e.Path, e.Err)
}

// Is matches ErrShaderIO.
func (e *ShaderIOError) Is(target error) bool {
	return target == ErrShaderIO
}

func (e *ShaderIOError) Unwrap() error {
	return e.Err
}

// ShaderCompileError carries the compiler diagnostic of a failed compilation.
type ShaderCompileError struct {
	Path       string
	Stage      ShaderType
	Diagnostic string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %s", ErrShaderCompile, e.Path, e.Stage, e.Diagnostic)
}

// Is matches ErrShaderCompile.
func (e *ShaderCompileError) Is(target error) bool {
	return target == ErrShaderCompile
}

// PipelineCreationError carries what the driver reported about a failed
// pipeline compilation.
type PipelineCreationError struct {
	Diagnostic string
}

func (e *PipelineCreationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPipelineCreation, e.Diagnostic)
}

// Is matches ErrPipelineCreation.
func (e *PipelineCreationError) Is(target error) bool {
	return target == ErrPipelineCreation
}
