// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/devblok/prism/core"
	"github.com/gogpu/naga"
)

// EntryPoint is the entry point name every stage uses.
const EntryPoint = "main"

// Backend turns the source text of one language into a SPIR-V binary.
// The error text of a failed compilation is its diagnostic.
type Backend interface {
	Compile(name string, source []byte, stage core.ShaderType) ([]byte, error)
}

// Glslc compiles GLSL by running the glslc compiler.
type Glslc struct {
	// Path of the glslc executable
	Path string
}

// Compile implements interface
func (g Glslc) Compile(name string, source []byte, stage core.ShaderType) ([]byte, error) {
	var stageName string
	switch stage {
	case core.VertexShaderType:
		stageName = "vert"
	case core.FragmentShaderType:
		stageName = "frag"
	default:
		return nil, fmt.Errorf("unsupported stage %s", stage)
	}

	path := g.Path
	if path == "" {
		path = "glslc"
	}
	cmd := exec.Command(path,
		"-O",
		"-fshader-stage="+stageName,
		"-fentry-point="+EntryPoint,
		"-o", "-",
		"-")
	cmd.Stdin = bytes.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if diag := strings.TrimSpace(stderr.String()); diag != "" {
			return nil, fmt.Errorf("%s", strings.Replace(diag, "<stdin>", name, -1))
		}
		return nil, fmt.Errorf("%s: %s", path, err)
	}
	return stdout.Bytes(), nil
}

// WGSL compiles WGSL in process with naga.
type WGSL struct{}

// Compile implements interface
func (WGSL) Compile(name string, source []byte, stage core.ShaderType) ([]byte, error) {
	return naga.Compile(string(source))
}

// SPIRV passes already compiled binaries through unchanged.
type SPIRV struct{}

// Compile implements interface
func (SPIRV) Compile(name string, source []byte, stage core.ShaderType) ([]byte, error) {
	return source, nil
}
