//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// drawShaderSource holds every entry point of the renderer: vs_main,
// fs_main for color draws and fs_stencil for the clip pipelines.
//
//go:embed shaders/draw.wgsl
var drawShaderSource string

// Shader entry points.
const (
	vertexEntry  = "vs_main"
	drawEntry    = "fs_main"
	stencilEntry = "fs_stencil"
)

// shaderSource returns the module source handed to the device. With spirv
// set the WGSL is compiled with naga first, for backends that only
// consume SPIR-V.
func shaderSource(spirv bool) (hal.ShaderSource, error) {
	if !spirv {
		return hal.ShaderSource{WGSL: drawShaderSource}, nil
	}
	code, err := naga.Compile(drawShaderSource)
	if err != nil {
		return hal.ShaderSource{}, fmt.Errorf("gpu: compile draw shader: %w", err)
	}
	if len(code)%4 != 0 {
		return hal.ShaderSource{}, fmt.Errorf("gpu: SPIR-V length %d is not a multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return hal.ShaderSource{SPIRV: words}, nil
}
