//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// minVertexBufferSize is the initial vertex buffer capacity in bytes.
const minVertexBufferSize = 64 << 10

// vertexBuffer is the frame vertex buffer. It grows to the next power of
// two that fits a frame and never shrinks.
type vertexBuffer struct {
	buf      hal.Buffer
	capacity uint64
	scratch  []byte
}

// ensure makes the buffer hold at least size bytes.
func (vb *vertexBuffer) ensure(device hal.Device, size uint64) error {
	if vb.buf != nil && size <= vb.capacity {
		return nil
	}
	capacity := uint64(minVertexBufferSize)
	for capacity < size {
		capacity *= 2
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "easel_vertices",
		Size:  capacity,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create vertex buffer (%d bytes): %w", capacity, err)
	}
	vb.destroy(device)
	vb.buf = buf
	vb.capacity = capacity
	slogger().Debug("gpu: vertex buffer grown", "bytes", capacity)
	return nil
}

// upload writes vertices to the start of the buffer.
func (vb *vertexBuffer) upload(device hal.Device, queue hal.Queue, vertices []batch.Vertex) error {
	if len(vertices) == 0 {
		return nil
	}
	vb.scratch = encodeVertices(vb.scratch[:0], vertices)
	if err := vb.ensure(device, uint64(len(vb.scratch))); err != nil {
		return err
	}
	if err := queue.WriteBuffer(vb.buf, 0, vb.scratch); err != nil {
		return fmt.Errorf("gpu: write vertices: %w", err)
	}
	return nil
}

func (vb *vertexBuffer) destroy(device hal.Device) {
	if vb.buf != nil {
		device.DestroyBuffer(vb.buf)
		vb.buf = nil
		vb.capacity = 0
	}
}

// encodeVertices appends vertices to dst in the layout of batch.Vertex:
// position, color, UV and glyph UV as little-endian float32s.
func encodeVertices(dst []byte, vertices []batch.Vertex) []byte {
	n := len(dst) + len(vertices)*batch.VertexSize
	if cap(dst) < n {
		grown := make([]byte, len(dst), n)
		copy(grown, dst)
		dst = grown
	}
	for i := range vertices {
		v := &vertices[i]
		dst = appendFloats(dst, v.Pos[0], v.Pos[1])
		dst = appendFloats(dst, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		dst = appendFloats(dst, v.UV[0], v.UV[1])
		dst = appendFloats(dst, v.GlyphUV[0], v.GlyphUV[1])
	}
	return dst
}

func appendFloats(dst []byte, fs ...float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
