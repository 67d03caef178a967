package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPURayCameraUniformSource is the canonical WGSL definition of the RayCameraUniform struct.
// Matches GPURayCameraUniform layout exactly (144 bytes, std140 aligned).
//
//go:embed assets/ray_camera_uniform.wgsl
var GPURayCameraUniformSource string

// GPURayCameraUniform is the GPU-aligned representation of the ray camera uniform buffer.
// Matches the WGSL RayCameraUniform struct layout exactly (see GPURayCameraUniformSource).
// Size: 144 bytes (std140 / WGSL aligned).
type GPURayCameraUniform struct {
	ViewInverse [16]float32 // offset   0: inverse view matrix (mat4x4<f32>)
	ProjInverse [16]float32 // offset  64: inverse projection matrix (mat4x4<f32>)
	Params      [4]float32  // offset 128: (width, height, time, pad) (vec4<f32>)
}

// Size returns the size of the GPURayCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPURayCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURayCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPURayCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewInverse[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.ProjInverse[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.Params[i]))
	}
	return buf
}
