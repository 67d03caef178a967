package tracer

import (
	_ "embed"
)

// BlitVertexShaderSource is the WGSL source of the presentation vertex stage:
// an oversized fullscreen triangle synthesized from the vertex index, with no
// vertex or index buffers bound.
//
//go:embed assets/blit_vert.wgsl
var BlitVertexShaderSource string

// BlitFragmentShaderSource is the annotated WGSL source of the presentation
// fragment stage: a plain filtered sample of the ray target. It contains @oxy:
// provider annotations and must be run through shader.NewPreProcessor().Process
// before module creation. The CPU functions below mirror its sampling behavior.
//
//go:embed assets/blit_frag.wgsl
var BlitFragmentShaderSource string

// fullscreenPositions and fullscreenUVs are the vertex lookup tables from
// blit_vert.wgsl. The triangle extends past clip space so that after clipping
// the visible region is exactly the full surface, and the UVs interpolate so v
// increases downward, matching the top-left origin of the ray target.
var fullscreenPositions = [3][2]float32{
	{-1, -1},
	{3, -1},
	{-1, 3},
}

var fullscreenUVs = [3][2]float32{
	{0, 1},
	{2, 1},
	{0, -1},
}

// VertexPosition returns the clip-space position of fullscreen triangle vertex i.
//
// Parameters:
//   - i: the vertex index (0, 1, or 2)
//
// Returns:
//   - x, y: the clip-space position
func VertexPosition(i int) (x, y float32) {
	return fullscreenPositions[i][0], fullscreenPositions[i][1]
}

// VertexUV returns the texture coordinate of fullscreen triangle vertex i.
//
// Parameters:
//   - i: the vertex index (0, 1, or 2)
//
// Returns:
//   - u, v: the texture coordinate
func VertexUV(i int) (u, v float32) {
	return fullscreenUVs[i][0], fullscreenUVs[i][1]
}

// InterpolatedUV evaluates the triangle's UV attribute at a clip-space point.
// The attribute is affine across the triangle, so this reproduces exactly what
// the rasterizer hands the fragment stage at that point.
//
// Parameters:
//   - ndcX, ndcY: the clip-space point to evaluate at
//
// Returns:
//   - u, v: the interpolated texture coordinate
func InterpolatedUV(ndcX, ndcY float32) (u, v float32) {
	// Barycentric weights relative to the three table vertices.
	x0, y0 := fullscreenPositions[0][0], fullscreenPositions[0][1]
	x1, y1 := fullscreenPositions[1][0], fullscreenPositions[1][1]
	x2, y2 := fullscreenPositions[2][0], fullscreenPositions[2][1]

	denom := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	w0 := ((y1-y2)*(ndcX-x2) + (x2-x1)*(ndcY-y2)) / denom
	w1 := ((y2-y0)*(ndcX-x2) + (x0-x2)*(ndcY-y2)) / denom
	w2 := 1 - w0 - w1

	u = w0*fullscreenUVs[0][0] + w1*fullscreenUVs[1][0] + w2*fullscreenUVs[2][0]
	v = w0*fullscreenUVs[0][1] + w1*fullscreenUVs[1][1] + w2*fullscreenUVs[2][1]
	return u, v
}

// SampleNearest samples the image at texture coordinate (u, v) with nearest
// filtering and clamp-to-edge addressing.
//
// Parameters:
//   - src: the image to sample
//   - u, v: the texture coordinate, (0,0) top-left to (1,1) bottom-right
//
// Returns:
//   - [4]uint8: the RGBA value of the nearest texel
func SampleNearest(src *Image, u, v float32) [4]uint8 {
	x := int(floor(u * float32(src.Width)))
	y := int(floor(v * float32(src.Height)))

	if x < 0 {
		x = 0
	} else if x >= int(src.Width) {
		x = int(src.Width) - 1
	}
	if y < 0 {
		y = 0
	} else if y >= int(src.Height) {
		y = int(src.Height) - 1
	}
	return src.At(uint32(x), uint32(y))
}

// SampleBilinear samples the image at texture coordinate (u, v) with bilinear
// filtering and clamp-to-edge addressing, matching the presentation sampler.
//
// Parameters:
//   - src: the image to sample
//   - u, v: the texture coordinate, (0,0) top-left to (1,1) bottom-right
//
// Returns:
//   - [4]uint8: the filtered RGBA value
func SampleBilinear(src *Image, u, v float32) [4]uint8 {
	tx := u*float32(src.Width) - 0.5
	ty := v*float32(src.Height) - 0.5

	x0 := int(floor(tx))
	y0 := int(floor(ty))
	fx := tx - float32(x0)
	fy := ty - float32(y0)

	clampX := func(x int) uint32 {
		if x < 0 {
			return 0
		}
		if x >= int(src.Width) {
			return src.Width - 1
		}
		return uint32(x)
	}
	clampY := func(y int) uint32 {
		if y < 0 {
			return 0
		}
		if y >= int(src.Height) {
			return src.Height - 1
		}
		return uint32(y)
	}

	c00 := src.At(clampX(x0), clampY(y0))
	c10 := src.At(clampX(x0+1), clampY(y0))
	c01 := src.At(clampX(x0), clampY(y0+1))
	c11 := src.At(clampX(x0+1), clampY(y0+1))

	var out [4]uint8
	for i := range 4 {
		top := float32(c00[i])*(1-fx) + float32(c10[i])*fx
		bot := float32(c01[i])*(1-fx) + float32(c11[i])*fx
		out[i] = uint8(top*(1-fy) + bot*fy + 0.5)
	}
	return out
}

// Blit rasterizes the fullscreen triangle into dst, sampling src at each
// destination pixel center. When dst and src have identical dimensions every
// pixel center lands exactly on a texel center and the result is an unchanged
// copy of src.
//
// Parameters:
//   - dst: the destination image
//   - src: the source image to sample
func Blit(dst, src *Image) {
	for py := uint32(0); py < dst.Height; py++ {
		ndcY := 1.0 - 2.0*(float32(py)+0.5)/float32(dst.Height)
		for px := uint32(0); px < dst.Width; px++ {
			ndcX := 2.0*(float32(px)+0.5)/float32(dst.Width) - 1.0
			u, v := InterpolatedUV(ndcX, ndcY)
			dst.Set(px, py, SampleBilinear(src, u, v))
		}
	}
}

func floor(v float32) float32 {
	f := float32(int(v))
	if v < 0 && f != v {
		f--
	}
	return f
}
