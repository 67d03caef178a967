package tracer

// Image is a CPU-side rgba8unorm pixel buffer with the same layout as the GPU
// storage target: row-major, top-left origin, 4 bytes per pixel.
type Image struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// NewImage allocates a zeroed Image with the given dimensions.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - *Image: the allocated image
func NewImage(width, height uint32) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]byte, int(width)*int(height)*4),
	}
}

// At returns the RGBA value of the pixel at (x, y).
// Out-of-bounds coordinates return zero.
//
// Parameters:
//   - x, y: pixel coordinates with top-left origin
//
// Returns:
//   - [4]uint8: the RGBA components
func (m *Image) At(x, y uint32) [4]uint8 {
	if x >= m.Width || y >= m.Height {
		return [4]uint8{}
	}
	i := (int(y)*int(m.Width) + int(x)) * 4
	return [4]uint8{m.Pixels[i], m.Pixels[i+1], m.Pixels[i+2], m.Pixels[i+3]}
}

// Set writes the RGBA value of the pixel at (x, y).
// Out-of-bounds coordinates are ignored.
//
// Parameters:
//   - x, y: pixel coordinates with top-left origin
//   - c: the RGBA components to write
func (m *Image) Set(x, y uint32, c [4]uint8) {
	if x >= m.Width || y >= m.Height {
		return
	}
	i := (int(y)*int(m.Width) + int(x)) * 4
	m.Pixels[i] = c[0]
	m.Pixels[i+1] = c[1]
	m.Pixels[i+2] = c[2]
	m.Pixels[i+3] = c[3]
}

// Fill sets every pixel to the given RGBA value.
//
// Parameters:
//   - c: the RGBA components to fill with
func (m *Image) Fill(c [4]uint8) {
	for i := 0; i < len(m.Pixels); i += 4 {
		m.Pixels[i] = c[0]
		m.Pixels[i+1] = c[1]
		m.Pixels[i+2] = c[2]
		m.Pixels[i+3] = c[3]
	}
}
