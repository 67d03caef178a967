package tracer

import (
	"bytes"
	"image/png"
	"math"
	"testing"
)

func TestFullscreenTriangleCoversClipSpace(t *testing.T) {
	// The three corners of clip space must lie inside (or on the edge of) the
	// oversized triangle so that after clipping the full surface is covered.
	corners := [][2]float32{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

	x0, y0 := VertexPosition(0)
	x1, y1 := VertexPosition(1)
	x2, y2 := VertexPosition(2)

	edge := func(ax, ay, bx, by, px, py float32) float32 {
		return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	}

	for _, c := range corners {
		w0 := edge(x0, y0, x1, y1, c[0], c[1])
		w1 := edge(x1, y1, x2, y2, c[0], c[1])
		w2 := edge(x2, y2, x0, y0, c[0], c[1])
		if w0 < 0 || w1 < 0 || w2 < 0 {
			t.Errorf("clip-space corner %v is outside the fullscreen triangle", c)
		}
	}
}

func TestInterpolatedUVOrientation(t *testing.T) {
	tests := []struct {
		name       string
		ndcX, ndcY float32
		wantU      float32
		wantV      float32
	}{
		{"top left", -1, 1, 0, 0},
		{"top right", 1, 1, 1, 0},
		{"bottom left", -1, -1, 0, 1},
		{"bottom right", 1, -1, 1, 1},
		{"center", 0, 0, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := InterpolatedUV(tt.ndcX, tt.ndcY)
			if math.Abs(float64(u-tt.wantU)) > 1e-6 || math.Abs(float64(v-tt.wantV)) > 1e-6 {
				t.Errorf("InterpolatedUV(%v, %v) = (%v, %v), want (%v, %v)",
					tt.ndcX, tt.ndcY, u, v, tt.wantU, tt.wantV)
			}
		})
	}
}

func TestBlitRoundTripIdentity(t *testing.T) {
	// With matching dimensions every destination pixel center samples exactly
	// one texel center, so the blit must reproduce the source unchanged.
	src := NewImage(16, 9)
	for py := uint32(0); py < src.Height; py++ {
		for px := uint32(0); px < src.Width; px++ {
			src.Set(px, py, [4]uint8{uint8(px * 16), uint8(py * 28), uint8(px ^ py), 255})
		}
	}

	dst := NewImage(16, 9)
	Blit(dst, src)

	for py := uint32(0); py < src.Height; py++ {
		for px := uint32(0); px < src.Width; px++ {
			if dst.At(px, py) != src.At(px, py) {
				t.Errorf("pixel (%d, %d) = %v, want %v", px, py, dst.At(px, py), src.At(px, py))
			}
		}
	}
}

func TestBlitPreservesOrientation(t *testing.T) {
	// Top row red, bottom row blue. The blit must not flip the image vertically.
	src := NewImage(4, 4)
	for px := uint32(0); px < 4; px++ {
		src.Set(px, 0, [4]uint8{255, 0, 0, 255})
		src.Set(px, 3, [4]uint8{0, 0, 255, 255})
	}

	dst := NewImage(4, 4)
	Blit(dst, src)

	if got := dst.At(1, 0); got[0] != 255 || got[2] != 0 {
		t.Errorf("top row = %v, want red", got)
	}
	if got := dst.At(1, 3); got[2] != 255 || got[0] != 0 {
		t.Errorf("bottom row = %v, want blue", got)
	}
}

func TestSampleBilinearClampToEdge(t *testing.T) {
	src := NewImage(2, 2)
	src.Set(0, 0, [4]uint8{10, 20, 30, 255})
	src.Set(1, 0, [4]uint8{50, 60, 70, 255})
	src.Set(0, 1, [4]uint8{90, 100, 110, 255})
	src.Set(1, 1, [4]uint8{130, 140, 150, 255})

	// Sampling past the corners must clamp to the corner texels.
	if got := SampleBilinear(src, -1, -1); got != src.At(0, 0) {
		t.Errorf("sample past top-left = %v, want %v", got, src.At(0, 0))
	}
	if got := SampleBilinear(src, 2, 2); got != src.At(1, 1) {
		t.Errorf("sample past bottom-right = %v, want %v", got, src.At(1, 1))
	}

	// Sampling at the exact midpoint blends all four texels equally.
	got := SampleBilinear(src, 0.5, 0.5)
	want := [4]uint8{70, 80, 90, 255}
	if got != want {
		t.Errorf("midpoint sample = %v, want %v", got, want)
	}
}

func TestSampleNearest(t *testing.T) {
	src := NewImage(2, 2)
	src.Set(0, 0, [4]uint8{10, 20, 30, 255})
	src.Set(1, 0, [4]uint8{50, 60, 70, 255})
	src.Set(0, 1, [4]uint8{90, 100, 110, 255})
	src.Set(1, 1, [4]uint8{130, 140, 150, 255})

	tests := []struct {
		name string
		u, v float32
		want [4]uint8
	}{
		{"top-left texel center", 0.25, 0.25, src.At(0, 0)},
		{"bottom-right texel center", 0.75, 0.75, src.At(1, 1)},
		{"off-center snaps", 0.4, 0.1, src.At(0, 0)},
		{"clamp past top-left", -1, -1, src.At(0, 0)},
		{"clamp past bottom-right", 2, 2, src.At(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleNearest(src, tt.u, tt.v); got != tt.want {
				t.Errorf("SampleNearest(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestExportPNG(t *testing.T) {
	img := NewImage(8, 8)
	img.Fill([4]uint8{128, 64, 32, 255})

	var buf bytes.Buffer
	if err := ExportPNG(img, &buf); err != nil {
		t.Fatalf("ExportPNG returned error: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding exported png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("decoded bounds = %v, want 8x8", b)
	}
}

func TestExportScaledPNG(t *testing.T) {
	img := NewImage(8, 8)
	img.Fill([4]uint8{200, 100, 50, 255})

	var buf bytes.Buffer
	if err := ExportScaledPNG(img, &buf, 16, 16); err != nil {
		t.Fatalf("ExportScaledPNG returned error: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding exported png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("decoded bounds = %v, want 16x16", b)
	}

	if err := ExportScaledPNG(img, &buf, 0, 16); err == nil {
		t.Error("expected error for zero width, got nil")
	}
}
