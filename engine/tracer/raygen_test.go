package tracer

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/raygen-go/common"
	"github.com/Carmen-Shannon/raygen-go/engine/camera"
)

// forwardFixture builds a camera uniform with an identity view and a +Z-forward
// projection (90 degree vertical fov, square aspect). With this setup the ray
// through NDC (0, 0) is exactly (0, 0, 1) and the ray through NDC (x, y) is
// proportional to (x, y, 1), which makes direction properties easy to assert.
func forwardFixture(t *testing.T, width, height uint32) camera.GPURayCameraUniform {
	t.Helper()

	var proj [16]float32
	common.PerspectiveLH(proj[:], float32(math.Pi/2), float32(width)/float32(height), 0.1, 1000)

	u := camera.GPURayCameraUniform{
		ViewInverse: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Params:      [4]float32{float32(width), float32(height), 0, 0},
	}
	if !common.Invert4(u.ProjInverse[:], proj[:]) {
		t.Fatal("projection matrix not invertible")
	}
	return u
}

func norm3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func TestRayDirectionUnitNorm(t *testing.T) {
	u := forwardFixture(t, 256, 256)

	for _, p := range [][2]uint32{{0, 0}, {255, 0}, {0, 255}, {255, 255}, {128, 128}, {17, 203}} {
		dir := RayDirection(u, p[0], p[1], 256, 256)
		if n := norm3(dir); math.Abs(float64(n-1)) > 1e-4 {
			t.Errorf("pixel (%d, %d): |dir| = %v, want 1 within 1e-4", p[0], p[1], n)
		}
	}
}

func TestRayDirectionCenterIsForward(t *testing.T) {
	u := forwardFixture(t, 256, 256)

	dir := RayDirectionNDC(u, 0, 0)
	want := [3]float32{0, 0, 1}
	for i := range 3 {
		if math.Abs(float64(dir[i]-want[i])) > 1e-4 {
			t.Fatalf("center ray = %v, want %v within 1e-4", dir, want)
		}
	}

	// The ray through the center pixel of an even-sized grid sits half a pixel
	// off exact center, so it is only near-forward: dominant +Z, tiny x and y.
	pixelDir := RayDirection(u, 128, 128, 256, 256)
	if pixelDir[2] < 0.99 {
		t.Errorf("center pixel ray z = %v, want dominant forward component", pixelDir[2])
	}
	if math.Abs(float64(pixelDir[0])) > 0.01 || math.Abs(float64(pixelDir[1])) > 0.01 {
		t.Errorf("center pixel ray = %v, want near-axial", pixelDir)
	}
}

func TestRayDirectionVerticalFlip(t *testing.T) {
	u := forwardFixture(t, 256, 256)

	top := RayDirection(u, 128, 0, 256, 256)
	bottom := RayDirection(u, 128, 255, 256, 256)

	// Row 0 is the top of the image and must map to an upward-pointing ray.
	if top[1] <= 0 {
		t.Errorf("top row ray y = %v, want > 0", top[1])
	}
	if bottom[1] >= 0 {
		t.Errorf("bottom row ray y = %v, want < 0", bottom[1])
	}
}

func TestRayDirectionZeroLengthFallback(t *testing.T) {
	// All-zero matrices collapse the unprojected point onto the camera position,
	// producing a zero-length difference.
	u := camera.GPURayCameraUniform{Params: [4]float32{4, 4, 0, 0}}

	dir := RayDirectionNDC(u, 0.5, -0.25)
	if dir != [3]float32{0, 0, 1} {
		t.Errorf("degenerate ray = %v, want (0, 0, 1)", dir)
	}
}

func TestShadeDirection(t *testing.T) {
	tests := []struct {
		name string
		dir  [3]float32
		want [4]uint8
	}{
		{"forward", [3]float32{0, 0, 1}, [4]uint8{128, 128, 255, 255}},
		{"negative x", [3]float32{-1, 0, 0}, [4]uint8{0, 128, 128, 255}},
		{"positive y", [3]float32{0, 1, 0}, [4]uint8{128, 255, 128, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShadeDirection(tt.dir); got != tt.want {
				t.Errorf("ShadeDirection(%v) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestTracePixelBoundsGuard(t *testing.T) {
	u := forwardFixture(t, 5, 3)

	// Image padded to the rounded-up dispatch size, pre-filled with a sentinel.
	img := NewImage(8, 8)
	sentinel := [4]uint8{7, 7, 7, 7}
	img.Fill(sentinel)

	groups := WorkgroupCount(5, 3)
	for py := uint32(0); py < groups[1]*WorkgroupSizeY; py++ {
		for px := uint32(0); px < groups[0]*WorkgroupSizeX; px++ {
			TracePixel(u, img, px, py)
		}
	}

	for py := uint32(0); py < 8; py++ {
		for px := uint32(0); px < 8; px++ {
			inside := px < 5 && py < 3
			got := img.At(px, py)
			if inside && got == sentinel {
				t.Errorf("pixel (%d, %d) inside bounds was not written", px, py)
			}
			if !inside && got != sentinel {
				t.Errorf("pixel (%d, %d) outside bounds was written: %v", px, py, got)
			}
		}
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		want          [3]uint32
	}{
		{"exact multiple", 256, 128, [3]uint32{32, 16, 1}},
		{"rounds up", 257, 129, [3]uint32{33, 17, 1}},
		{"tiny", 1, 1, [3]uint32{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkgroupCount(tt.width, tt.height); got != tt.want {
				t.Errorf("WorkgroupCount(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestTracerRenderMatchesTracePixel(t *testing.T) {
	// End-to-end on a 4x4 target with a real orbit camera.
	cc := camera.NewCameraController(
		camera.WithRadius(4),
		camera.WithAzimuth(0.6),
		camera.WithElevation(0.3),
	)
	cam := camera.NewCamera(camera.WithController(cc))
	u := cam.Uniform(4, 4, 0)

	tr := NewTracer(WithWorkers(2))
	got := NewImage(4, 4)
	if err := tr.Render(u, got); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	want := NewImage(4, 4)
	for py := uint32(0); py < 4; py++ {
		for px := uint32(0); px < 4; px++ {
			TracePixel(u, want, px, py)
		}
	}

	for py := uint32(0); py < 4; py++ {
		for px := uint32(0); px < 4; px++ {
			if got.At(px, py) != want.At(px, py) {
				t.Errorf("pixel (%d, %d) = %v, want %v", px, py, got.At(px, py), want.At(px, py))
			}
		}
	}

	// Every written pixel must be opaque and decode to a unit direction.
	for py := uint32(0); py < 4; py++ {
		for px := uint32(0); px < 4; px++ {
			c := got.At(px, py)
			if c[3] != 255 {
				t.Errorf("pixel (%d, %d) alpha = %d, want 255", px, py, c[3])
			}
			var dir [3]float32
			for i := range 3 {
				dir[i] = float32(c[i])/255.0*2.0 - 1.0
			}
			if n := norm3(dir); math.Abs(float64(n-1)) > 0.02 {
				t.Errorf("pixel (%d, %d) decodes to |dir| = %v, want ~1", px, py, n)
			}
		}
	}
}

func TestTracerRenderRejectsSmallImage(t *testing.T) {
	u := forwardFixture(t, 16, 16)
	tr := NewTracer(WithWorkers(1))

	if err := tr.Render(u, NewImage(8, 8)); err == nil {
		t.Error("expected error for undersized image, got nil")
	}
	if err := tr.Render(u, nil); err == nil {
		t.Error("expected error for nil image, got nil")
	}
}
