package camera

import (
	"encoding/binary"
	"math"
	"testing"
)

func approxEq(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestControllerOrbitPosition(t *testing.T) {
	tests := []struct {
		name      string
		radius    float32
		azimuth   float32
		elevation float32
		want      [3]float32
	}{
		{
			name:   "on +Z axis",
			radius: 4, azimuth: 0, elevation: 0,
			want: [3]float32{0, 0, 4},
		},
		{
			name:   "on +X axis",
			radius: 2, azimuth: float32(math.Pi / 2), elevation: 0,
			want: [3]float32{2, 0, 0},
		},
		{
			name:   "elevated",
			radius: 1, azimuth: 0, elevation: float32(math.Pi / 4),
			want: [3]float32{0, float32(math.Sqrt2) / 2, float32(math.Sqrt2) / 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewCameraController(
				WithRadius(tt.radius),
				WithAzimuth(tt.azimuth),
				WithElevation(tt.elevation),
			)
			x, y, z := cc.Position()
			got := [3]float32{x, y, z}
			for i := range 3 {
				if !approxEq(got[i], tt.want[i], 1e-5) {
					t.Fatalf("position = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestControllerRadiusClamp(t *testing.T) {
	cc := NewCameraController()

	cc.SetRadius(0.01)
	if got := cc.Radius(); got != cc.MinRadius() {
		t.Errorf("radius below min not clamped: got %v, want %v", got, cc.MinRadius())
	}

	cc.SetRadius(1e6)
	if got := cc.Radius(); got != cc.MaxRadius() {
		t.Errorf("radius above max not clamped: got %v, want %v", got, cc.MaxRadius())
	}
}

func TestControllerElevationClamp(t *testing.T) {
	cc := NewCameraController()

	cc.SetElevation(10)
	if got := cc.Elevation(); got != cc.MaxElevation() {
		t.Errorf("elevation above max not clamped: got %v, want %v", got, cc.MaxElevation())
	}

	cc.SetElevation(-10)
	if got := cc.Elevation(); got != cc.MinElevation() {
		t.Errorf("elevation below min not clamped: got %v, want %v", got, cc.MinElevation())
	}

	// Symmetric pitch bounds keep the camera short of the poles so the
	// look-at basis never degenerates.
	if cc.MinElevation() != -cc.MaxElevation() {
		t.Errorf("elevation bounds not symmetric: min %v, max %v", cc.MinElevation(), cc.MaxElevation())
	}
}

func TestCameraInverseViewRecoversEye(t *testing.T) {
	cc := NewCameraController(
		WithRadius(4),
		WithAzimuth(0.6),
		WithElevation(0.3),
	)
	cam := NewCamera(WithController(cc))

	px, py, pz := cc.Position()
	inv := cam.InverseViewMatrix()

	// The translation column of the inverse view matrix is the eye position.
	if !approxEq(inv[12], px, 1e-4) || !approxEq(inv[13], py, 1e-4) || !approxEq(inv[14], pz, 1e-4) {
		t.Errorf("inverse view translation = (%v, %v, %v), want (%v, %v, %v)",
			inv[12], inv[13], inv[14], px, py, pz)
	}
}

func TestUniformParams(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc))

	u := cam.Uniform(800, 600, 1.5)
	if u.Params[0] != 800 || u.Params[1] != 600 {
		t.Errorf("params dimensions = (%v, %v), want (800, 600)", u.Params[0], u.Params[1])
	}
	if u.Params[2] != 1.5 {
		t.Errorf("params time = %v, want 1.5", u.Params[2])
	}
	if u.Params[3] != 0 {
		t.Errorf("params pad = %v, want 0", u.Params[3])
	}
}

func TestUniformMarshalLayout(t *testing.T) {
	u := GPURayCameraUniform{}
	for i := range 16 {
		u.ViewInverse[i] = float32(i)
		u.ProjInverse[i] = float32(100 + i)
	}
	u.Params = [4]float32{256, 256, 2.0, 0}

	buf := u.Marshal()
	if len(buf) != 144 {
		t.Fatalf("marshaled size = %d, want 144", len(buf))
	}
	if u.Size() != 144 {
		t.Fatalf("Size() = %d, want 144", u.Size())
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}

	if got := readF32(0); got != 0 {
		t.Errorf("view_inverse[0] at offset 0 = %v, want 0", got)
	}
	if got := readF32(60); got != 15 {
		t.Errorf("view_inverse[15] at offset 60 = %v, want 15", got)
	}
	if got := readF32(64); got != 100 {
		t.Errorf("proj_inverse[0] at offset 64 = %v, want 100", got)
	}
	if got := readF32(128); got != 256 {
		t.Errorf("params.x at offset 128 = %v, want 256", got)
	}
	if got := readF32(136); got != 2.0 {
		t.Errorf("params.z at offset 136 = %v, want 2.0", got)
	}
}
