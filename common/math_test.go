package common

import (
	"math"
	"testing"
)

func approxEq(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func matApprox(a, b []float32, eps float32) bool {
	for i := range a {
		if !approxEq(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i)
	}
	Identity(m)

	for i, v := range m {
		want := float32(0)
		if i == 0 || i == 5 || i == 10 || i == 15 {
			want = 1
		}
		if v != want {
			t.Errorf("Identity()[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestMul4(t *testing.T) {
	ident := make([]float32, 16)
	Identity(ident)

	translate := make([]float32, 16)
	Identity(translate)
	translate[12], translate[13], translate[14] = 1, 2, 3

	scale := make([]float32, 16)
	Identity(scale)
	scale[0], scale[5], scale[10] = 2, 2, 2

	// T * S: scale applied first, then translation.
	ts := make([]float32, 16)
	Identity(ts)
	ts[0], ts[5], ts[10] = 2, 2, 2
	ts[12], ts[13], ts[14] = 1, 2, 3

	tests := []struct {
		name   string
		a, b   []float32
		expect []float32
	}{
		{"identity*identity", ident, ident, ident},
		{"identity*translate", ident, translate, translate},
		{"translate*identity", translate, ident, translate},
		{"translate*scale", translate, scale, ts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]float32, 16)
			Mul4(out, tt.a, tt.b)
			if !matApprox(out, tt.expect, 1e-6) {
				t.Errorf("Mul4() = %v, want %v", out, tt.expect)
			}
		})
	}
}

func TestMul4_AliasedOutput(t *testing.T) {
	a := make([]float32, 16)
	Identity(a)
	a[12] = 5

	b := make([]float32, 16)
	Identity(b)
	b[13] = 7

	// out aliases a; the internal buffer must keep the product correct.
	Mul4(a, a, b)

	want := make([]float32, 16)
	Identity(want)
	want[12], want[13] = 5, 7
	if !matApprox(a, want, 1e-6) {
		t.Errorf("Mul4 with aliased out = %v, want %v", a, want)
	}
}

func TestTransformVec4(t *testing.T) {
	translate := make([]float32, 16)
	Identity(translate)
	translate[12], translate[13], translate[14] = 10, 20, 30

	tests := []struct {
		name   string
		m      []float32
		v      []float32
		expect []float32
	}{
		{"translate point", translate, []float32{1, 2, 3, 1}, []float32{11, 22, 33, 1}},
		{"translate direction", translate, []float32{1, 2, 3, 0}, []float32{1, 2, 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]float32, 4)
			TransformVec4(out, tt.m, tt.v)
			if !matApprox(out, tt.expect, 1e-6) {
				t.Errorf("TransformVec4() = %v, want %v", out, tt.expect)
			}
		})
	}
}

func TestNormalize3(t *testing.T) {
	tests := []struct {
		name   string
		v      []float32
		ok     bool
		expect []float32
	}{
		{"unit x", []float32{5, 0, 0}, true, []float32{1, 0, 0}},
		{"3-4-5 plane", []float32{0, 3, 4}, true, []float32{0, 0.6, 0.8}},
		{"zero stays put", []float32{0, 0, 0}, false, []float32{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := append([]float32(nil), tt.v...)
			ok := Normalize3(v)
			if ok != tt.ok {
				t.Fatalf("Normalize3(%v) ok = %v, want %v", tt.v, ok, tt.ok)
			}
			if !matApprox(v, tt.expect, 1e-6) {
				t.Errorf("Normalize3(%v) = %v, want %v", tt.v, v, tt.expect)
			}
		})
	}
}

func TestNormalize3RejectsNaN(t *testing.T) {
	// A 0/0 perspective divide upstream yields NaN components; the length-squared
	// comparison is false for NaN, so the vector is reported unusable and left alone.
	nan := float32(math.NaN())
	v := []float32{nan, nan, nan}
	if Normalize3(v) {
		t.Fatal("Normalize3 reported success for a NaN vector")
	}
	for i, c := range v {
		if !math.IsNaN(float64(c)) {
			t.Errorf("component %d = %v, want untouched NaN", i, c)
		}
	}
}

func TestInvert4(t *testing.T) {
	ident := make([]float32, 16)
	Identity(ident)

	translate := make([]float32, 16)
	Identity(translate)
	translate[12], translate[13], translate[14] = 4, -5, 6

	scale := make([]float32, 16)
	Identity(scale)
	scale[0], scale[5], scale[10] = 2, 4, 8

	tests := []struct {
		name string
		m    []float32
	}{
		{"identity", ident},
		{"translation", translate},
		{"scale", scale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := make([]float32, 16)
			if !Invert4(inv, tt.m) {
				t.Fatalf("Invert4(%v) reported singular", tt.m)
			}
			prod := make([]float32, 16)
			Mul4(prod, tt.m, inv)
			if !matApprox(prod, ident, 1e-5) {
				t.Errorf("m * m^-1 = %v, want identity", prod)
			}
		})
	}
}

func TestInvert4_Singular(t *testing.T) {
	singular := make([]float32, 16) // all zeros has det 0
	out := []float32{
		9, 9, 9, 9,
		9, 9, 9, 9,
		9, 9, 9, 9,
		9, 9, 9, 9,
	}
	if Invert4(out, singular) {
		t.Fatal("Invert4 inverted a singular matrix")
	}
	for i, v := range out {
		if v != 9 {
			t.Errorf("singular Invert4 modified out[%d] = %v", i, v)
		}
	}
}

func TestPerspective(t *testing.T) {
	m := make([]float32, 16)
	Perspective(m, float32(math.Pi/2), 1, 0.1, 100)

	// 90 degree vertical fov gives unit focal length.
	if !approxEq(m[0], 1, 1e-6) || !approxEq(m[5], 1, 1e-6) {
		t.Errorf("focal terms = (%v, %v), want (1, 1)", m[0], m[5])
	}
	if !approxEq(m[11], -1, 1e-6) {
		t.Errorf("m[11] = %v, want -1 (right-handed)", m[11])
	}

	// A view-space point on the near plane should land at clip depth 0.
	out := make([]float32, 4)
	TransformVec4(out, m, []float32{0, 0, -0.1, 1})
	if !approxEq(out[2]/out[3], 0, 1e-5) {
		t.Errorf("near plane depth = %v, want 0", out[2]/out[3])
	}

	// A point on the far plane should land at clip depth 1.
	TransformVec4(out, m, []float32{0, 0, -100, 1})
	if !approxEq(out[2]/out[3], 1, 1e-4) {
		t.Errorf("far plane depth = %v, want 1", out[2]/out[3])
	}
}

func TestPerspectiveLH(t *testing.T) {
	m := make([]float32, 16)
	PerspectiveLH(m, float32(math.Pi/2), 1, 0.1, 100)

	if !approxEq(m[11], 1, 1e-6) {
		t.Errorf("m[11] = %v, want 1 (left-handed)", m[11])
	}

	// The inverse must carry the clip-space far point (0,0,1,1) onto the +Z axis.
	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("PerspectiveLH matrix reported singular")
	}
	out := make([]float32, 4)
	TransformVec4(out, inv, []float32{0, 0, 1, 1})
	x, y, z := out[0]/out[3], out[1]/out[3], out[2]/out[3]
	if !approxEq(x, 0, 1e-4) || !approxEq(y, 0, 1e-4) {
		t.Errorf("far point off axis: (%v, %v)", x, y)
	}
	if z <= 0 {
		t.Errorf("far point z = %v, want positive (+Z forward)", z)
	}
}

func TestLookAt(t *testing.T) {
	tests := []struct {
		name                   string
		eye, center, up        [3]float32
		point, expectViewSpace [3]float32
	}{
		{
			name: "origin looking down -z is identity",
			eye:  [3]float32{0, 0, 0}, center: [3]float32{0, 0, -1}, up: [3]float32{0, 1, 0},
			point: [3]float32{1, 2, 3}, expectViewSpace: [3]float32{1, 2, 3},
		},
		{
			name: "offset eye translates target to origin",
			eye:  [3]float32{0, 0, 5}, center: [3]float32{0, 0, 0}, up: [3]float32{0, 1, 0},
			point: [3]float32{0, 0, 0}, expectViewSpace: [3]float32{0, 0, -5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make([]float32, 16)
			LookAt(m,
				tt.eye[0], tt.eye[1], tt.eye[2],
				tt.center[0], tt.center[1], tt.center[2],
				tt.up[0], tt.up[1], tt.up[2])

			out := make([]float32, 4)
			TransformVec4(out, m, []float32{tt.point[0], tt.point[1], tt.point[2], 1})
			got := []float32{out[0], out[1], out[2]}
			want := []float32{tt.expectViewSpace[0], tt.expectViewSpace[1], tt.expectViewSpace[2]}
			if !matApprox(got, want, 1e-5) {
				t.Errorf("view-space point = %v, want %v", got, want)
			}
		})
	}
}

func TestLookAtInverseRecoversEye(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, 3, 4, 5, 0, 0, 0, 0, 1, 0)

	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("view matrix reported singular")
	}

	// The inverse view matrix maps the view-space origin back to the eye.
	out := make([]float32, 4)
	TransformVec4(out, inv, []float32{0, 0, 0, 1})
	want := []float32{3, 4, 5}
	if !matApprox(out[:3], want, 1e-5) {
		t.Errorf("recovered eye = %v, want %v", out[:3], want)
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		expect int
	}{
		{"first non-zero", []int{0, 0, 7, 9}, 7},
		{"all zero", []int{0, 0}, 0},
		{"leading value", []int{3, 5}, 3},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coalesce(tt.values...); got != tt.expect {
				t.Errorf("Coalesce(%v) = %v, want %v", tt.values, got, tt.expect)
			}
		})
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	// 1.0f little-endian is 0x3f800000.
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("first float bytes = % x, want 00 00 80 3f", b[:4])
	}
	if SliceToBytes([]float32(nil)) != nil {
		t.Error("nil slice should produce nil bytes")
	}
}
