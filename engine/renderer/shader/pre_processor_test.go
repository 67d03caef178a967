package shader

import (
	"strings"
	"testing"
)

func TestProcessInjectsCameraStruct(t *testing.T) {
	const source = `//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
fn main() {}`

	pp := NewPreProcessor()
	out, err := pp.Process(source)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if !strings.Contains(out, "struct RayCameraUniform") {
		t.Error("processed source missing injected RayCameraUniform struct")
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> camera: RayCameraUniform;") {
		t.Errorf("processed source missing generated uniform declaration:\n%s", out)
	}
	if strings.Contains(out, "@oxy:") {
		t.Error("processed source still contains annotation lines")
	}
}

func TestProcessCollectsDeclarations(t *testing.T) {
	const source = `//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 0 1 ray_target
@group(0) @binding(1) var target: texture_storage_2d<rgba8unorm, write>;`

	pp := NewPreProcessor()
	if _, err := pp.Process(source); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("declaration count = %d, want 2", len(decls))
	}

	group := decls[0]
	if group.Type != AnnotationTypeBindingGroup || *group.Group != 0 || *group.Binding != 0 {
		t.Errorf("declaration 0 = %+v, want binding group at 0/0", group)
	}
	if group.Args[2] != AnnotationArgCamera {
		t.Errorf("declaration 0 type arg = %q, want %q", group.Args[2], AnnotationArgCamera)
	}

	provider := decls[1]
	if provider.Type != AnnotationTypeProvider || *provider.Binding != 1 {
		t.Errorf("declaration 1 = %+v, want provider at binding 1", provider)
	}
	if provider.Args[0] != AnnotationArgRayTarget {
		t.Errorf("declaration 1 identity = %q, want %q", provider.Args[0], AnnotationArgRayTarget)
	}
}

func TestProcessProviderBindingRoles(t *testing.T) {
	const source = `//@oxy:provider 0 0 present sampled_texture
@group(0) @binding(0) var src: texture_2d<f32>;
//@oxy:provider 0 1 present filtering_sampler
@group(0) @binding(1) var src_sampler: sampler;`

	pp := NewPreProcessor()
	out, err := pp.Process(source)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	// Provider annotations are declaration-only; the hand-written WGSL stays.
	if !strings.Contains(out, "@group(0) @binding(0) var src: texture_2d<f32>;") {
		t.Error("processed source lost the hand-written texture declaration")
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("declaration count = %d, want 2", len(decls))
	}
	if decls[0].Args[1] != AnnotationArgSampledTexture {
		t.Errorf("declaration 0 role = %q, want %q", decls[0].Args[1], AnnotationArgSampledTexture)
	}
	if decls[1].Args[1] != AnnotationArgFilteringSampler {
		t.Errorf("declaration 1 role = %q, want %q", decls[1].Args[1], AnnotationArgFilteringSampler)
	}
}

func TestProcessRejectsMalformedAnnotations(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown type", "//@oxy:frobnicate camera"},
		{"unknown struct", "//@oxy:include lights"},
		{"missing group args", "//@oxy:group 0 0 storage_uniform"},
		{"bad group index", "//@oxy:group x 0 storage_uniform camera camera"},
		{"unknown provider", "//@oxy:provider 0 0 material"},
		{"unknown role", "//@oxy:provider 0 0 present depth_texture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPreProcessor().Process(tt.source); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestProcessDeclarationsResetPerCall(t *testing.T) {
	pp := NewPreProcessor()

	if _, err := pp.Process("//@oxy:provider 0 1 ray_target"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if _, err := pp.Process("fn main() {}"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got := len(pp.Declarations()); got != 0 {
		t.Errorf("declaration count after annotation-free source = %d, want 0", got)
	}
}
