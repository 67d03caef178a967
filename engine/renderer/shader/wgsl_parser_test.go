package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testTraceSource = `
struct RayCameraUniform {
    view_inverse: mat4x4<f32>,
    proj_inverse: mat4x4<f32>,
    params: vec4<f32>,
};

@group(0) @binding(0) var<uniform> camera: RayCameraUniform;
@group(0) @binding(1) var target: texture_storage_2d<rgba8unorm, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let dims = vec2<u32>(u32(camera.params.x), u32(camera.params.y));
    if (gid.x >= dims.x || gid.y >= dims.y) {
        return;
    }
    textureStore(target, vec2<i32>(i32(gid.x), i32(gid.y)), vec4<f32>(1.0));
}
`

const testBlitSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(0.0, 0.0, 0.0, 1.0);
    out.uv = vec2<f32>(0.0, 0.0);
    return out;
}

@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var src_sampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(src, src_sampler, in.uv);
}
`

func TestParseComputeShader(t *testing.T) {
	s := NewShaderFromSource("trace", ShaderTypeCompute, testTraceSource)

	if got := s.EntryPoint(); got != "main" {
		t.Errorf("entry point = %q, want %q", got, "main")
	}
	if got := s.WorkgroupSize(); got != [3]uint32{8, 8, 1} {
		t.Errorf("workgroup size = %v, want [8 8 1]", got)
	}

	descriptors := s.BindGroupLayoutDescriptors()
	if len(descriptors) != 1 {
		t.Fatalf("bind group count = %d, want 1", len(descriptors))
	}

	desc := descriptors[0]
	if len(desc.Entries) != 2 {
		t.Fatalf("group 0 entry count = %d, want 2", len(desc.Entries))
	}

	var uniform, storage *wgpu.BindGroupLayoutEntry
	for i := range desc.Entries {
		switch desc.Entries[i].Binding {
		case 0:
			uniform = &desc.Entries[i]
		case 1:
			storage = &desc.Entries[i]
		}
	}
	if uniform == nil || storage == nil {
		t.Fatal("missing expected bindings 0 and 1")
	}

	if uniform.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("binding 0 buffer type = %v, want uniform", uniform.Buffer.Type)
	}
	// 2 mat4x4<f32> + 1 vec4<f32> = 144 bytes
	if uniform.Buffer.MinBindingSize != 144 {
		t.Errorf("binding 0 min binding size = %d, want 144", uniform.Buffer.MinBindingSize)
	}
	if uniform.Visibility != wgpu.ShaderStageCompute {
		t.Errorf("binding 0 visibility = %v, want compute", uniform.Visibility)
	}

	if storage.StorageTexture.Format != wgpu.TextureFormatRGBA8Unorm {
		t.Errorf("binding 1 format = %v, want rgba8unorm", storage.StorageTexture.Format)
	}
	if storage.StorageTexture.Access != wgpu.StorageTextureAccessWriteOnly {
		t.Errorf("binding 1 access = %v, want write-only", storage.StorageTexture.Access)
	}
	if storage.StorageTexture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("binding 1 view dimension = %v, want 2D", storage.StorageTexture.ViewDimension)
	}
}

func TestParseFullscreenVertexShader(t *testing.T) {
	s := NewShaderFromSource("blit_vs", ShaderTypeVertex, testBlitSource)

	if got := s.EntryPoint(); got != "vs_main" {
		t.Errorf("entry point = %q, want %q", got, "vs_main")
	}

	// VertexOutput mixes @builtin and @location fields, so it is not a vertex
	// input struct and no vertex buffer layouts may be derived.
	if got := len(s.VertexLayouts()); got != 0 {
		t.Errorf("vertex layout count = %d, want 0", got)
	}
}

func TestParseBlitFragmentShader(t *testing.T) {
	s := NewShaderFromSource("blit_fs", ShaderTypeFragment, testBlitSource)

	if got := s.EntryPoint(); got != "fs_main" {
		t.Errorf("entry point = %q, want %q", got, "fs_main")
	}

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 2 {
		t.Fatalf("group 0 entry count = %d, want 2", len(desc.Entries))
	}

	var texture, sampler *wgpu.BindGroupLayoutEntry
	for i := range desc.Entries {
		switch desc.Entries[i].Binding {
		case 0:
			texture = &desc.Entries[i]
		case 1:
			sampler = &desc.Entries[i]
		}
	}
	if texture == nil || sampler == nil {
		t.Fatal("missing expected bindings 0 and 1")
	}

	if texture.Texture.SampleType != wgpu.TextureSampleTypeFloat {
		t.Errorf("binding 0 sample type = %v, want float", texture.Texture.SampleType)
	}
	if texture.Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("binding 0 view dimension = %v, want 2D", texture.Texture.ViewDimension)
	}
	if sampler.Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("binding 1 sampler type = %v, want filtering", sampler.Sampler.Type)
	}
	if texture.Visibility != wgpu.ShaderStageFragment {
		t.Errorf("binding 0 visibility = %v, want fragment", texture.Visibility)
	}
}

func TestBindGroupVarNames(t *testing.T) {
	s := NewShaderFromSource("trace", ShaderTypeCompute, testTraceSource)

	if got := s.BindGroupVarName(0, 0); got != "camera" {
		t.Errorf("group 0 binding 0 var name = %q, want %q", got, "camera")
	}
	if got := s.BindGroupVarName(0, 1); got != "target" {
		t.Errorf("group 0 binding 1 var name = %q, want %q", got, "target")
	}

	binding, ok := s.BindGroupFromVarName(0, "target")
	if !ok || binding != 1 {
		t.Errorf("BindGroupFromVarName(0, target) = (%d, %v), want (1, true)", binding, ok)
	}
}

func TestParseVertexInputLayout(t *testing.T) {
	const source = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`
	s := NewShaderFromSource("mesh_vs", ShaderTypeVertex, source)

	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("vertex buffer layout count = %d, want 1", len(layouts))
	}

	layout := layouts[0]
	if layout.ArrayStride != 20 {
		t.Errorf("array stride = %d, want 20", layout.ArrayStride)
	}
	if len(layout.Attributes) != 2 {
		t.Fatalf("attribute count = %d, want 2", len(layout.Attributes))
	}
	if layout.Attributes[0].Format != wgpu.VertexFormatFloat32x3 || layout.Attributes[0].Offset != 0 {
		t.Errorf("attribute 0 = %+v, want float32x3 at offset 0", layout.Attributes[0])
	}
	if layout.Attributes[1].Format != wgpu.VertexFormatFloat32x2 || layout.Attributes[1].Offset != 12 {
		t.Errorf("attribute 1 = %+v, want float32x2 at offset 12", layout.Attributes[1])
	}
}

func TestStripCommentsNestedBlocks(t *testing.T) {
	const source = `
/* outer /* nested */ still a comment */
@group(0) @binding(0) var<uniform> camera: vec4<f32>; // line comment
@compute @workgroup_size(1)
fn main() {}
`
	s := NewShaderFromSource("commented", ShaderTypeCompute, source)

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("entry count = %d, want 1", len(desc.Entries))
	}
	if desc.Entries[0].Buffer.MinBindingSize != 16 {
		t.Errorf("min binding size = %d, want 16", desc.Entries[0].Buffer.MinBindingSize)
	}
}
