package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/raygen-go/common"
	"github.com/Carmen-Shannon/raygen-go/engine/camera"
	"github.com/Carmen-Shannon/raygen-go/engine/renderer"
	"github.com/Carmen-Shannon/raygen-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/raygen-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/raygen-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/raygen-go/engine/tracer"
)

const (
	// RayGenPipelineKey is the cache key of the ray-generation compute pipeline.
	RayGenPipelineKey = "raygen"
	// PresentPipelineKey is the cache key of the fullscreen presentation pipeline.
	PresentPipelineKey = "present"
)

// Scene defines the interface for the ray-generation scene.
//
// A scene owns the GPU resources of one ray view: the camera uniform buffer,
// the storage image the compute kernel writes, and the sampled view plus
// sampler the presentation pass reads. Each frame the engine drives the scene
// through PrepareCompute (inside a compute frame) and Draw (inside a render
// frame); the renderer's submission order makes the kernel's writes visible
// to the presentation pass.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the scene's name
	Name() string

	// SetName sets the name of the scene.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether the scene is active for rendering.
	//
	// Returns:
	//   - bool: true when the scene should be prepared and drawn each frame
	Active() bool

	// SetActive sets whether the scene is active for rendering.
	//
	// Parameters:
	//   - active: whether the scene is active
	SetActive(active bool)

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the attached camera
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	//
	// Returns:
	//   - renderer.Renderer: the attached renderer
	Renderer() renderer.Renderer

	// TargetSize returns the current dimensions of the ray target in pixels.
	//
	// Returns:
	//   - width, height: the target dimensions
	TargetSize() (width, height uint32)

	// Elapsed returns the accumulated scene time in seconds, as fed to the
	// kernel's uniform each frame.
	//
	// Returns:
	//   - float32: elapsed scene time
	Elapsed() float32

	// Resize recreates the ray target and presentation resources for a new
	// surface size and updates the camera's aspect ratio. Zero or negative
	// dimensions (e.g. a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// PrepareCompute advances scene time, updates the camera, uploads the ray
	// camera uniform, and dispatches the ray-generation kernel over the target
	// with one workgroup per 8x8 pixel tile. Must be called between the
	// renderer's BeginComputeFrame and EndComputeFrame.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	PrepareCompute(deltaTime float32)

	// Draw encodes the presentation pass: a vertex-buffer-less fullscreen
	// triangle that samples the ray target onto the surface. Must be called
	// between the renderer's BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if the presentation pipeline is missing
	Draw() error

	// Release frees the GPU resources owned by the scene and its camera's
	// bind group provider. The scene must not be used afterwards.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer

	width  uint32
	height uint32

	elapsed   float32
	timeScale float32

	traceShader        shader.Shader
	blitFragmentShader shader.Shader

	// Binding indices resolved from the shaders' pre-processor declarations.
	cameraUniformBinding  int
	rayTargetBinding      int
	presentTextureBinding int
	presentSamplerBinding int

	// presentBGP holds the sampled view of the ray target and the filtering
	// sampler. The kernel-side resources (uniform buffer and storage image)
	// live on the camera's bind group provider.
	presentBGP bind_group_provider.BindGroupProvider

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer, registers the
// ray-generation and presentation pipelines from their embedded WGSL sources, and
// initializes the GPU resources for the given target size. The camera and renderer
// are required and NewScene panics if either is nil or if GPU initialization fails.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - width: the initial target width in pixels
//   - height: the initial target height in pixels
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, width, height int, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("scene: NewScene requires positive target dimensions, got %dx%d", width, height))
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		active:             false,
		cam:                cam,
		r:                  r,
		timeScale:          1,
		presentBGP:         bind_group_provider.NewBindGroupProvider(name + "_present"),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Pre-process the annotated WGSL sources; the collected declarations carry
	// the binding index of each resource so nothing is hardcoded here.
	pp := shader.NewPreProcessor()

	traceSource, err := pp.Process(tracer.TraceShaderSource)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to pre-process ray kernel source: %v", err))
	}
	for _, d := range pp.Declarations() {
		switch {
		case d.Type == shader.AnnotationTypeBindingGroup && d.Args[2] == shader.AnnotationArgCamera:
			s.cameraUniformBinding = *d.Binding
		case d.Type == shader.AnnotationTypeProvider && d.Args[0] == shader.AnnotationArgRayTarget:
			s.rayTargetBinding = *d.Binding
		}
	}

	blitFragSource, err := pp.Process(tracer.BlitFragmentShaderSource)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to pre-process presentation source: %v", err))
	}
	for _, d := range pp.Declarations() {
		if d.Type != shader.AnnotationTypeProvider || d.Args[0] != shader.AnnotationArgPresent || len(d.Args) < 2 {
			continue
		}
		switch d.Args[1] {
		case shader.AnnotationArgSampledTexture:
			s.presentTextureBinding = *d.Binding
		case shader.AnnotationArgFilteringSampler:
			s.presentSamplerBinding = *d.Binding
		}
	}

	s.traceShader = shader.NewShaderFromSource("raygen_cs", shader.ShaderTypeCompute, traceSource)
	blitVertexShader := shader.NewShaderFromSource("present_vs", shader.ShaderTypeVertex, tracer.BlitVertexShaderSource)
	s.blitFragmentShader = shader.NewShaderFromSource("present_fs", shader.ShaderTypeFragment, blitFragSource)

	if err := r.RegisterPipelines(
		pipeline.NewPipeline(RayGenPipelineKey, pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(s.traceShader),
		),
		pipeline.NewPipeline(PresentPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(blitVertexShader),
			pipeline.WithFragmentShader(s.blitFragmentShader),
		),
	); err != nil {
		panic(fmt.Sprintf("scene: failed to register pipelines: %v", err))
	}

	// Zero-value staging resolves to clamp-to-edge addressing and linear filtering.
	if err := r.InitSampler(s.presentBGP, s.presentSamplerBinding, common.SamplerStagingData{}); err != nil {
		panic(fmt.Sprintf("scene: failed to create presentation sampler: %v", err))
	}

	if err := s.initTarget(uint32(width), uint32(height)); err != nil {
		panic(fmt.Sprintf("scene: failed to init ray target: %v", err))
	}

	cam.SetAspect(float32(width) / float32(height))
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) TargetSize() (width, height uint32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func (s *scene) Elapsed() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.Resize(width, height)
	if err := s.initTarget(uint32(width), uint32(height)); err != nil {
		common.Logger().Error("failed to recreate ray target on resize", "error", err, "width", width, "height", height)
		return
	}
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *scene) PrepareCompute(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += deltaTime * s.timeScale
	s.cam.Update()

	rayBGP := s.cam.BindGroupProvider()
	u := s.cam.Uniform(s.width, s.height, s.elapsed)

	s.writePool = append(s.writePool[:0], bind_group_provider.BufferWrite{
		Provider: rayBGP,
		Binding:  s.cameraUniformBinding,
		Offset:   0,
		Data:     u.Marshal(),
	})
	s.r.WriteBuffers(s.writePool)

	s.r.DispatchCompute(RayGenPipelineKey, rayBGP, tracer.WorkgroupCount(s.width, s.height))
}

func (s *scene) Draw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawBindGroupsPool = append(s.drawBindGroupsPool[:0], s.presentBGP)
	return s.r.DrawFullscreen(PresentPipelineKey, s.drawBindGroupsPool)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bgp := s.cam.BindGroupProvider(); bgp != nil {
		bgp.Release()
	}
	s.presentBGP.Release()
}

// initTarget (re)creates the storage image the kernel writes, the presentation
// pass's sampled view of it, and both bind groups. Re-initialization on resize
// releases the previous texture and views; the uniform buffer and sampler
// persist across calls. Caller must hold the mutex.
func (s *scene) initTarget(width, height uint32) error {
	rayBGP := s.cam.BindGroupProvider()
	if rayBGP == nil {
		return fmt.Errorf("camera has no bind group provider")
	}

	if err := s.r.InitStorageTarget(rayBGP, s.rayTargetBinding, common.StorageTextureStagingData{
		Width:  width,
		Height: height,
	}); err != nil {
		return fmt.Errorf("failed to create storage target: %w", err)
	}

	if err := s.r.InitSampledView(s.presentBGP, s.presentTextureBinding, rayBGP, s.rayTargetBinding); err != nil {
		return fmt.Errorf("failed to create sampled view: %w", err)
	}

	if err := s.r.InitBindGroup(rayBGP, s.traceShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("failed to init kernel bind group: %w", err)
	}
	if err := s.r.InitBindGroup(s.presentBGP, s.blitFragmentShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("failed to init presentation bind group: %w", err)
	}

	s.width = width
	s.height = height
	return nil
}
