package tracer

import (
	_ "embed"
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/raygen-go/common"
	"github.com/Carmen-Shannon/raygen-go/engine/camera"
)

// TraceShaderSource is the annotated WGSL source of the ray-generation compute
// kernel. It contains @oxy: pre-processor annotations and must be run through
// shader.NewPreProcessor().Process before module creation. The CPU functions in
// this package mirror its math exactly; RayDirection, ShadeDirection, and
// TracePixel are the reference implementation of what the kernel does per
// invocation.
//
//go:embed assets/trace.wgsl
var TraceShaderSource string

const (
	// WorkgroupSizeX is the kernel's workgroup width in invocations. Must match
	// the @workgroup_size attribute in TraceShaderSource.
	WorkgroupSizeX = 8

	// WorkgroupSizeY is the kernel's workgroup height in invocations.
	WorkgroupSizeY = 8
)

// WorkgroupCount returns the dispatch dimensions covering a width x height pixel
// grid, rounding up so partial workgroups at the right and bottom edges are included.
//
// Parameters:
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - [3]uint32: workgroup counts for the x, y, and z dimensions
func WorkgroupCount(width, height uint32) [3]uint32 {
	return [3]uint32{
		(width + WorkgroupSizeX - 1) / WorkgroupSizeX,
		(height + WorkgroupSizeY - 1) / WorkgroupSizeY,
		1,
	}
}

// RayDirectionNDC computes the normalized world-space ray direction through the
// given normalized device coordinate. The NDC point is unprojected at z=1 through
// the inverse projection, perspective-divided, carried into world space through
// the inverse view, and the direction from the camera position is normalized.
// A degenerate (zero-length) direction falls back to (0, 0, 1).
//
// Parameters:
//   - u: the camera uniform holding the inverse matrices
//   - ndcX: NDC x in [-1, 1], +x right
//   - ndcY: NDC y in [-1, 1], +y up
//
// Returns:
//   - [3]float32: the unit-length world-space ray direction
func RayDirectionNDC(u camera.GPURayCameraUniform, ndcX, ndcY float32) [3]float32 {
	var viewP [4]float32
	common.TransformVec4(viewP[:], u.ProjInverse[:], []float32{ndcX, ndcY, 1, 1})
	viewP[0] /= viewP[3]
	viewP[1] /= viewP[3]
	viewP[2] /= viewP[3]

	var worldP [4]float32
	common.TransformVec4(worldP[:], u.ViewInverse[:], []float32{viewP[0], viewP[1], viewP[2], 1})

	var camPos [4]float32
	common.TransformVec4(camPos[:], u.ViewInverse[:], []float32{0, 0, 0, 1})

	dir := []float32{worldP[0] - camPos[0], worldP[1] - camPos[1], worldP[2] - camPos[2]}
	if !common.Normalize3(dir) {
		return [3]float32{0, 0, 1}
	}
	return [3]float32{dir[0], dir[1], dir[2]}
}

// RayDirection computes the normalized world-space ray direction through the
// center of pixel (px, py) on a width x height grid. The pixel center is offset
// by +0.5 in both axes and the NDC y axis is flipped so image row 0 maps to the
// top of the view.
//
// Parameters:
//   - u: the camera uniform holding the inverse matrices
//   - px, py: pixel coordinates with top-left origin
//   - width, height: grid dimensions in pixels
//
// Returns:
//   - [3]float32: the unit-length world-space ray direction
func RayDirection(u camera.GPURayCameraUniform, px, py, width, height uint32) [3]float32 {
	uvX := (float32(px) + 0.5) / float32(width)
	uvY := (float32(py) + 0.5) / float32(height)
	return RayDirectionNDC(u, uvX*2.0-1.0, 1.0-uvY*2.0)
}

// ShadeDirection maps a unit direction to an RGBA color: each component is
// remapped from [-1, 1] to [0, 1] and quantized to 8 bits, alpha is opaque.
//
// Parameters:
//   - dir: the unit-length direction to encode
//
// Returns:
//   - [4]uint8: the encoded RGBA color
func ShadeDirection(dir [3]float32) [4]uint8 {
	quantize := func(v float32) uint8 {
		c := 0.5 * (v + 1.0)
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		return uint8(math.Round(float64(c * 255.0)))
	}
	return [4]uint8{quantize(dir[0]), quantize(dir[1]), quantize(dir[2]), 255}
}

// TracePixel executes one kernel invocation on the CPU: bounds-guard against the
// uniform's dimensions, compute the pixel's ray direction, and store the encoded
// color in the image. Invocations outside the uniform's width/height write nothing,
// matching the rounded-up GPU dispatch.
//
// Parameters:
//   - u: the camera uniform holding the inverse matrices and dimensions
//   - img: the target image to write into
//   - px, py: the invocation's pixel coordinates
func TracePixel(u camera.GPURayCameraUniform, img *Image, px, py uint32) {
	width := uint32(u.Params[0])
	height := uint32(u.Params[1])
	if px >= width || py >= height {
		return
	}
	dir := RayDirection(u, px, py, width, height)
	img.Set(px, py, ShadeDirection(dir))
}

// tracerImpl is the implementation of the Tracer interface.
type tracerImpl struct {
	mu *sync.Mutex

	pool    worker.DynamicWorkerPool
	workers int
}

// Tracer runs the ray-generation kernel on the CPU across a persistent worker
// pool, one task per image row band. It produces byte-identical output to the
// GPU kernel (up to rgba8unorm quantization) and serves as the software
// fallback and reference renderer.
type Tracer interface {
	// Workers returns the configured worker count.
	//
	// Returns:
	//   - int: the number of pool workers
	Workers() int

	// Render executes the kernel for every invocation of the rounded-up dispatch
	// grid covering the uniform's dimensions, writing into img. The image must be
	// at least as large as the uniform's width and height.
	//
	// Parameters:
	//   - u: the camera uniform holding the inverse matrices and dimensions
	//   - img: the target image to write into
	//
	// Returns:
	//   - error: an error if img is nil or smaller than the uniform's dimensions
	Render(u camera.GPURayCameraUniform, img *Image) error
}

var _ Tracer = &tracerImpl{}

// NewTracer creates a Tracer with a dynamic worker pool for parallel row rendering.
// The worker count defaults to runtime.NumCPU()-1 (minimum 1).
//
// Parameters:
//   - options: functional options to configure the tracer
//
// Returns:
//   - Tracer: the newly created tracer
func NewTracer(options ...TracerBuilderOption) Tracer {
	t := &tracerImpl{
		mu:      &sync.Mutex{},
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(t)
	}

	// Queue size of 256 accommodates the row bands of large targets with headroom.
	t.pool = worker.NewDynamicWorkerPool(t.workers, 256, 1*time.Second)
	return t
}

func (t *tracerImpl) Workers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.workers
}

func (t *tracerImpl) Render(u camera.GPURayCameraUniform, img *Image) error {
	if img == nil {
		return errors.New("target image must not be nil")
	}
	width := uint32(u.Params[0])
	height := uint32(u.Params[1])
	if img.Width < width || img.Height < height {
		return errors.New("target image is smaller than the uniform dimensions")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Mirror the GPU dispatch: iterate the rounded-up workgroup grid so the
	// bounds guard in TracePixel is exercised the same way the kernel's is.
	groups := WorkgroupCount(width, height)
	rows := groups[1] * WorkgroupSizeY
	cols := groups[0] * WorkgroupSizeX

	var wg sync.WaitGroup
	taskID := 0
	for band := uint32(0); band < rows; band += WorkgroupSizeY {
		wg.Add(1)
		start := band
		id := taskID
		taskID++
		t.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for py := start; py < start+WorkgroupSizeY; py++ {
					for px := uint32(0); px < cols; px++ {
						TracePixel(u, img, px, py)
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return nil
}
