package tracer

// TracerBuilderOption is a functional option used to configure a Tracer during construction.
type TracerBuilderOption func(*tracerImpl)

// WithWorkers sets the number of pool workers used for parallel row rendering.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - TracerBuilderOption: a function that sets the worker count
func WithWorkers(n int) TracerBuilderOption {
	return func(t *tracerImpl) {
		if n >= 1 {
			t.workers = n
		}
	}
}
