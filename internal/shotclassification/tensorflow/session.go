package tensorflow

import "errors"

var (
	// ErrRuntimeUnavailable is returned by binaries built without the
	// "tensorflow" build tag, which do not link libtensorflow.
	ErrRuntimeUnavailable = errors.New("tensorflow runtime not linked; rebuild with -tags tensorflow")
	ErrTensorNotFound     = errors.New("tensor not found in graph")
	ErrUnexpectedShape    = errors.New("unexpected tensor shape")
)

// session is the slice of a TensorFlow session the engine needs: one float
// input, one score vector out.
type session interface {
	// inputShape is the NHWC shape of the input tensor as declared by the graph.
	inputShape() []int64
	run(input []float32) ([]float32, error)
	close() error
}

// openSession is swapped out in tests.
var openSession = openGraphSession
