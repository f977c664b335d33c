//go:build tensorflow

package tensorflow

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	tf "github.com/wamuir/graft/tensorflow"
)

type graphSession struct {
	graph  *tf.Graph
	sess   *tf.Session
	input  tf.Output
	output tf.Output
	shape  []int64
}

func openGraphSession(modelPath, inputName, outputName string) (session, error) {
	model, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read frozen graph: %w", err)
	}

	graph := tf.NewGraph()
	if err := graph.Import(model, ""); err != nil {
		return nil, fmt.Errorf("failed to import frozen graph: %w", err)
	}

	inputOp := graph.Operation(inputName)
	if inputOp == nil {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, inputName)
	}
	outputOp := graph.Operation(outputName)
	if outputOp == nil {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, outputName)
	}

	shape, err := inputOp.Output(0).Shape().ToSlice()
	if err != nil {
		return nil, fmt.Errorf("%w: input %s: %v", ErrUnexpectedShape, inputName, err)
	}

	sess, err := tf.NewSession(graph, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensorflow session: %w", err)
	}

	return &graphSession{
		graph:  graph,
		sess:   sess,
		input:  inputOp.Output(0),
		output: outputOp.Output(0),
		shape:  shape,
	}, nil
}

func (s *graphSession) inputShape() []int64 {
	return s.shape
}

func (s *graphSession) run(input []float32) ([]float32, error) {
	// A dynamic batch dimension is fed one frame at a time.
	shape := append([]int64(nil), s.shape...)
	if shape[0] < 0 {
		shape[0] = 1
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, input); err != nil {
		return nil, err
	}

	tensor, err := tf.ReadTensor(tf.Float, shape, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build input tensor: %w", err)
	}

	out, err := s.sess.Run(map[tf.Output]*tf.Tensor{s.input: tensor}, []tf.Output{s.output}, nil)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	switch scores := out[0].Value().(type) {
	case [][]float32:
		if len(scores) == 0 {
			return nil, fmt.Errorf("%w: empty output batch", ErrUnexpectedShape)
		}
		return scores[0], nil
	case []float32:
		return scores, nil
	default:
		return nil, fmt.Errorf("%w: output is %T", ErrUnexpectedShape, scores)
	}
}

func (s *graphSession) close() error {
	return s.sess.Close()
}
