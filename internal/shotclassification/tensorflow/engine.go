// Package tensorflow runs shot classification on TensorFlow frozen graphs.
//
// Importing the package registers the engine for types.FormatTensorFlow:
//
//	import _ "github.com/cozy-creator/ondevice/internal/shotclassification/tensorflow"
//
// The TensorFlow C library is only linked when building with -tags tensorflow.
package tensorflow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/cozy-creator/ondevice/internal/labelmap"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/types"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

const (
	DefaultInputTensor  = "image"
	DefaultOutputTensor = "scores"
)

var (
	ErrClosed     = errors.New("engine is closed")
	ErrEmptyFrame = errors.New("frame is empty")
)

func init() {
	shotclassification.Register(types.FormatTensorFlow, New)
}

type Engine struct {
	modelPath string
	labels    *labelmap.LabelMap
	config    shotclassification.Config
	size      types.Size

	mu      sync.Mutex
	session session
}

// New loads the label map and the frozen graph at modelPath.
func New(modelPath, labelMapPath string, cfg shotclassification.Config) (shotclassification.Engine, error) {
	labels, err := labelmap.Load(labelMapPath)
	if err != nil {
		return nil, err
	}

	inputName := cfg.InputTensor
	if inputName == "" {
		inputName = DefaultInputTensor
	}
	outputName := cfg.OutputTensor
	if outputName == "" {
		outputName = DefaultOutputTensor
	}

	sess, err := openSession(modelPath, inputName, outputName)
	if err != nil {
		return nil, err
	}

	size, err := sizeFromShape(sess.inputShape())
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("input %s: %w", inputName, err)
	}

	return &Engine{
		modelPath: modelPath,
		labels:    labels,
		config:    cfg,
		size:      size,
		session:   sess,
	}, nil
}

// sizeFromShape expects NHWC with three channels and fixed spatial dims.
func sizeFromShape(shape []int64) (types.Size, error) {
	if len(shape) != 4 || shape[1] <= 0 || shape[2] <= 0 || shape[3] != 3 {
		return types.Size{}, fmt.Errorf("%w: %v, want [N H W 3]", ErrUnexpectedShape, shape)
	}

	return types.Size{Width: int(shape[2]), Height: int(shape[1])}, nil
}

func (e *Engine) InputSize() (types.Size, error) {
	return e.size, nil
}

func (e *Engine) Run(ctx context.Context, timestamp time.Duration, frame image.Image) ([]types.ShotClassificationAnnotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}

	input := e.preprocess(frame)

	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	scores, err := e.session.run(input)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return e.annotate(timestamp, scores), nil
}

// Close releases the session. Later calls are no-ops.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}

	err := e.session.close()
	e.session = nil
	return err
}

// preprocess resizes the frame to the model input and flattens it to
// HWC float32 RGB scaled to [0, 1].
func (e *Engine) preprocess(frame image.Image) []float32 {
	w, h := e.size.Width, e.size.Height

	bounds := frame.Bounds()
	if bounds.Dx() != w || bounds.Dy() != h {
		frame = transform.Resize(frame, w, h, transform.Linear)
	}

	resized := toRGBA(frame)
	input := make([]float32, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			input = append(input,
				float32(row[x])/255,
				float32(row[x+1])/255,
				float32(row[x+2])/255,
			)
		}
	}

	return input
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}

	return clone.AsRGBA(img)
}

// annotate keeps labelled scores at or above the threshold, best first.
// Score index i is class id i; indices without a label are dropped.
func (e *Engine) annotate(timestamp time.Duration, scores []float32) []types.ShotClassificationAnnotation {
	annotations := make([]types.ShotClassificationAnnotation, 0, len(scores))
	for id, score := range scores {
		if score < e.config.ScoreThreshold {
			continue
		}

		name, ok := e.labels.Name(id)
		if !ok {
			continue
		}

		annotations = append(annotations, types.ShotClassificationAnnotation{
			Timestamp:       timestamp,
			ClassID:         id,
			ClassName:       name,
			ConfidenceScore: score,
		})
	}

	sort.SliceStable(annotations, func(i, j int) bool {
		return annotations[i].ConfidenceScore > annotations[j].ConfidenceScore
	})

	if k := e.config.TopK; k > 0 && len(annotations) > k {
		annotations = annotations[:k]
	}

	return annotations
}
