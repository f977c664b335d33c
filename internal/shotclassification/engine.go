package shotclassification

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/cozy-creator/ondevice/internal/types"
)

var ErrNotImplemented = errors.New("not implemented")

// Config tunes a shot classification engine. The loader never reads it.
type Config struct {
	// Annotations scoring below the threshold are dropped.
	ScoreThreshold float32 `mapstructure:"score_threshold" yaml:"score_threshold"`
	// Maximum number of annotations per frame; 0 keeps all.
	TopK int `mapstructure:"top_k" yaml:"top_k"`

	InputTensor  string `mapstructure:"input_tensor" yaml:"input_tensor"`
	OutputTensor string `mapstructure:"output_tensor" yaml:"output_tensor"`
}

// Engine runs shot classification over individual frames of a video.
type Engine interface {
	// InputSize reports the frame size the model consumes.
	InputSize() (types.Size, error)

	// Run classifies one frame captured at timestamp.
	Run(ctx context.Context, timestamp time.Duration, frame image.Image) ([]types.ShotClassificationAnnotation, error)

	Close() error
}

// Constructor builds an engine from a model artifact, a label map and a config.
type Constructor func(modelPath, labelMapPath string, cfg Config) (Engine, error)

// BaseEngine is the placeholder engine returned when no backend handles a
// model's format. It keeps its arguments but cannot run inference.
type BaseEngine struct {
	ModelPath    string
	LabelMapPath string
	Config       Config
}

func NewBaseEngine(modelPath, labelMapPath string, cfg Config) (Engine, error) {
	return &BaseEngine{
		ModelPath:    modelPath,
		LabelMapPath: labelMapPath,
		Config:       cfg,
	}, nil
}

func (e *BaseEngine) InputSize() (types.Size, error) {
	return types.Size{}, ErrNotImplemented
}

func (e *BaseEngine) Run(_ context.Context, _ time.Duration, _ image.Image) ([]types.ShotClassificationAnnotation, error) {
	return nil, ErrNotImplemented
}

func (e *BaseEngine) Close() error {
	return nil
}
