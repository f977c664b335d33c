package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"testing"
	"time"

	"github.com/cozy-creator/ondevice/internal/frames"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// labelEngine labels every frame as a wide shot.
type labelEngine struct {
	shotclassification.BaseEngine
	seen []time.Duration
}

func (e *labelEngine) Run(_ context.Context, ts time.Duration, _ image.Image) ([]types.ShotClassificationAnnotation, error) {
	e.seen = append(e.seen, ts)
	return []types.ShotClassificationAnnotation{{Timestamp: ts, ClassID: 1, ClassName: "wide", ConfidenceScore: 0.8}}, nil
}

func testFrames() []frames.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	return []frames.Frame{
		{Path: "f1.png", Timestamp: 0, Image: img},
		{Path: "f2.png", Timestamp: 500 * time.Millisecond, Image: img},
	}
}

func TestClassify(t *testing.T) {
	engine := &labelEngine{}

	results, err := Classify(context.Background(), engine, testFrames())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{0, 500 * time.Millisecond}, engine.seen)
	require.Len(t, results, 2)
	assert.Equal(t, "f2.png", results[1].Frame)
	assert.Equal(t, "500ms", results[1].Timestamp)
	assert.Equal(t, "wide", results[1].Annotations[0].ClassName)
}

func TestClassifyBaseEngine(t *testing.T) {
	engine, err := shotclassification.NewBaseEngine("m.xyz", "l.txt", shotclassification.Config{})
	require.NoError(t, err)

	_, err = Classify(context.Background(), engine, testFrames())
	assert.ErrorIs(t, err, shotclassification.ErrNotImplemented)
	assert.ErrorContains(t, err, "f1.png")
}

func TestEncode(t *testing.T) {
	results, err := Classify(context.Background(), &labelEngine{}, testFrames())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, OutputJSON, results))
	var fromJSON []FrameResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, results, fromJSON)

	buf.Reset()
	require.NoError(t, Encode(&buf, OutputYAML, results))
	assert.Contains(t, buf.String(), "class_name: wide")
	var fromYAML []FrameResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, results, fromYAML)
}
