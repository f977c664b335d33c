package shotclassification

import (
	"testing"

	"github.com/cozy-creator/ondevice/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapRegistry empties the global registry for the duration of a test.
func swapRegistry(t *testing.T) {
	t.Helper()

	backendsMu.Lock()
	saved := backends
	backends = make(map[types.Format]Constructor)
	backendsMu.Unlock()

	t.Cleanup(func() {
		backendsMu.Lock()
		backends = saved
		backendsMu.Unlock()
	})
}

func TestRegisterAndBackends(t *testing.T) {
	swapRegistry(t)
	assert.Empty(t, Backends())

	Register(types.FormatTFLite, NewBaseEngine)
	Register(types.FormatTensorFlow, NewBaseEngine)

	assert.Equal(t, []types.Format{types.FormatTensorFlow, types.FormatTFLite}, Backends())
}

func TestRegisterPanics(t *testing.T) {
	swapRegistry(t)

	assert.Panics(t, func() { Register(types.FormatTensorFlow, nil) })
	assert.Panics(t, func() { Register(types.FormatUndefined, NewBaseEngine) })

	Register(types.FormatTensorFlow, NewBaseEngine)
	assert.Panics(t, func() { Register(types.FormatTensorFlow, NewBaseEngine) })
}

func TestPackageLoadUsesRegistry(t *testing.T) {
	swapRegistry(t)

	tf := &recordingConstructor{}
	Register(types.FormatTensorFlow, tf.New)

	engine, err := Load("model.pb", "labels.pbtxt", Config{}, types.FormatUndefined)
	require.NoError(t, err)
	assert.IsType(t, &fakeTFEngine{}, engine)

	engine, err = Load("model.xyz", "labels.pbtxt", Config{}, types.FormatUndefined)
	require.NoError(t, err)
	assert.IsType(t, &BaseEngine{}, engine)
}

func TestPackageLoadWithoutBackendFallsBack(t *testing.T) {
	swapRegistry(t)

	engine, err := Load("model.pb", "labels.pbtxt", Config{}, types.FormatTensorFlow)
	require.NoError(t, err)
	assert.IsType(t, &BaseEngine{}, engine)
}

func TestLoaderSnapshotsRegistry(t *testing.T) {
	swapRegistry(t)

	loader := NewLoader()
	Register(types.FormatTensorFlow, (&recordingConstructor{}).New)

	engine, err := loader.Load("model.pb", "labels.pbtxt", Config{}, types.FormatUndefined)
	require.NoError(t, err)
	assert.IsType(t, &BaseEngine{}, engine)
}
