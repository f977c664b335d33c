package frames

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, jpeg.Encode(file, image.NewGray(image.Rect(0, 0, w, h)), nil))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0002.png"), 8, 6)
	writeJPEG(t, filepath.Join(dir, "frame_0001.jpg"), 8, 6)
	writePNG(t, filepath.Join(dir, "frame_0003.png"), 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("shot list"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	frames, err := LoadDir(context.Background(), dir, Options{FrameRate: 2})
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, filepath.Join(dir, "frame_0001.jpg"), frames[0].Path)
	assert.Equal(t, filepath.Join(dir, "frame_0002.png"), frames[1].Path)
	assert.Equal(t, filepath.Join(dir, "frame_0003.png"), frames[2].Path)

	assert.Equal(t, time.Duration(0), frames[0].Timestamp)
	assert.Equal(t, 500*time.Millisecond, frames[1].Timestamp)
	assert.Equal(t, time.Second, frames[2].Timestamp)

	assert.Equal(t, image.Pt(8, 6), frames[0].Image.Bounds().Size())
	assert.Equal(t, image.Pt(4, 4), frames[2].Image.Bounds().Size())
}

func TestLoadDirDefaultsToOneFramePerSecond(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		writePNG(t, filepath.Join(dir, name), 2, 2)
	}

	frames, err := LoadDir(context.Background(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, 2*time.Second, frames[2].Timestamp)
}

func TestLoadDirResizes(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 16, 9)
	writeJPEG(t, filepath.Join(dir, "b.jpg"), 3, 3)

	frames, err := LoadDir(context.Background(), dir, Options{Workers: 1, TargetSize: image.Pt(5, 7)})
	require.NoError(t, err)

	for _, frame := range frames {
		assert.Equal(t, image.Pt(5, 7), frame.Image.Bounds().Size(), frame.Path)
	}
}

func TestLoadDirErrors(t *testing.T) {
	_, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "readme.txt"), []byte("no frames here"), 0o644))
	_, err = LoadDir(context.Background(), empty, Options{})
	assert.ErrorIs(t, err, ErrNoFrames)

	broken := t.TempDir()
	writePNG(t, filepath.Join(broken, "a.png"), 2, 2)
	// PNG signature followed by garbage sniffs as an image but fails to decode.
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	require.NoError(t, os.WriteFile(filepath.Join(broken, "b.png"), corrupt, 0o644))
	_, err = LoadDir(context.Background(), broken, Options{})
	assert.ErrorContains(t, err, "b.png")
}

func TestLoadDirReportsEarliestBrokenFrame(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	for _, name := range []string{"b.png", "c.png", "d.png", "e.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), corrupt, 0o644))
	}

	for i := 0; i < 20; i++ {
		_, err := LoadDir(context.Background(), dir, Options{Workers: 4})
		require.Error(t, err)
		assert.Contains(t, err.Error(), filepath.Join(dir, "b.png"))
		assert.NotContains(t, err.Error(), "c.png")
	}
}

func TestLoadDirCanceled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDir(ctx, dir, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
