package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gammazero/workerpool"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWorkers   = 4
	DefaultFrameRate = 1.0
)

var ErrNoFrames = errors.New("no image frames found")

var decodableTypes = []string{"image/png", "image/jpeg", "image/gif", "image/bmp", "image/webp"}

type Options struct {
	Workers int `mapstructure:"workers"`
	// FrameRate is the rate the frames were sampled at, in frames per second.
	FrameRate float64 `mapstructure:"frame_rate"`
	// TargetSize resizes every frame when both dimensions are positive.
	TargetSize image.Point `mapstructure:"-"`
}

type Frame struct {
	Path      string
	Timestamp time.Duration
	Image     image.Image
}

// LoadDir decodes every image in dir, ordered by file name. Files that are not
// images are skipped. Frame i is stamped at i / FrameRate.
func LoadDir(ctx context.Context, dir string, opts Options) ([]Frame, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}

	paths, err := imagePaths(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}

	frames := make([]Frame, len(paths))
	wp := workerpool.New(opts.Workers)

	errs := make([]error, len(paths))
	for i, path := range paths {
		i, path := i, path
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			img, err := decodeFrame(path, opts.TargetSize)
			if err != nil {
				errs[i] = err
				return
			}

			frames[i] = Frame{
				Path:      path,
				Timestamp: time.Duration(float64(i) / opts.FrameRate * float64(time.Second)),
				Image:     img,
			}
		})
	}
	wp.StopWait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Report the earliest frame in order, not the first worker to fail.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return frames, nil
}

// imagePaths lists regular files in dir whose content sniffs as a decodable image.
func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to detect type of %s: %w", path, err)
		}
		if !mimetype.EqualsAny(mtype.String(), decodableTypes...) {
			continue
		}

		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}

func decodeFrame(path string, target image.Point) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if target.X > 0 && target.Y > 0 && img.Bounds().Size() != target {
		img = transform.Resize(img, target.X, target.Y, transform.Linear)
	}

	return img, nil
}
