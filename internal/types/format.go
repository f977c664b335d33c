package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies the serialization technology of a model artifact.
type Format int

const (
	FormatUndefined Format = iota
	FormatTensorFlow
	FormatTFLite
	FormatTensorRT
)

var ErrUnknownFormat = errors.New("unknown model format")

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "UNDEFINED"
	case FormatTensorFlow:
		return "TENSORFLOW"
	case FormatTFLite:
		return "TFLITE"
	case FormatTensorRT:
		return "TENSORRT"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFormat converts a user supplied format name (flag, env, config) into a Format.
// An empty string or "auto" yields FormatUndefined so that the filename decides.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "undefined":
		return FormatUndefined, nil
	case "tensorflow", "tf":
		return FormatTensorFlow, nil
	case "tflite":
		return FormatTFLite, nil
	case "tensorrt", "trt":
		return FormatTensorRT, nil
	default:
		return FormatUndefined, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromFilename guesses the format from the model's file name only.
// The file is never opened.
func FormatFromFilename(path string) Format {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(name, "_trt.pb"):
		return FormatTensorRT
	case strings.HasSuffix(name, ".pb"):
		return FormatTensorFlow
	case strings.HasSuffix(name, ".tflite"):
		return FormatTFLite
	default:
		return FormatUndefined
	}
}
