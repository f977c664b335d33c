// Package labelmap reads the class id to name mappings that ship next to
// shot classification models.
//
// Two layouts are understood: the StringIntLabelMap text protobuf used by
// TensorFlow exports (.pbtxt), and a plain text file with one label per line
// where the line index is the class id (.txt).
package labelmap

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrEmpty            = errors.New("label map has no entries")
	ErrDuplicateID      = errors.New("duplicate label id")
	ErrUnsupportedExt   = errors.New("unsupported label map extension")
	ErrInvalidLabelItem = errors.New("invalid label map item")
)

type LabelMap struct {
	names map[int]string
}

// Load reads and parses the label map at path, choosing the layout from the extension.
func Load(path string) (*LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label map: %w", err)
	}

	lm, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse label map %s: %w", path, err)
	}

	return lm, nil
}

func Parse(data []byte, ext string) (*LabelMap, error) {
	var (
		lm  *LabelMap
		err error
	)

	switch strings.ToLower(ext) {
	case ".pbtxt", ".pbtext":
		lm, err = parseProtoText(data)
	case ".txt":
		lm, err = parseLines(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExt, ext)
	}
	if err != nil {
		return nil, err
	}

	if lm.Len() == 0 {
		return nil, ErrEmpty
	}

	return lm, nil
}

func (lm *LabelMap) Name(id int) (string, bool) {
	name, ok := lm.names[id]
	return name, ok
}

func (lm *LabelMap) Len() int {
	return len(lm.names)
}

// IDs returns every class id in ascending order.
func (lm *LabelMap) IDs() []int {
	ids := make([]int, 0, len(lm.names))
	for id := range lm.names {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

func (lm *LabelMap) add(id int, name string) error {
	if _, dup := lm.names[id]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	lm.names[id] = name
	return nil
}

func parseLines(data []byte) (*LabelMap, error) {
	lm := &LabelMap{names: make(map[int]string)}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for id := 0; scanner.Scan(); id++ {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if err := lm.add(id, name); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lm, nil
}
