package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands the path using the user's home directory.
// If the path starts with "~", it is replaced with the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		// Replace "~" with the home directory path
		path = filepath.Join(homeDir, path[1:])
	}

	return path, nil
}

// ResolvePath expands "~" and joins relative paths onto base.
// Empty paths stay empty so callers can tell "unset" apart from "current directory".
func ResolvePath(base, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	path, err := ExpandPath(path)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(path) || base == "" {
		return path, nil
	}

	return filepath.Join(base, path), nil
}
