package util

import (
	"bytes"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// WriteFileAtomic writes data to the given path, replacing the file in a
// single rename so readers never observe a partially written file.
// Symlinks are resolved and the target is replaced.
func WriteFileAtomic(path string, data []byte) error {
	evaluatedPath, err := resolvePath(path)
	if len(evaluatedPath) > 0 && err == nil {
		path = evaluatedPath
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func resolvePath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
