// Package writer provides sinks for heap region snapshots.
package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrEmpty is returned for a snapshot of a heap that never obtained memory.
var ErrEmpty = errors.New("writer: empty region")

// Sink receives a snapshot of a heap region and reports how many bytes it kept.
type Sink interface {
	WriteSnapshot(region []byte) (int, error)
}

// FileWriter stores snapshots as image files. A snapshot replaces the file in
// one step: readers see either the previous image or the new one.
type FileWriter struct {
	Path string
	Perm os.FileMode // 0 selects 0o644
}

// WriteSnapshot stores region at w.Path and returns its length.
func (w *FileWriter) WriteSnapshot(region []byte) (int, error) {
	if len(region) == 0 {
		return 0, ErrEmpty
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}

	staged, err := stage(filepath.Dir(w.Path), region, perm)
	if err != nil {
		return 0, fmt.Errorf("snapshot %s: %w", w.Path, err)
	}
	if err := os.Rename(staged, w.Path); err != nil {
		_ = os.Remove(staged)
		return 0, fmt.Errorf("snapshot %s: %w", w.Path, err)
	}
	return len(region), nil
}

// stage writes region to a hidden file in dir and returns its name. The file
// is flushed to disk and closed; on error nothing is left behind.
func stage(dir string, region []byte, perm os.FileMode) (name string, err error) {
	f, err := os.CreateTemp(dir, ".heapkit-snap-*")
	if err != nil {
		return "", err
	}
	name = f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(name)
		}
	}()

	n, err := f.Write(region)
	if err == nil && n < len(region) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return "", err
	}
	if err = f.Chmod(perm); err != nil {
		return "", err
	}
	if err = f.Sync(); err != nil {
		return "", err
	}
	return name, f.Close()
}
