package writer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriterReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.img")
	require.NoError(t, os.WriteFile(path, []byte("old image"), 0o644))

	var s Sink = &FileWriter{Path: path}
	n, err := s.WriteSnapshot([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staged files must not be left behind")
}

func TestFileWriterPerm(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()

	def := &FileWriter{Path: filepath.Join(dir, "default.img")}
	_, err := def.WriteSnapshot([]byte{1})
	require.NoError(t, err)
	info, err := os.Stat(def.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	private := &FileWriter{Path: filepath.Join(dir, "private.img"), Perm: 0o600}
	_, err = private.WriteSnapshot([]byte{1})
	require.NoError(t, err)
	info, err = os.Stat(private.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriterRejectsEmptyRegion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.img")
	require.NoError(t, os.WriteFile(path, []byte("old image"), 0o644))

	n, err := (&FileWriter{Path: path}).WriteSnapshot(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old image", string(data), "a refused snapshot keeps the previous image")
}

func TestFileWriterMissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "missing", "heap.img")}
	n, err := w.WriteSnapshot([]byte{1})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "heap.img")
	assert.Zero(t, n)
}

func TestMemWriterCopies(t *testing.T) {
	src := []byte("region")
	var w MemWriter

	n, err := w.WriteSnapshot(src)
	require.NoError(t, err)
	assert.Equal(t, len(src), n)
	src[0] = 'X'
	assert.Equal(t, "region", string(w.Buf))

	_, err = w.WriteSnapshot([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "ab", string(w.Buf))
	assert.Equal(t, 2, w.Count)

	_, err = w.WriteSnapshot(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, "ab", string(w.Buf), "a refused snapshot keeps the previous one")
}
