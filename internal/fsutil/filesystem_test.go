package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateReadDir(t *testing.T) {
	dir := t.TempDir()
	fsys := OSFileSystem{}

	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"b.png", "a.png"} {
		w, err := fsys.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	names, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, names, "directories are skipped and names sorted")

	data, err := fsys.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "a.png", string(data))

	info, err := fsys.Stat(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, fsys.Remove(filepath.Join(dir, "b.png")))
	assert.False(t, fsys.Exists(filepath.Join(dir, "b.png")))
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/media/x.jpg")
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)

	data, err := mfs.ReadFile("/media/x.jpg")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, w.Close())
	data, err = mfs.ReadFile("/media/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	info, err := mfs.Stat("/media/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/replay/2.png", []byte{2})
	mfs.WriteFile("/replay/1.png", []byte{1})
	mfs.WriteFile("/replay/nested/3.png", []byte{3})

	names, err := mfs.ReadDir("/replay")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.png", "2.png"}, names)

	_, err = mfs.ReadDir("/missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, mfs.MkdirAll("/empty", 0755))
	names, err = mfs.ReadDir("/empty")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryFileSystem_MkdirAllAndRemove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/a/b/c", os.ModePerm))

	assert.True(t, mfs.Exists("/a"))
	assert.True(t, mfs.Exists("/a/b"))
	assert.True(t, mfs.Exists("/a/b/c"))

	require.NoError(t, mfs.Remove("/a/b/c"))
	assert.False(t, mfs.Exists("/a/b/c"))
	assert.Error(t, mfs.Remove("/a/b/c"))
}

func TestMemoryFileSystem_FailCreate(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.FailCreate = errors.New("disk full")

	_, err := mfs.Create("/media/x.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, mfs.Files("/"))
}
