package trees

import (
	"errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_Conformance(t *testing.T) {
	fsys := NewFS(sampleTree())
	require.NoError(t, fstest.TestFS(fsys, "a.txt", "bin.dat", "sub/b.txt", "sub/deep/c.md", "empty"))
}

func TestFS_PrefixedRoot(t *testing.T) {
	fsys := NewFS(prefixedTree())
	require.NoError(t, fstest.TestFS(fsys, "a.txt", "img/logo.svg"))

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name())
	assert.Equal(t, "img", entries[1].Name())

	data, err := fs.ReadFile(fsys, "img/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	info, err := fs.Stat(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, ".", info.Name())
	assert.True(t, info.IsDir())
}

func TestFS_ReadFile(t *testing.T) {
	fsys := NewFS(sampleTree())

	data, err := fs.ReadFile(fsys, "sub/deep/c.md")
	require.NoError(t, err)
	assert.Equal(t, "# c", string(data))

	_, err = fs.ReadFile(fsys, "sub")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = fs.ReadFile(fsys, "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = fs.ReadFile(fsys, "/a.txt")
	assert.ErrorIs(t, err, fs.ErrInvalid, "io/fs names never start with a slash")
}

func TestFS_WalkDir(t *testing.T) {
	fsys := NewFS(sampleTree())

	var visited []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		".",
		"a.txt",
		"bin.dat",
		"empty",
		"sub",
		"sub/b.txt",
		"sub/deep",
		"sub/deep/c.md",
	}, visited)
}

func TestFS_Stat(t *testing.T) {
	fsys := NewFS(sampleTree())

	info, err := fs.Stat(fsys, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name())
	assert.Equal(t, int64(2), info.Size())
	assert.False(t, info.IsDir())
	assert.True(t, info.ModTime().Equal(sampleModTime))

	info, err = fs.Stat(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, ".", info.Name())
	assert.True(t, info.IsDir())
	assert.True(t, info.Mode().IsDir())

	info, err = fs.Stat(fsys, "bin.dat")
	require.NoError(t, err)
	assert.True(t, info.ModTime().IsZero(), "files without a timestamp report the zero time")
}

func TestFS_OpenDirPaging(t *testing.T) {
	fsys := NewFS(sampleTree())

	f, err := fsys.Open("sub")
	require.NoError(t, err)
	defer f.Close()

	dir, ok := f.(fs.ReadDirFile)
	require.True(t, ok)

	first, err := dir.ReadDir(1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "b.txt", first[0].Name())

	rest, err := dir.ReadDir(-1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "deep", rest[0].Name())
	assert.True(t, rest[0].IsDir())

	_, err = dir.ReadDir(1)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
