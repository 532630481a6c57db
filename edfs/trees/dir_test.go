package trees

import (
	"testing"
	"time"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleModTime = time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)

// sampleTree mirrors
//
//	a.txt         "hi"
//	bin.dat       "\xff\xfe"
//	sub/b.txt     "yo"
//	sub/deep/c.md "# c"
//	empty/
func sampleTree() *Dir {
	return NewDir("",
		[]*File{
			NewFile("a.txt", "hi", NewMetadata(sampleModTime)),
			NewFile("bin.dat", "\xff\xfe", EmptyMetadata()),
		},
		[]*Dir{
			NewDir("sub",
				[]*File{NewFile("sub/b.txt", "yo", nil)},
				[]*Dir{
					NewDir("sub/deep", []*File{NewFile("sub/deep/c.md", "# c", nil)}, nil),
				},
			),
			NewDir("empty", nil, nil),
		},
	)
}

func TestDir_GetFile(t *testing.T) {
	root := sampleTree()

	t.Run("finds files at every depth with exact contents", func(t *testing.T) {
		for path, want := range map[string]string{
			"a.txt":         "hi",
			"sub/b.txt":     "yo",
			"sub/deep/c.md": "# c",
		} {
			f, ok := root.GetFile(path)
			require.True(t, ok, "file %s should exist", path)
			assert.Equal(t, path, f.Path())
			assert.Equal(t, []byte(want), f.Contents())
		}
	})

	t.Run("accepts non-canonical spellings", func(t *testing.T) {
		for _, path := range []string{"/sub/b.txt", `sub\b.txt`, "./sub/./b.txt", "sub/deep/../b.txt"} {
			f, ok := root.GetFile(path)
			require.True(t, ok, "path %q should resolve", path)
			assert.Equal(t, "sub/b.txt", f.Path())
		}
	})

	t.Run("missing files are not found", func(t *testing.T) {
		for _, path := range []string{"missing.txt", "sub/missing.txt", "nope/b.txt", "sub", "", "sub/deep"} {
			f, ok := root.GetFile(path)
			assert.False(t, ok, "path %q should not resolve to a file", path)
			assert.Nil(t, f)
		}
	})

	t.Run("invalid paths are not found rather than failing", func(t *testing.T) {
		for _, path := range []string{"../a.txt", "a\x00.txt", "sub//b.txt"} {
			_, ok := root.GetFile(path)
			assert.False(t, ok, "path %q should not resolve", path)
		}
	})

	t.Run("lookups on a subdirectory are relative to it", func(t *testing.T) {
		sub, ok := root.GetDir("sub")
		require.True(t, ok)
		f, ok := sub.GetFile("deep/c.md")
		require.True(t, ok)
		assert.Equal(t, "sub/deep/c.md", f.Path())
	})

	t.Run("paths spelled from the receiver's own path resolve", func(t *testing.T) {
		sub, ok := root.GetDir("sub")
		require.True(t, ok)
		f, ok := sub.GetFile("sub/deep/c.md")
		require.True(t, ok)
		assert.Equal(t, "sub/deep/c.md", f.Path())

		f, ok = prefixedTree().GetFile("assets/img/logo.svg")
		require.True(t, ok)
		assert.Equal(t, "<svg/>", f.String())
	})
}

func TestDir_GetDir(t *testing.T) {
	root := sampleTree()

	t.Run("root forms return the receiver", func(t *testing.T) {
		for _, path := range []string{"", ".", "/"} {
			d, ok := root.GetDir(path)
			require.True(t, ok)
			assert.Same(t, root, d)
		}
	})

	t.Run("a root embedded under a prefix answers to its own path", func(t *testing.T) {
		prefixed := prefixedTree()
		for _, path := range []string{"", "assets", "/assets/"} {
			d, ok := prefixed.GetDir(path)
			require.True(t, ok, "path %q", path)
			assert.Same(t, prefixed, d)
		}
		d, ok := prefixed.GetDir("assets/img")
		require.True(t, ok)
		assert.Equal(t, "assets/img", d.Path())
		require.NoError(t, Validate(prefixed))
	})

	t.Run("nested directories resolve", func(t *testing.T) {
		d, ok := root.GetDir("sub/deep")
		require.True(t, ok)
		assert.Equal(t, "sub/deep", d.Path())
		assert.Equal(t, "deep", d.Name())
	})

	t.Run("files are not directories", func(t *testing.T) {
		_, ok := root.GetDir("a.txt")
		assert.False(t, ok)
		_, ok = root.GetDir("sub/nope")
		assert.False(t, ok)
	})

	t.Run("Get returns either kind", func(t *testing.T) {
		e, ok := root.Get("sub")
		require.True(t, ok)
		assert.True(t, e.IsDir())

		e, ok = root.Get("sub/b.txt")
		require.True(t, ok)
		assert.False(t, e.IsDir())

		_, ok = root.Get("sub/zzz")
		assert.False(t, ok)
	})
}

func TestDir_All(t *testing.T) {
	root := sampleTree()

	t.Run("walks files before subdirectories in pre-order", func(t *testing.T) {
		assert.Equal(t, []string{
			"a.txt",
			"bin.dat",
			"sub",
			"sub/b.txt",
			"sub/deep",
			"sub/deep/c.md",
			"empty",
		}, root.Flatten())
	})

	t.Run("stops when the consumer stops", func(t *testing.T) {
		var seen []string
		for e := range root.All() {
			seen = append(seen, e.Path())
			if e.Path() == "sub" {
				break
			}
		}
		assert.Equal(t, []string{"a.txt", "bin.dat", "sub"}, seen)
	})

	t.Run("empty directory has no descendants", func(t *testing.T) {
		empty := NewDir("", nil, nil)
		assert.Empty(t, empty.Flatten())
		assert.Empty(t, empty.Files())
		assert.Empty(t, empty.Dirs())
		assert.Equal(t, 0, empty.Len())
	})
}

func TestDir_AccessorsDoNotExposeInternals(t *testing.T) {
	root := sampleTree()

	files := root.Files()
	files[0] = nil
	assert.NotNil(t, root.Files()[0], "mutating the returned slice must not change the tree")

	f, _ := root.GetFile("a.txt")
	contents := f.Contents()
	contents[0] = 'X'
	assert.Equal(t, "hi", f.String())

	entries := root.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "a.txt", entries[0].Path())
	assert.Equal(t, "empty", entries[3].Path())
}

func TestFile_Accessors(t *testing.T) {
	root := sampleTree()

	t.Run("ContentsUTF8 rejects invalid bytes", func(t *testing.T) {
		text, _ := root.GetFile("a.txt")
		s, ok := text.ContentsUTF8()
		assert.True(t, ok)
		assert.Equal(t, "hi", s)

		bin, _ := root.GetFile("bin.dat")
		_, ok = bin.ContentsUTF8()
		assert.False(t, ok)
		assert.Equal(t, int64(2), bin.Size())
	})

	t.Run("metadata is optional at both levels", func(t *testing.T) {
		withTime, _ := root.GetFile("a.txt")
		md, ok := withTime.Metadata()
		require.True(t, ok)
		modified, ok := md.ModifiedAt()
		require.True(t, ok)
		assert.True(t, modified.Equal(sampleModTime))

		noTime, _ := root.GetFile("bin.dat")
		md, ok = noTime.Metadata()
		require.True(t, ok)
		_, ok = md.ModifiedAt()
		assert.False(t, ok)

		noMetadata, _ := root.GetFile("sub/b.txt")
		_, ok = noMetadata.Metadata()
		assert.False(t, ok)
	})

	t.Run("Open reads the contents", func(t *testing.T) {
		f, _ := root.GetFile("sub/deep/c.md")
		buf := make([]byte, 8)
		n, _ := f.Open().Read(buf)
		assert.Equal(t, "# c", string(buf[:n]))
	})
}

func TestValidate(t *testing.T) {
	t.Run("well-formed tree passes", func(t *testing.T) {
		assert.NoError(t, Validate(sampleTree()))
	})

	tests := []struct {
		name string
		root *Dir
	}{
		{"nil root", nil},
		{"duplicate sibling names", NewDir("", []*File{NewFile("a", "", nil)}, []*Dir{NewDir("a", nil, nil)})},
		{"child outside its parent", NewDir("", nil, []*Dir{NewDir("x", []*File{NewFile("y/f", "", nil)}, nil)})},
		{"non-canonical path", NewDir("", []*File{NewFile("./a", "", nil)}, nil)},
		{"empty file name", NewDir("", []*File{NewFile("", "", nil)}, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name+" fails", func(t *testing.T) {
			err := Validate(tt.root)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidTree)
		})
	}

	t.Run("shared directory node fails", func(t *testing.T) {
		shared := NewDir("a/s", nil, nil)
		root := NewDir("", nil, []*Dir{NewDir("a", nil, []*Dir{shared, shared})})
		assert.ErrorIs(t, Validate(root), common.ErrInvalidTree)
	})
}

func TestComputeMetrics(t *testing.T) {
	metrics := ComputeMetrics(sampleTree())

	assert.Equal(t, int64(4), metrics.TotalFiles)
	assert.Equal(t, int64(4), metrics.TotalDirs)
	assert.Equal(t, int64(8), metrics.TotalNodes)
	assert.Equal(t, int64(len("hi")+2+len("yo")+len("# c")), metrics.TotalSize)
	assert.Equal(t, 3, metrics.MaxDepth)

	assert.Equal(t, TreeMetrics{}, ComputeMetrics(nil))
}
