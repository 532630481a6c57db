package trees

import (
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"
)

// FS exposes an embedded tree through io/fs so it can be handed to
// http.FS, template.ParseFS, fs.WalkDir and friends. Names follow
// fs.ValidPath; the root is ".".
type FS struct {
	index *PathIndex
}

var (
	_ fs.FS         = (*FS)(nil)
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
)

// NewFS returns an fs.FS view of the tree rooted at root.
func NewFS(root *Dir) *FS {
	return &FS{index: NewPathIndex(root)}
}

// NewFSFromIndex returns an fs.FS view backed by an existing index.
func NewFSFromIndex(index *PathIndex) *FS {
	return &FS{index: index}
}

func (fsys *FS) resolve(op, name string) (Entry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	key := name
	if name == "." {
		key = ""
	}
	e, ok := fsys.index.get(key)
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return e, nil
}

// Open opens the named file or directory.
func (fsys *FS) Open(name string) (fs.File, error) {
	e, err := fsys.resolve("open", name)
	if err != nil {
		return nil, err
	}
	switch v := e.(type) {
	case *File:
		return &openFile{Reader: strings.NewReader(v.contents), info: fileInfo{entry: v}}, nil
	case *Dir:
		return &openDir{path: name, info: fileInfo{entry: v, root: name == "."}, entries: dirEntries(v)}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
}

// ReadDir lists the named directory sorted by name.
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := fsys.resolve("readdir", name)
	if err != nil {
		return nil, err
	}
	dir, ok := e.(*Dir)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return dirEntries(dir), nil
}

// ReadFile returns a copy of the named file's contents.
func (fsys *FS) ReadFile(name string) ([]byte, error) {
	e, err := fsys.resolve("read", name)
	if err != nil {
		return nil, err
	}
	f, ok := e.(*File)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return f.Contents(), nil
}

// Stat describes the named file or directory.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	e, err := fsys.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	return fileInfo{entry: e, root: name == "."}, nil
}

func dirEntries(d *Dir) []fs.DirEntry {
	entries := make([]fs.DirEntry, 0, d.Len())
	for _, e := range d.Entries() {
		entries = append(entries, fileInfo{entry: e})
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries
}

// fileInfo implements both fs.FileInfo and fs.DirEntry. The root is named
// "." whatever path it was embedded under.
type fileInfo struct {
	entry Entry
	root  bool
}

func (fi fileInfo) Name() string {
	if fi.root {
		return "."
	}
	return fi.entry.Name()
}

func (fi fileInfo) Size() int64 {
	if f, ok := fi.entry.(*File); ok {
		return f.Size()
	}
	return 0
}

func (fi fileInfo) Mode() fs.FileMode {
	if fi.entry.IsDir() {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (fi fileInfo) ModTime() time.Time {
	if f, ok := fi.entry.(*File); ok {
		if modified, ok := f.metadata.ModifiedAt(); ok {
			return modified
		}
	}
	return time.Time{}
}

func (fi fileInfo) IsDir() bool                { return fi.entry.IsDir() }
func (fi fileInfo) Sys() any                   { return nil }
func (fi fileInfo) Type() fs.FileMode          { return fi.Mode().Type() }
func (fi fileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi fileInfo) String() string             { return fs.FormatFileInfo(fi) }

type openFile struct {
	*strings.Reader
	info fileInfo
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *openFile) Close() error               { return nil }

type openDir struct {
	path    string
	info    fileInfo
	entries []fs.DirEntry
	offset  int
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

// ReadDir follows fs.ReadDirFile: count <= 0 returns everything left,
// otherwise at most count entries and io.EOF once exhausted.
func (d *openDir) ReadDir(count int) ([]fs.DirEntry, error) {
	n := len(d.entries) - d.offset
	if n == 0 && count > 0 {
		return nil, io.EOF
	}
	if count > 0 && n > count {
		n = count
	}
	list := make([]fs.DirEntry, n)
	copy(list, d.entries[d.offset:d.offset+n])
	d.offset += n
	return list, nil
}
