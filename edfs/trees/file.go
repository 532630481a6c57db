package trees

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
)

// File is an embedded regular file. Its contents are held in an immutable
// string; accessors that return bytes hand out copies.
type File struct {
	path     string
	contents string
	metadata *Metadata
}

// NewFile constructs a file node. path must be canonical; metadata may be
// nil when metadata capture was disabled at build time.
func NewFile(path, contents string, metadata *Metadata) *File {
	return &File{
		path:     path,
		contents: contents,
		metadata: metadata,
	}
}

func (f *File) entry() {}

// Path returns the canonical path of the file relative to the embedding root.
func (f *File) Path() string { return f.path }

// Name returns the file name.
func (f *File) Name() string { return common.Base(f.path) }

// IsDir is always false for files.
func (f *File) IsDir() bool { return false }

// Contents returns a copy of the file contents.
func (f *File) Contents() []byte { return []byte(f.contents) }

// ContentsUTF8 returns the contents as a string when they are valid UTF-8.
func (f *File) ContentsUTF8() (string, bool) {
	if !utf8.ValidString(f.contents) {
		return "", false
	}
	return f.contents, true
}

// String returns the raw contents without any encoding check.
func (f *File) String() string { return f.contents }

// Size returns the length of the contents in bytes.
func (f *File) Size() int64 { return int64(len(f.contents)) }

// Metadata returns the metadata captured at build time, if any.
func (f *File) Metadata() (*Metadata, bool) {
	return f.metadata, f.metadata != nil
}

// Open returns a reader over the contents.
func (f *File) Open() io.ReadSeeker {
	return strings.NewReader(f.contents)
}
