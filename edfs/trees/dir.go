package trees

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
)

// Dir is an embedded directory. Files and subdirectories keep the order in
// which the builder enumerated them.
type Dir struct {
	path  string
	files []*File
	dirs  []*Dir
}

// NewDir constructs a directory node and takes ownership of files and dirs.
// The root directory has the empty path.
func NewDir(path string, files []*File, dirs []*Dir) *Dir {
	if len(files) == 0 {
		files = nil
	}
	if len(dirs) == 0 {
		dirs = nil
	}
	return &Dir{
		path:  path,
		files: files,
		dirs:  dirs,
	}
}

func (d *Dir) entry() {}

// Path returns the canonical path of the directory; the root's is "".
func (d *Dir) Path() string { return d.path }

// Name returns the directory name; the root's is "".
func (d *Dir) Name() string { return common.Base(d.path) }

// IsDir is always true for directories.
func (d *Dir) IsDir() bool { return true }

// Files returns the immediate files of the directory.
func (d *Dir) Files() []*File { return slices.Clone(d.files) }

// Dirs returns the immediate subdirectories of the directory.
func (d *Dir) Dirs() []*Dir { return slices.Clone(d.dirs) }

// Entries returns the immediate children, files first.
func (d *Dir) Entries() []Entry {
	entries := make([]Entry, 0, d.Len())
	for _, f := range d.files {
		entries = append(entries, f)
	}
	for _, sub := range d.dirs {
		entries = append(entries, sub)
	}
	return entries
}

// Len returns the number of immediate children.
func (d *Dir) Len() int { return len(d.files) + len(d.dirs) }

// GetFile resolves path, relative to d, to a file. A path spelled from d's
// own canonical path is accepted too, so a root embedded as "assets" finds
// both "a.txt" and "assets/a.txt". Paths that are malformed or escape the
// tree are simply not found.
func (d *Dir) GetFile(path string) (*File, bool) {
	canonical, err := common.Canonicalize(path)
	if err != nil {
		return nil, false
	}
	if f, ok := d.fileAt(canonical); ok {
		return f, true
	}
	if rel, ok := d.trimOwnPath(canonical); ok {
		return d.fileAt(rel)
	}
	return nil, false
}

// GetDir resolves path, relative to d, to a directory. The root forms "",
// "." and "/" and d's own canonical path return d itself.
func (d *Dir) GetDir(path string) (*Dir, bool) {
	canonical, err := common.Canonicalize(path)
	if err != nil {
		return nil, false
	}
	if dir, ok := d.descend(common.SplitSegments(canonical)); ok {
		return dir, true
	}
	if rel, ok := d.trimOwnPath(canonical); ok {
		return d.descend(common.SplitSegments(rel))
	}
	return nil, false
}

// Get resolves path to either a directory or a file.
func (d *Dir) Get(path string) (Entry, bool) {
	if dir, ok := d.GetDir(path); ok {
		return dir, true
	}
	if f, ok := d.GetFile(path); ok {
		return f, true
	}
	return nil, false
}

// All returns every descendant of d in depth-first pre-order: the files of a
// directory in order, then each subdirectory followed by its own
// descendants. d itself is not yielded. The sequence can be ranged over any
// number of times.
func (d *Dir) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		d.walk(yield)
	}
}

// Flatten collects the paths of every descendant in the order of All.
func (d *Dir) Flatten() []string {
	var paths []string
	for e := range d.All() {
		paths = append(paths, e.Path())
	}
	return paths
}

func (d *Dir) walk(yield func(Entry) bool) bool {
	for _, f := range d.files {
		if !yield(f) {
			return false
		}
	}
	for _, sub := range d.dirs {
		if !yield(sub) || !sub.walk(yield) {
			return false
		}
	}
	return true
}

func (d *Dir) descend(segments []string) (*Dir, bool) {
	current := d
	for _, segment := range segments {
		next := current.childDir(segment)
		if next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func (d *Dir) childDir(name string) *Dir {
	for _, sub := range d.dirs {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func (d *Dir) fileAt(canonical string) (*File, bool) {
	segments := common.SplitSegments(canonical)
	if len(segments) == 0 {
		return nil, false
	}

	parent, ok := d.descend(segments[:len(segments)-1])
	if !ok {
		return nil, false
	}

	name := segments[len(segments)-1]
	for _, f := range parent.files {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// trimOwnPath rewrites a path spelled from d's canonical path as one
// relative to d.
func (d *Dir) trimOwnPath(canonical string) (string, bool) {
	if d.path == "" {
		return "", false
	}
	if canonical == d.path {
		return "", true
	}
	return strings.CutPrefix(canonical, d.path+common.Separator)
}

// Validate checks the structural invariants of a tree rooted at root: every
// path is canonical and equals its parent's path joined with its name,
// sibling paths are unique, and no directory is reachable twice.
func Validate(root *Dir) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", common.ErrInvalidTree)
	}
	if root.path != "" {
		if c, err := common.Canonicalize(root.path); err != nil || c != root.path {
			return fmt.Errorf("%w: root path %q is not canonical", common.ErrInvalidTree, root.path)
		}
	}
	return validateDir(root, make(map[*Dir]struct{}))
}

func validateDir(d *Dir, seen map[*Dir]struct{}) error {
	if _, ok := seen[d]; ok {
		return fmt.Errorf("%w: directory %q is reachable more than once", common.ErrInvalidTree, d.path)
	}
	seen[d] = struct{}{}

	names := make(map[string]struct{}, d.Len())
	check := func(kind, path string) error {
		name := common.Base(path)
		if name == "" || common.Parent(path) != d.path {
			return fmt.Errorf("%w: %s %q is not a child of %q", common.ErrInvalidTree, kind, path, d.path)
		}
		if c, err := common.Canonicalize(path); err != nil || c != path {
			return fmt.Errorf("%w: %s path %q is not canonical", common.ErrInvalidTree, kind, path)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: duplicate entry %q", common.ErrInvalidTree, path)
		}
		names[name] = struct{}{}
		return nil
	}

	for _, f := range d.files {
		if f == nil {
			return fmt.Errorf("%w: nil file in %q", common.ErrInvalidTree, d.path)
		}
		if err := check("file", f.path); err != nil {
			return err
		}
	}
	for _, sub := range d.dirs {
		if sub == nil {
			return fmt.Errorf("%w: nil directory in %q", common.ErrInvalidTree, d.path)
		}
		if err := check("directory", sub.path); err != nil {
			return err
		}
		if err := validateDir(sub, seen); err != nil {
			return err
		}
	}
	return nil
}
