package trees

// Entry is a node of an embedded tree: either a *File or a *Dir. The set of
// implementations is closed.
type Entry interface {
	// Path is the canonical path of the entry relative to the embedding root.
	Path() string
	// Name is the last segment of Path.
	Name() string
	IsDir() bool

	entry()
}

// TreeMetrics holds statistical information about an embedded tree
type TreeMetrics struct {
	TotalNodes int64 // directories and files, including the root
	TotalFiles int64
	TotalDirs  int64 // including the root
	TotalSize  int64 // sum of file contents in bytes
	MaxDepth   int   // deepest entry, counted in path segments
}

var (
	_ Entry = (*File)(nil)
	_ Entry = (*Dir)(nil)
)
