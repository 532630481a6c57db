package trees

import (
	"strings"
	"sync/atomic"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"

	"github.com/armon/go-radix"
)

// PathIndexStats reports the size of a path index and how it has been used
type PathIndexStats struct {
	TotalNodes       int64
	PathLookups      int64
	PrefixLookups    int64
	AveragePathDepth float64
}

// PathIndex provides O(k) path lookups over an embedded tree using a
// compressed trie (patricia tree), where k is the length of the path being
// searched, not the number of entries. Every entry is keyed by its canonical
// path relative to the indexed root, which is keyed by "". For a root built
// with a strip prefix above it (root path "assets"), "assets/a.txt" is keyed
// as "a.txt".
//
// The index is built once and never modified, so it is safe for concurrent
// use without locking.
type PathIndex struct {
	tree          *radix.Tree
	root          *Dir
	totalDepth    int64
	pathLookups   atomic.Int64
	prefixLookups atomic.Int64
}

// NewPathIndex indexes every entry of the tree rooted at root.
func NewPathIndex(root *Dir) *PathIndex {
	idx := &PathIndex{
		tree: radix.New(),
		root: root,
	}
	if root == nil {
		return idx
	}

	idx.insert(root)
	for e := range root.All() {
		idx.insert(e)
	}
	return idx
}

func (idx *PathIndex) insert(e Entry) {
	key := idx.key(e.Path())
	idx.tree.Insert(key, e)
	idx.totalDepth += int64(common.Depth(key))
}

// key strips the root's own path from the canonical path of one of its
// entries.
func (idx *PathIndex) key(path string) string {
	base := idx.root.Path()
	if base == "" {
		return path
	}
	if path == base {
		return ""
	}
	return strings.TrimPrefix(path, base+common.Separator)
}

// Root returns the directory the index was built from.
func (idx *PathIndex) Root() *Dir { return idx.root }

// Lookup finds an entry by path. The path is canonicalized first; malformed
// paths are not found.
func (idx *PathIndex) Lookup(path string) (Entry, bool) {
	idx.pathLookups.Add(1)

	canonical, err := common.Canonicalize(path)
	if err != nil {
		return nil, false
	}
	return idx.get(canonical)
}

// LookupFile finds a file by path.
func (idx *PathIndex) LookupFile(path string) (*File, bool) {
	e, ok := idx.Lookup(path)
	if !ok {
		return nil, false
	}
	f, ok := e.(*File)
	return f, ok
}

// LookupDir finds a directory by path.
func (idx *PathIndex) LookupDir(path string) (*Dir, bool) {
	e, ok := idx.Lookup(path)
	if !ok {
		return nil, false
	}
	d, ok := e.(*Dir)
	return d, ok
}

func (idx *PathIndex) get(canonical string) (Entry, bool) {
	value, found := idx.tree.Get(canonical)
	if !found {
		return nil, false
	}
	return value.(Entry), true
}

// PrefixLookup returns every entry whose canonical path starts with prefix,
// in lexical path order. The prefix is matched as a string, so "src/ma"
// finds "src/main.go".
func (idx *PathIndex) PrefixLookup(prefix string) []Entry {
	idx.prefixLookups.Add(1)

	var results []Entry
	idx.tree.WalkPrefix(normalizePrefix(prefix), func(key string, value interface{}) bool {
		results = append(results, value.(Entry))
		return false // Continue walking
	})
	return results
}

// Children returns the immediate children of the directory at dirPath in
// lexical path order. It returns nil when dirPath is not a directory.
func (idx *PathIndex) Children(dirPath string) []Entry {
	dir, ok := idx.LookupDir(dirPath)
	if !ok {
		return nil
	}

	prefix := idx.key(dir.Path())
	if prefix != "" {
		prefix += common.Separator
	}

	var children []Entry
	idx.tree.WalkPrefix(prefix, func(key string, value interface{}) bool {
		remaining := strings.TrimPrefix(key, prefix)
		// Only include direct children (no additional slashes after parent)
		if remaining != "" && !strings.Contains(remaining, common.Separator) {
			children = append(children, value.(Entry))
		}
		return false
	})
	return children
}

// Len returns the number of indexed entries, the root included.
func (idx *PathIndex) Len() int {
	return idx.tree.Len()
}

// Stats returns a snapshot of the index statistics
func (idx *PathIndex) Stats() PathIndexStats {
	stats := PathIndexStats{
		TotalNodes:    int64(idx.tree.Len()),
		PathLookups:   idx.pathLookups.Load(),
		PrefixLookups: idx.prefixLookups.Load(),
	}
	if stats.TotalNodes > 0 {
		stats.AveragePathDepth = float64(idx.totalDepth) / float64(stats.TotalNodes)
	}
	return stats
}

// normalizePrefix brings a partial path into canonical separator form
// without resolving segments, since the last segment may be incomplete.
func normalizePrefix(prefix string) string {
	normalized := strings.ReplaceAll(prefix, `\`, common.Separator)
	return strings.TrimLeft(normalized, common.Separator)
}
