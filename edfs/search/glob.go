// Package search finds entries of an embedded tree by glob pattern.
//
// Patterns use doublestar syntax over canonical paths: '*' and '?' stay
// within a segment, "**" spans zero or more segments, "[...]" is a character
// class and "{a,b}" an alternation. Directories match like files, so "src"
// finds the directory and "src/**" finds it together with everything below.
package search

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a validated glob pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw string
}

// Compile validates pattern. Malformed patterns, such as an unterminated
// character class, fail with an error wrapping common.ErrBadPattern.
func Compile(pattern string) (*Pattern, error) {
	p := strings.TrimPrefix(pattern, common.Separator)
	if !doublestar.ValidatePattern(p) {
		return nil, fmt.Errorf("%w: %q: %w", common.ErrBadPattern, pattern, doublestar.ErrBadPattern)
	}
	return &Pattern{raw: p}, nil
}

// MustCompile is Compile for patterns known to be valid.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as it is matched.
func (p *Pattern) String() string { return p.raw }

// Match reports whether the canonical path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return doublestar.MatchUnvalidated(p.raw, path)
}

// Find returns the entries below root whose path matches, in the pre-order of
// (*trees.Dir).All. Entries are produced on demand and the sequence can be
// ranged over again from the start.
func (p *Pattern) Find(root *trees.Dir) iter.Seq[trees.Entry] {
	return func(yield func(trees.Entry) bool) {
		if root == nil {
			return
		}
		for e := range root.All() {
			if !p.Match(e.Path()) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Find compiles pattern and returns the matching entries below root. An
// invalid pattern fails here, before anything is visited.
func Find(root *trees.Dir, pattern string) (iter.Seq[trees.Entry], error) {
	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return p.Find(root), nil
}

// Collect gathers every match of pattern below root.
func Collect(root *trees.Dir, pattern string) ([]trees.Entry, error) {
	seq, err := Find(root, pattern)
	if err != nil {
		return nil, err
	}
	var matches []trees.Entry
	for e := range seq {
		matches = append(matches, e)
	}
	return matches, nil
}

// Paths gathers the paths of every match of pattern below root.
func Paths(root *trees.Dir, pattern string) ([]string, error) {
	matches, err := Collect(root, pattern)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matches))
	for _, e := range matches {
		paths = append(paths, e.Path())
	}
	return paths, nil
}
