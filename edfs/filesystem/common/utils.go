package common

import (
	"path/filepath"
	"strings"
)

// Separator is the canonical path separator of embedded trees, independent
// of the host platform.
const Separator = "/"

// Canonicalize normalizes p into the canonical form used as the key for
// every lookup and match: forward slashes, no leading separator, no "."
// segments, and ".." resolved against preceding segments.
//
// Both '/' and '\' are accepted as separators. A single trailing separator is
// tolerated so "dir/" addresses "dir". The root is the empty string; "", "."
// and "/" all canonicalize to it.
func Canonicalize(p string) (string, error) {
	if strings.IndexByte(p, 0) >= 0 {
		return "", InvalidPath(p, "contains NUL byte")
	}

	s := strings.ReplaceAll(p, `\`, Separator)
	s = strings.TrimLeft(s, Separator)
	s = strings.TrimSuffix(s, Separator)
	if s == "" {
		return "", nil
	}

	parts := strings.Split(s, Separator)
	out := make([]string, 0, len(parts))
	for _, seg := range parts {
		switch seg {
		case "":
			return "", InvalidPath(p, "contains an empty segment")
		case ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", InvalidPath(p, "escapes the tree root")
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, Separator), nil
}

// SplitSegments splits a canonical path into its segments. The root has none.
func SplitSegments(canonical string) []string {
	if canonical == "" {
		return nil
	}
	return strings.Split(canonical, Separator)
}

// Base returns the last segment of a canonical path.
func Base(canonical string) string {
	if i := strings.LastIndex(canonical, Separator); i >= 0 {
		return canonical[i+1:]
	}
	return canonical
}

// Parent returns the canonical path of the containing directory.
func Parent(canonical string) string {
	if i := strings.LastIndex(canonical, Separator); i >= 0 {
		return canonical[:i]
	}
	return ""
}

// JoinPath appends name to a canonical parent path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Separator + name
}

// Depth returns the number of segments in a canonical path.
func Depth(canonical string) int {
	if canonical == "" {
		return 0
	}
	return strings.Count(canonical, Separator) + 1
}

// ComparePaths orders two paths by their canonical forms. Paths that fail to
// canonicalize are compared as given.
func ComparePaths(a, b string) int {
	if ca, err := Canonicalize(a); err == nil {
		a = ca
	}
	if cb, err := Canonicalize(b); err == nil {
		b = cb
	}
	return strings.Compare(a, b)
}

// SamePath reports whether a and b address the same entry.
func SamePath(a, b string) bool {
	return ComparePaths(a, b) == 0
}

// RelativeTo expresses the filesystem path target relative to base in
// canonical form. It fails with ErrStripPrefix when target is not under base.
func RelativeTo(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", WrapKind(ErrStripPrefix, "relative path", target, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", WrapKind(ErrStripPrefix, "relative path", target, nil)
	}
	return rel, nil
}
