// Package common contains the path and error primitives shared by the
// embedded tree model, the tree builder and the glob search engine.
//
// Paths stored in an embedded tree are always canonical (see Canonicalize),
// so equality of canonical strings is equality of entries.
package common
