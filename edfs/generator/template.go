package generator

import "text/template"

// fileTemplate lays out a generated file. The tree literal is produced by
// writeDir and passed in as TreeExpr; go/format tidies the result.
var fileTemplate = template.Must(template.New("embedded").Parse(`// Code generated by edfs; DO NOT EDIT.

package {{.Package}}

import (
{{- range .StdImports}}
	{{.}}
{{- end}}
{{if .PkgImports}}
{{- range .PkgImports}}
	{{.}}
{{- end}}
{{- end}}
)
{{if and .Snapshot .Failed}}
// {{.Variable}} returns nil because embedding failed; see {{.Variable}}Err.
var {{.Variable}} = func() *trees.Dir { return nil }
{{else if .Snapshot}}
//go:embed {{.SnapshotFile}}
var {{.SnapshotVar}} []byte

// {{.Variable}} returns the embedded directory tree, decoding it on first use.
var {{.Variable}} = sync.OnceValue(func() *trees.Dir {
	return trees.MustDecodeSnapshot({{.SnapshotVar}})
})
{{else}}
// {{.Variable}} is the embedded directory tree.
var {{.Variable}}{{if .Try}} *trees.Dir{{end}} = {{.TreeExpr}}
{{end}}
{{- if .Try}}
// {{.Variable}}Err reports why embedding failed. It is nil on success.
var {{.Variable}}Err error = {{.ErrExpr}}
{{end}}
{{- if .Search}}
// Find{{.Variable}} returns the entries of the embedded tree whose path
// matches the glob pattern, in depth-first pre-order.
func Find{{.Variable}}(pattern string) (iter.Seq[trees.Entry], error) {
	return search.Find({{.RootExpr}}, pattern)
}
{{end}}`))

// templateData feeds fileTemplate.
type templateData struct {
	Package      string
	StdImports   []string
	PkgImports   []string
	Variable     string
	Snapshot     bool
	SnapshotFile string
	SnapshotVar  string
	Failed       bool
	Try          bool
	TreeExpr     string
	ErrExpr      string
	Search       bool
	RootExpr     string
}
