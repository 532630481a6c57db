package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/config"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"
)

// Import paths referenced by generated code.
const (
	TreesImportPath  = "github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"
	SearchImportPath = "github.com/ZanzyTHEbar/embedded-dirfs/edfs/search"
)

// Render produces the Go source declaring tree under cfg.Variable. In source
// format the tree is written out as a literal; in snapshot format the file
// embeds SnapshotFileName(cfg) and decodes it lazily, and the snapshot itself
// comes from trees.EncodeSnapshot.
func Render(tree *trees.Dir, cfg config.EmbedConfig) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("render %s: nil tree", cfg.Variable)
	}
	data := baseTemplateData(cfg)
	data.ErrExpr = "nil"

	if data.Snapshot {
		data.StdImports = append(data.StdImports, `_ "embed"`, `"sync"`)
	} else {
		var expr strings.Builder
		usesTime := writeDir(&expr, tree)
		data.TreeExpr = expr.String()
		if usesTime {
			data.StdImports = append(data.StdImports, `"time"`)
		}
	}
	return execute(data)
}

// RenderFailure produces the Go source for a build that failed in try mode:
// the tree variable is nil and <Variable>Err carries the message.
func RenderFailure(cause error, cfg config.EmbedConfig) ([]byte, error) {
	data := baseTemplateData(cfg)
	data.Failed = true
	data.Try = true
	data.TreeExpr = "nil"
	data.ErrExpr = fmt.Sprintf("errors.New(%s)", strconv.Quote(cause.Error()))
	data.StdImports = append(data.StdImports, `"errors"`)
	return execute(data)
}

// SnapshotFileName is the name of the JSON snapshot written next to the
// generated file in snapshot format.
func SnapshotFileName(cfg config.EmbedConfig) string {
	return filepath.Base(cfg.Output) + ".json"
}

func baseTemplateData(cfg config.EmbedConfig) templateData {
	data := templateData{
		Package:    cfg.Package,
		Variable:   cfg.Variable,
		Snapshot:   cfg.Format == config.FormatSnapshot,
		Try:        cfg.Try,
		Search:     cfg.Search,
		PkgImports: []string{strconv.Quote(TreesImportPath)},
		RootExpr:   cfg.Variable,
	}
	if data.Snapshot {
		data.SnapshotFile = SnapshotFileName(cfg)
		data.SnapshotVar = snapshotVarName(cfg.Variable)
		data.RootExpr = cfg.Variable + "()"
	}
	if data.Search {
		data.StdImports = append(data.StdImports, `"iter"`)
		data.PkgImports = append(data.PkgImports, strconv.Quote(SearchImportPath))
	}
	return data
}

// snapshotVarName derives the unexported byte slice holding the snapshot.
func snapshotVarName(variable string) string {
	r, size := utf8.DecodeRuneInString(variable)
	return "embedded" + string(unicode.ToUpper(r)) + variable[size:] + "Snapshot"
}

func execute(data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", data.Variable, err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code for %s: %w", data.Variable, err)
	}
	return formatted, nil
}

// writeDir writes d as a trees.NewDir expression and reports whether any
// file carries a timestamp, which makes the output import "time".
func writeDir(b *strings.Builder, d *trees.Dir) bool {
	usesTime := false

	b.WriteString("trees.NewDir(")
	b.WriteString(strconv.Quote(d.Path()))
	b.WriteString(", ")

	files := d.Files()
	if len(files) == 0 {
		b.WriteString("nil")
	} else {
		b.WriteString("[]*trees.File{\n")
		for _, f := range files {
			if writeFile(b, f) {
				usesTime = true
			}
			b.WriteString(",\n")
		}
		b.WriteString("}")
	}
	b.WriteString(", ")

	dirs := d.Dirs()
	if len(dirs) == 0 {
		b.WriteString("nil")
	} else {
		b.WriteString("[]*trees.Dir{\n")
		for _, sub := range dirs {
			if writeDir(b, sub) {
				usesTime = true
			}
			b.WriteString(",\n")
		}
		b.WriteString("}")
	}
	b.WriteString(")")
	return usesTime
}

func writeFile(b *strings.Builder, f *trees.File) bool {
	b.WriteString("trees.NewFile(")
	b.WriteString(strconv.Quote(f.Path()))
	b.WriteString(", ")
	b.WriteString(strconv.Quote(f.String()))
	b.WriteString(", ")

	usesTime := false
	if md, ok := f.Metadata(); !ok {
		b.WriteString("nil")
	} else if modified, ok := md.ModifiedAt(); ok {
		fmt.Fprintf(b, "trees.NewMetadata(time.Unix(%d, %d))", modified.Unix(), modified.Nanosecond())
		usesTime = true
	} else {
		b.WriteString("trees.EmptyMetadata()")
	}
	b.WriteString(")")
	return usesTime
}
