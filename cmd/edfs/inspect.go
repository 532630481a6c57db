package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/search"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	get    string
	find   string
	prefix string
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	inspect := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Query a snapshot written by generate --format snapshot",
		Long: `Load a JSON snapshot and print what it contains.

Without flags the tree metrics and every path are printed in traversal order.
--get prints one file's contents or one directory's listing, --find prints the
paths matching a glob pattern and --prefix prints the paths starting with a
prefix in lexical order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			root, err := trees.DecodeSnapshot(data)
			if err != nil {
				return fmt.Errorf("failed to load snapshot %s: %w", args[0], err)
			}
			logger.Debug().Str("path", args[0]).Int("bytes", len(data)).Msg("Snapshot loaded")

			return inspect.run(cmd.OutOrStdout(), root)
		},
	}

	cmd.Flags().StringVar(&inspect.get, "get", "", "print the file or directory at this path")
	cmd.Flags().StringVar(&inspect.find, "find", "", "print paths matching this glob pattern")
	cmd.Flags().StringVar(&inspect.prefix, "prefix", "", "print paths starting with this prefix")
	cmd.MarkFlagsMutuallyExclusive("get", "find", "prefix")

	return cmd
}

func (o *inspectOptions) run(out io.Writer, root *trees.Dir) error {
	switch {
	case o.get != "":
		return printEntry(out, root, o.get)
	case o.find != "":
		seq, err := search.Find(root, o.find)
		if err != nil {
			return err
		}
		for e := range seq {
			fmt.Fprintln(out, displayPath(e))
		}
		return nil
	case o.prefix != "":
		for _, e := range trees.NewPathIndex(root).PrefixLookup(o.prefix) {
			fmt.Fprintln(out, displayPath(e))
		}
		return nil
	}

	metrics := trees.ComputeMetrics(root)
	fmt.Fprintf(out, "files: %d\ndirs: %d\nbytes: %d\nmax depth: %d\n\n",
		metrics.TotalFiles, metrics.TotalDirs, metrics.TotalSize, metrics.MaxDepth)
	for e := range root.All() {
		fmt.Fprintln(out, displayPath(e))
	}
	return nil
}

func printEntry(out io.Writer, root *trees.Dir, path string) error {
	e, ok := root.Get(path)
	if !ok {
		return common.WrapKind(common.ErrNotFound, "get", path, nil)
	}
	switch v := e.(type) {
	case *trees.File:
		_, err := out.Write(v.Contents())
		return err
	case *trees.Dir:
		for _, child := range v.Entries() {
			fmt.Fprintln(out, displayPath(child))
		}
	}
	return nil
}

// displayPath marks directories with a trailing slash.
func displayPath(e trees.Entry) string {
	if e.IsDir() && e.Path() != "" {
		return e.Path() + "/"
	}
	return e.Path()
}
