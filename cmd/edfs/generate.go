package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/generator"

	"github.com/spf13/cobra"
)

// generateFlags maps each generate flag to its configuration key.
var generateFlags = map[string]string{
	"root":         "embed.root",
	"base-dir":     "embed.baseDir",
	"strip-prefix": "embed.stripPrefix",
	"output":       "embed.output",
	"package":      "embed.package",
	"var":          "embed.variable",
	"format":       "embed.format",
	"search":       "embed.search",
	"try":          "embed.try",
	"exclude":      "embed.exclude",
	"ignore-file":  "embed.ignoreFile",
	"max-depth":    "embed.maxDepth",
	"timestamps":   "embed.timestamps",
	"sort":         "embed.sort",
	"workers":      "embed.workers",
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Embed a directory into a generated Go file",
		Long: `Read a directory recursively and write a Go file declaring it as an
embedded tree. Flags override edfs.yaml and EDFS_EMBED_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger := opts.logger()
			result, err := generator.New(cfg.Embed, generator.WithLogger(logger)).Generate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.BuildErr != nil {
				fmt.Fprintf(out, "wrote %s (embedding failed: %v)\n", result.OutputPath, result.BuildErr)
				return nil
			}
			fmt.Fprintf(out, "wrote %s: %d files, %d directories, %d bytes\n",
				result.OutputPath, result.Metrics.TotalFiles, result.Metrics.TotalDirs, result.Metrics.TotalSize)
			if result.SnapshotPath != "" {
				fmt.Fprintf(out, "wrote %s\n", result.SnapshotPath)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("root", ".", "directory to embed")
	flags.String("base-dir", "", "directory relative paths are resolved against (default: working directory)")
	flags.String("strip-prefix", "", "path prefix removed from embedded paths (default: the root)")
	flags.StringP("output", "o", "", "generated Go file")
	flags.String("package", "", "package name of the generated file")
	flags.String("var", "", "name of the generated variable")
	flags.String("format", "", `output format: "source" or "snapshot"`)
	flags.Bool("search", false, "also generate a Find<Var> glob search helper")
	flags.Bool("try", false, "record build failures in the generated file instead of failing")
	flags.StringSlice("exclude", nil, "gitignore-style pattern to skip (repeatable)")
	flags.String("ignore-file", "", "gitignore-style file of patterns to skip, relative to the root")
	flags.Int("max-depth", 0, "maximum directory nesting")
	flags.Bool("timestamps", true, "capture file modification times")
	flags.Bool("sort", false, "order entries by name for reproducible output")
	flags.Int("workers", 0, "concurrent file reads per directory (default: based on CPU count)")

	for name, key := range generateFlags {
		if err := opts.viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	return cmd
}
