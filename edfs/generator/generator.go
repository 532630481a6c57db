// Package generator turns a directory on disk into Go source that embeds it.
// It runs at build time, typically from a go:generate directive, and is the
// only place the tree builder is used.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/config"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Result describes a completed generation run.
type Result struct {
	OutputPath   string
	SnapshotPath string // empty unless the snapshot format was used
	Metrics      trees.TreeMetrics
	Elapsed      time.Duration
	// BuildErr is the embedding failure recorded in the output in try mode.
	BuildErr error
}

// Generator embeds one directory according to an EmbedConfig.
type Generator struct {
	cfg     config.EmbedConfig
	logger  zerolog.Logger
	builder *filesystem.TreeBuilder
	fs      afero.Fs
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for the generator and the default builder.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithBuilder replaces the tree builder derived from the configuration.
func WithBuilder(builder *filesystem.TreeBuilder) Option {
	return func(g *Generator) { g.builder = builder }
}

// WithOutputFs sets the filesystem generated files are written to. The
// directory being embedded is always read from the OS.
func WithOutputFs(fs afero.Fs) Option {
	return func(g *Generator) { g.fs = fs }
}

// New returns a generator for cfg.
func New(cfg config.EmbedConfig, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		logger: zerolog.Nop(),
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.builder == nil {
		g.builder = NewBuilder(cfg, g.logger)
	}
	return g
}

// NewBuilder returns a tree builder configured from cfg.
func NewBuilder(cfg config.EmbedConfig, logger zerolog.Logger) *filesystem.TreeBuilder {
	opts := []filesystem.BuilderOption{
		filesystem.WithLogger(logger),
		filesystem.WithMaxDepth(cfg.MaxDepth),
		filesystem.WithTimestamps(cfg.Timestamps),
		filesystem.WithSortedEntries(cfg.Sort),
		filesystem.WithWorkers(cfg.Workers),
	}
	if len(cfg.Exclude) > 0 {
		opts = append(opts, filesystem.WithIgnorePatterns(cfg.Exclude...))
	}
	if cfg.IgnoreFile != "" {
		ignoreFile := cfg.IgnoreFile
		if !filepath.IsAbs(ignoreFile) {
			ignoreFile = filepath.Join(cfg.ResolvedRoot(), ignoreFile)
		}
		opts = append(opts, filesystem.WithIgnoreFile(ignoreFile))
	}
	return filesystem.NewTreeBuilder(opts...)
}

// Generate builds the tree and writes the generated file, plus the JSON
// snapshot in snapshot format. A build failure is returned unless the
// configuration asks for try mode, in which case it is recorded in the
// generated file and in Result.BuildErr.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	root := g.cfg.ResolvedRoot()
	result := &Result{OutputPath: g.cfg.ResolvedOutput()}

	g.logger.Debug().
		Str("root", root).
		Str("output", result.OutputPath).
		Str("format", g.cfg.Format).
		Msg("Generating embedded tree")

	tree, buildErr := g.builder.FromDisk(ctx, root, g.cfg.ResolvedStripPrefix())
	if buildErr != nil {
		if !g.cfg.Try {
			return nil, fmt.Errorf("couldn't load the directory %s: %w", root, buildErr)
		}
		g.logger.Warn().Err(buildErr).Str("root", root).Msg("Embedding failed, recording error in generated code")
		result.BuildErr = buildErr

		source, err := RenderFailure(fmt.Errorf("couldn't load the directory: %w", buildErr), g.cfg)
		if err != nil {
			return nil, err
		}
		if err := g.write(result.OutputPath, source); err != nil {
			return nil, err
		}
		result.Elapsed = time.Since(start)
		return result, nil
	}

	result.Metrics = trees.ComputeMetrics(tree)

	if g.cfg.Format == config.FormatSnapshot {
		snapshot, err := trees.EncodeSnapshot(tree)
		if err != nil {
			return nil, err
		}
		result.SnapshotPath = filepath.Join(filepath.Dir(result.OutputPath), SnapshotFileName(g.cfg))
		if err := g.write(result.SnapshotPath, snapshot); err != nil {
			return nil, err
		}
	}

	source, err := Render(tree, g.cfg)
	if err != nil {
		return nil, err
	}
	if err := g.write(result.OutputPath, source); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	g.logger.Info().
		Str("output", result.OutputPath).
		Int64("files", result.Metrics.TotalFiles).
		Int64("dirs", result.Metrics.TotalDirs).
		Int64("bytes", result.Metrics.TotalSize).
		Dur("elapsed", result.Elapsed).
		Msg("Generated embedded tree")

	return result, nil
}

// write replaces path atomically: data goes to a temporary file in the same
// directory which is then renamed over the target.
func (g *Generator) write(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(g.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = g.fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = g.fs.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = g.fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move generated file into place at %s: %w", path, err)
	}
	return nil
}
