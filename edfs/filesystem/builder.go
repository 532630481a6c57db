package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/embedded-dirfs/edfs"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/trees"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/iter"
)

// TreeBuilder snapshots a directory on disk into an immutable embedded tree.
// A builder holds only configuration and may be reused.
type TreeBuilder struct {
	logger         zerolog.Logger
	maxDepth       int
	workers        int
	timestamps     bool
	sorted         bool
	ignorePatterns []string
	ignoreFile     string
}

// BuilderOption configures a TreeBuilder.
type BuilderOption func(*TreeBuilder)

// WithLogger sets the logger used for progress and skipped entries.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *TreeBuilder) { b.logger = logger }
}

// WithMaxDepth bounds how many directory levels below the root are
// descended. Values below 1 are ignored.
func WithMaxDepth(depth int) BuilderOption {
	return func(b *TreeBuilder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// WithIgnorePatterns skips entries matching any of the gitignore-style
// patterns. Patterns are matched against paths relative to the build root.
func WithIgnorePatterns(patterns ...string) BuilderOption {
	return func(b *TreeBuilder) { b.ignorePatterns = append(b.ignorePatterns, patterns...) }
}

// WithIgnoreFile reads additional gitignore-style patterns from path.
func WithIgnoreFile(path string) BuilderOption {
	return func(b *TreeBuilder) { b.ignoreFile = path }
}

// WithTimestamps controls whether file modification times are captured.
func WithTimestamps(enabled bool) BuilderOption {
	return func(b *TreeBuilder) { b.timestamps = enabled }
}

// WithWorkers sets how many files of one directory are read concurrently.
// Values below 1 keep the default.
func WithWorkers(workers int) BuilderOption {
	return func(b *TreeBuilder) {
		if workers > 0 {
			b.workers = workers
		}
	}
}

// WithSortedEntries orders files and subdirectories by name instead of the
// filesystem's enumeration order.
func WithSortedEntries(sorted bool) BuilderOption {
	return func(b *TreeBuilder) { b.sorted = sorted }
}

// NewTreeBuilder returns a builder with timestamps enabled, a depth limit of
// internal.DefaultMaxDepth and internal.DefaultWorkers concurrent reads.
func NewTreeBuilder(opts ...BuilderOption) *TreeBuilder {
	b := &TreeBuilder{
		logger:     zerolog.Nop(),
		maxDepth:   internal.DefaultMaxDepth,
		workers:    internal.DefaultWorkers(),
		timestamps: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IgnoreChecker decides whether a root-relative, slash-separated path is
// excluded from the tree. *ignore.GitIgnore satisfies it.
type IgnoreChecker interface {
	MatchesPath(path string) bool
}

// buildState is the per-call context of FromDisk.
type buildState struct {
	root        string
	stripPrefix string
	ignorer     IgnoreChecker
	files       int
	dirs        int
	bytes       int64
}

// fileJob is one regular file waiting to be read.
type fileJob struct {
	diskPath string
	relPath  string
}

// FromDisk reads the directory root recursively. Entry paths are expressed
// relative to stripPrefix, which defaults to root itself when empty, so the
// returned root directory normally has the path "".
//
// Any failure aborts the build: a missing root wraps common.ErrNotFound, read
// failures and a root that is not a directory wrap common.ErrIo, entries
// outside stripPrefix wrap common.ErrStripPrefix and nesting deeper than the
// configured limit wraps common.ErrMaxDepth. Errors name the offending path.
func (b *TreeBuilder) FromDisk(ctx context.Context, root, stripPrefix string) (*trees.Dir, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, common.WrapKind(common.ErrIo, "resolve root", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.WrapKind(common.ErrNotFound, "stat root", absRoot, err)
		}
		return nil, common.WrapKind(common.ErrIo, "stat root", absRoot, err)
	}
	if !info.IsDir() {
		return nil, common.WrapKind(common.ErrIo, "embed root", absRoot, errors.New("not a directory"))
	}

	absStrip := absRoot
	if stripPrefix != "" {
		if absStrip, err = filepath.Abs(stripPrefix); err != nil {
			return nil, common.WrapKind(common.ErrStripPrefix, "resolve strip prefix", stripPrefix, err)
		}
	}

	ignorer, err := b.compileIgnore()
	if err != nil {
		return nil, err
	}

	state := &buildState{
		root:        absRoot,
		stripPrefix: absStrip,
		ignorer:     ignorer,
	}

	b.logger.Debug().
		Str("root", absRoot).
		Str("strip_prefix", absStrip).
		Int("max_depth", b.maxDepth).
		Int("workers", b.workers).
		Msg("Building embedded tree")

	dir, err := b.buildDir(ctx, state, absRoot, 0)
	if err != nil {
		return nil, err
	}

	b.logger.Info().
		Str("root", absRoot).
		Int("files", state.files).
		Int("dirs", state.dirs).
		Int64("bytes", state.bytes).
		Dur("elapsed", time.Since(start)).
		Msg("Embedded tree built")

	return dir, nil
}

func (b *TreeBuilder) compileIgnore() (IgnoreChecker, error) {
	if b.ignoreFile != "" {
		ignorer, err := ignore.CompileIgnoreFileAndLines(b.ignoreFile, b.ignorePatterns...)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, common.WrapKind(common.ErrNotFound, "read ignore file", b.ignoreFile, err)
			}
			return nil, common.WrapKind(common.ErrIo, "read ignore file", b.ignoreFile, err)
		}
		return ignorer, nil
	}
	if len(b.ignorePatterns) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(b.ignorePatterns...), nil
}

// ignored reports whether the entry at diskPath is excluded. Directories are
// matched with a trailing slash so patterns such as "build/" apply to them.
func (s *buildState) ignored(diskPath string, isDir bool) bool {
	if s.ignorer == nil {
		return false
	}
	rel, err := filepath.Rel(s.root, diskPath)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += common.Separator
	}
	return s.ignorer.MatchesPath(rel)
}

func (b *TreeBuilder) buildDir(ctx context.Context, state *buildState, diskPath string, depth int) (*trees.Dir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > b.maxDepth {
		return nil, common.WrapKind(common.ErrMaxDepth, "descend", diskPath, nil)
	}

	relPath, err := common.RelativeTo(state.stripPrefix, diskPath)
	if err != nil {
		return nil, err
	}

	entries, err := b.readDir(diskPath)
	if err != nil {
		return nil, err
	}

	var (
		jobs    []fileJob
		subdirs []string
	)
	for _, entry := range entries {
		childDisk := filepath.Join(diskPath, entry.Name())

		isDir, isFile, err := resolveType(childDisk, entry)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, common.WrapKind(common.ErrIo, "stat", childDisk, err)
			}
			b.logger.Warn().Err(err).Str("path", childDisk).Msg("Skipping dangling symlink")
			continue
		}
		if !isDir && !isFile {
			b.logger.Debug().Str("path", childDisk).Str("mode", entry.Type().String()).Msg("Skipping special file")
			continue
		}
		if state.ignored(childDisk, isDir) {
			b.logger.Debug().Str("path", childDisk).Msg("Ignoring entry")
			continue
		}

		if isDir {
			subdirs = append(subdirs, childDisk)
			continue
		}
		childRel, err := common.RelativeTo(state.stripPrefix, childDisk)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, fileJob{diskPath: childDisk, relPath: childRel})
	}

	files, err := b.readFiles(ctx, jobs)
	if err != nil {
		return nil, err
	}

	dirs := make([]*trees.Dir, 0, len(subdirs))
	for _, sub := range subdirs {
		child, err := b.buildDir(ctx, state, sub, depth+1)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, child)
	}

	state.dirs++
	state.files += len(files)
	for _, f := range files {
		state.bytes += f.Size()
	}

	b.logger.Debug().
		Str("path", relPath).
		Int("files", len(files)).
		Int("dirs", len(dirs)).
		Int("depth", depth).
		Msg("Directory embedded")

	return trees.NewDir(relPath, files, dirs), nil
}

// readDir lists diskPath in enumeration order, or by name when sorting is
// enabled. The handle is closed before returning.
func (b *TreeBuilder) readDir(diskPath string) ([]fs.DirEntry, error) {
	handle, err := os.Open(diskPath)
	if err != nil {
		return nil, common.WrapKind(common.ErrIo, "open directory", diskPath, err)
	}
	defer handle.Close()

	entries, err := handle.ReadDir(-1)
	if err != nil {
		return nil, common.WrapKind(common.ErrIo, "read directory", diskPath, err)
	}
	if b.sorted {
		slices.SortFunc(entries, func(x, y fs.DirEntry) int {
			return strings.Compare(x.Name(), y.Name())
		})
	}
	return entries, nil
}

// readFiles loads every job concurrently. The result keeps the order of jobs.
func (b *TreeBuilder) readFiles(ctx context.Context, jobs []fileJob) ([]*trees.File, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	mapper := iter.Mapper[fileJob, *trees.File]{MaxGoroutines: b.workers}
	return mapper.MapErr(jobs, func(job *fileJob) (*trees.File, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return b.readFile(job)
	})
}

func (b *TreeBuilder) readFile(job *fileJob) (*trees.File, error) {
	contents, err := os.ReadFile(job.diskPath)
	if err != nil {
		return nil, common.WrapKind(common.ErrIo, "read file", job.diskPath, err)
	}

	var metadata *trees.Metadata
	if b.timestamps {
		metadata = trees.EmptyMetadata()
		if info, err := os.Stat(job.diskPath); err == nil {
			metadata = trees.NewMetadata(info.ModTime())
		} else {
			b.logger.Debug().Err(err).Str("path", job.diskPath).Msg("Modification time unavailable")
		}
	}

	return trees.NewFile(job.relPath, string(contents), metadata), nil
}

// resolveType classifies an entry, following symlinks to their target.
func resolveType(diskPath string, entry fs.DirEntry) (isDir, isFile bool, err error) {
	mode := entry.Type()
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(diskPath)
		if err != nil {
			return false, false, err
		}
		mode = info.Mode()
	}
	return mode.IsDir(), mode.IsRegular(), nil
}
