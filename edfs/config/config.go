package config

import (
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/embedded-dirfs/edfs"

	"github.com/spf13/viper"
)

// Output formats understood by the generator.
const (
	FormatSource   = "source"
	FormatSnapshot = "snapshot"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file, environment variables or
// bound command-line flags.
type Config struct {
	Embed EmbedConfig `mapstructure:"embed"`
}

// EmbedConfig describes one embedding run: which directory to snapshot and
// what Go code to generate for it.
type EmbedConfig struct {
	Root        string   `mapstructure:"root"`
	BaseDir     string   `mapstructure:"baseDir"`
	StripPrefix string   `mapstructure:"stripPrefix"`
	Output      string   `mapstructure:"output"`
	Package     string   `mapstructure:"package"`
	Variable    string   `mapstructure:"variable"`
	Format      string   `mapstructure:"format"`
	Search      bool     `mapstructure:"search"`
	Try         bool     `mapstructure:"try"`
	Exclude     []string `mapstructure:"exclude"`
	IgnoreFile  string   `mapstructure:"ignoreFile"`
	MaxDepth    int      `mapstructure:"maxDepth"`
	Timestamps  bool     `mapstructure:"timestamps"`
	Sort        bool     `mapstructure:"sort"`
	Workers     int      `mapstructure:"workers"`
}

// DefaultEmbedConfig returns the settings used when nothing is configured.
func DefaultEmbedConfig() EmbedConfig {
	return EmbedConfig{
		Root:       ".",
		Output:     internal.DefaultOutputFile,
		Package:    internal.DefaultPackage,
		Variable:   internal.DefaultVariable,
		Format:     internal.DefaultFormat,
		Exclude:    []string{},
		MaxDepth:   internal.DefaultMaxDepth,
		Timestamps: true,
	}
}

// Validate reports every problem with the settings at once.
func (c EmbedConfig) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("embed.root must not be empty"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("embed.output must not be empty"))
	}
	switch c.Format {
	case FormatSource, FormatSnapshot:
	default:
		errs = append(errs, fmt.Errorf("embed.format %q must be %q or %q", c.Format, FormatSource, FormatSnapshot))
	}
	if !token.IsIdentifier(c.Variable) {
		errs = append(errs, fmt.Errorf("embed.variable %q is not a Go identifier", c.Variable))
	}
	if !token.IsIdentifier(c.Package) || c.Package == "_" {
		errs = append(errs, fmt.Errorf("embed.package %q is not a valid package name", c.Package))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("embed.maxDepth must be positive, got %d", c.MaxDepth))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("embed.workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// ResolvedRoot returns Root made absolute against BaseDir. An empty BaseDir
// leaves relative roots relative to the working directory.
func (c EmbedConfig) ResolvedRoot() string {
	return resolveAgainst(c.BaseDir, c.Root)
}

// ResolvedStripPrefix returns StripPrefix resolved like ResolvedRoot, or ""
// when no prefix is configured.
func (c EmbedConfig) ResolvedStripPrefix() string {
	if c.StripPrefix == "" {
		return ""
	}
	return resolveAgainst(c.BaseDir, c.StripPrefix)
}

// ResolvedOutput returns Output resolved like ResolvedRoot.
func (c EmbedConfig) ResolvedOutput() string {
	return resolveAgainst(c.BaseDir, c.Output)
}

func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// NewViper returns a viper instance carrying every default and reading
// EDFS_-prefixed environment variables. Dotted keys map to underscores, so
// embed.baseDir is read from EDFS_EMBED_BASEDIR.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultEmbedConfig()
	v.SetDefault("embed.root", defaults.Root)
	v.SetDefault("embed.baseDir", defaults.BaseDir)
	v.SetDefault("embed.stripPrefix", defaults.StripPrefix)
	v.SetDefault("embed.output", defaults.Output)
	v.SetDefault("embed.package", defaults.Package)
	v.SetDefault("embed.variable", defaults.Variable)
	v.SetDefault("embed.format", defaults.Format)
	v.SetDefault("embed.search", defaults.Search)
	v.SetDefault("embed.try", defaults.Try)
	v.SetDefault("embed.exclude", defaults.Exclude)
	v.SetDefault("embed.ignoreFile", defaults.IgnoreFile)
	v.SetDefault("embed.maxDepth", defaults.MaxDepth)
	v.SetDefault("embed.timestamps", defaults.Timestamps)
	v.SetDefault("embed.sort", defaults.Sort)
	v.SetDefault("embed.workers", defaults.Workers)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // embed.maxDepth becomes EDFS_EMBED_MAXDEPTH
	v.AutomaticEnv()

	return v
}

// Load reads configuration into a Config using v, which may already have
// command-line flags bound to it. With an empty configPath the file edfs.yaml
// is searched for in ".", ".." and internal.DefaultConfigPath; a missing file
// is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName(internal.DefaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	return Load(NewViper(), configPath)
}
