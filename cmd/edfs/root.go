package main

import (
	"fmt"

	internal "github.com/ZanzyTHEbar/embedded-dirfs/edfs"
	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgFile string
	verbose bool
	viper   *viper.Viper
}

// logger returns the CLI logger at the level selected by --verbose.
func (o *rootOptions) logger() zerolog.Logger {
	if o.verbose {
		return internal.GetLoggerWithLevel(zerolog.DebugLevel)
	}
	return internal.GetLoggerWithLevel(zerolog.InfoLevel)
}

// loadConfig reads the config file and environment through the shared
// viper instance, which also carries any bound flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.viper, o.cfgFile)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{viper: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   internal.DefaultAppCMDShortCut,
		Short: "Embed a directory tree into Go source at build time",
		Long: `edfs snapshots a directory into generated Go code so a program can look up
files by path and search them with glob patterns at runtime, without touching
the filesystem.

Examples:
  edfs generate --root assets --package web --var Assets
  edfs generate --format snapshot --search
  edfs inspect assets_gen.go.json --find "**/*.css"

Typical use is a go:generate directive:
  //go:generate go run github.com/ZanzyTHEbar/embedded-dirfs/cmd/edfs generate --root assets`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./edfs.yaml or $HOME/.config/edfs/edfs.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))

	return rootCmd
}
