package internal

import (
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is the name used for config lookup and env prefixes
	DefaultAppName        = "edfs"
	DefaultAppCMDShortCut = "edfs"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultConfigName     = "edfs"
	DefaultEnvPrefix      = "EDFS"

	// Default embedding settings
	DefaultOutputFile = "embedded_gen.go"
	DefaultPackage    = "main"
	DefaultVariable   = "Embedded"
	DefaultFormat     = "source"
	DefaultMaxDepth   = 64
)

// DefaultWorkers returns the worker count used for concurrent file reads.
// Reads are I/O bound, so twice the CPU count, clamped to [4, 32].
func DefaultWorkers() int {
	return min(max(runtime.NumCPU()*2, 4), 32)
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// GetLoggerWithLevel returns GetLogger filtered to the given level.
func GetLoggerWithLevel(level zerolog.Level) zerolog.Logger {
	return GetLogger().Level(level)
}
