// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/marcmerge/pkg/merge"
)

// Interface defines the application context that commands need.
type Interface interface {
	// Merger returns a merger for the given rules file, or for the configured
	// merge_config when path is empty. Mergers are cached per path.
	Merger(path string) (*merge.Merger, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Concurrency is the number of record pairs merged in parallel by batch.
	Concurrency() int

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
