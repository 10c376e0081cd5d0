// Package app provides the application context and dependency management
// for the marcmerge CLI: configuration, logging and the cached mergers
// built from rules files.
package app

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/marcmerge/internal/appcontext"
	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/merge"
)

// App represents the marcmerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Mergers keyed by absolute rules path, built on first use.
	mu      sync.RWMutex
	mergers map[string]*merge.Merger
	plugins []merge.Plugin
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		mergers: make(map[string]*merge.Merger),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Concurrency returns the number of parallel merges for batch runs.
func (a *App) Concurrency() int {
	return a.config.Concurrency
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Merger returns the merger for a rules file, loading and compiling it on
// first use. An empty path selects the configured merge_config.
func (a *App) Merger(path string) (*merge.Merger, error) {
	if path == "" {
		path = a.config.MergeConfig
	}
	if path == "" {
		return nil, &errors.ValidationError{
			Field:   "rules",
			Message: "no rules file given (use --rules or set merge_config)",
		}
	}
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	a.mu.RLock()
	m, ok := a.mergers[key]
	a.mu.RUnlock()
	if ok {
		return m, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if m, ok := a.mergers[key]; ok {
		return m, nil
	}

	cfg, err := merge.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	m, err = merge.New(*cfg, merge.WithPlugins(a.plugins...))
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("rules", path).
		Int("rule_count", len(cfg.Fields)).
		Msg("Loaded merge rules")

	a.mergers[key] = m
	return m, nil
}

// Shutdown releases cached mergers.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.mergers)
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithPlugins registers extra actions and comparators for every merger
// the app builds.
func WithPlugins(plugins ...merge.Plugin) Option {
	return func(a *App) error {
		a.plugins = append(a.plugins, plugins...)
		return nil
	}
}
