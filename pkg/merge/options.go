package merge

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/marcmerge/pkg/errors"
)

type options struct {
	registry *Registry
	logger   *zerolog.Logger
}

func defaultOptions() *options {
	return &options{registry: NewRegistry()}
}

// Option is a function that configures a Merger.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRegistry replaces the built-in registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{Field: "registry", Message: "cannot be nil"}
		}
		o.registry = r
		return nil
	}
}

// WithPlugins extends the current registry with the given plugins.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) error {
		for _, p := range plugins {
			o.registry = o.registry.With(p)
		}
		return nil
	}
}

// WithLogger fixes the logger used by the merger. Without it the logger is
// taken from the context of each call.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}
