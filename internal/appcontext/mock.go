package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/marcmerge/pkg/merge"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	MergerFunc       func(path string) (*merge.Merger, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	ConcurrencyFunc  func() int
	NoColorFunc      func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Merger loads the rules file when no mock function is set.
func (m *Mock) Merger(path string) (*merge.Merger, error) {
	if m.MergerFunc != nil {
		return m.MergerFunc(path)
	}
	cfg, err := merge.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return merge.New(*cfg)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Concurrency returns the mock value or 1.
func (m *Mock) Concurrency() int {
	if m.ConcurrencyFunc != nil {
		return m.ConcurrencyFunc()
	}
	return 1
}

// NoColor returns the mock value or true.
func (m *Mock) NoColor() bool {
	if m.NoColorFunc != nil {
		return m.NoColorFunc()
	}
	return true
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
