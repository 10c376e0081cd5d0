// Package errors provides custom error types for the marcmerge system.
// These errors enable programmatic error checking with errors.Is and
// errors.As while keeping messages readable for CLI users.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Aliases for the standard library helpers so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Common sentinel errors for the marcmerge system
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a merge or application configuration problem
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUndefinedAction indicates a rule references an action that is not registered
	ErrUndefinedAction = errors.New("undefined action")

	// ErrUndefinedComparator indicates an option references a comparator that is not registered
	ErrUndefinedComparator = errors.New("undefined comparator")

	// ErrMultipleFields indicates selectBetter found more than one existing field of a tag
	ErrMultipleFields = errors.New("selectBetter cannot be used if there are multiple fields of same tag")

	// ErrSubfieldCountMismatch indicates subfield pairing was attempted on lists of different length
	ErrSubfieldCountMismatch = errors.New("subfield count mismatch")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// NewUndefinedActionError reports a rule whose action name is not registered.
func NewUndefinedActionError(pattern, action string) *ConfigError {
	return &ConfigError{
		Component: fmt.Sprintf("rule %q", pattern),
		Message:   fmt.Sprintf("Undefined action '%s'", action),
		Err:       ErrUndefinedAction,
	}
}

// NewUndefinedComparatorError reports options naming an unregistered comparator.
func NewUndefinedComparatorError(pattern, comparator string) *ConfigError {
	return &ConfigError{
		Component: fmt.Sprintf("rule %q", pattern),
		Message:   fmt.Sprintf("Undefined comparator '%s'", comparator),
		Err:       ErrUndefinedComparator,
	}
}

// ActionError represents a failure inside a merge action for one field
type ActionError struct {
	Action string
	Tag    string
	Err    error
}

// Error implements the error interface
func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s failed for field %s: %v", e.Action, e.Tag, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewActionError creates a new ActionError
func NewActionError(action, tag string, err error) *ActionError {
	return &ActionError{Action: action, Tag: tag, Err: err}
}

// MergeError represents an error during a record merge
type MergeError struct {
	Preferred string
	Other     string
	Err       error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if e.Preferred != "" || e.Other != "" {
		return fmt.Sprintf("merge error between %s and %s: %v", e.Preferred, e.Other, e.Err)
	}
	return fmt.Sprintf("merge error: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(preferred, other string, err error) *MergeError {
	return &MergeError{
		Preferred: preferred,
		Other:     other,
		Err:       err,
	}
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsMultipleFields checks if an error came from selectBetter seeing several fields of one tag
func IsMultipleFields(err error) bool {
	return errors.Is(err, ErrMultipleFields)
}

// IsCanceled checks if an error is a cancellation error, ours or the context's
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "toml", "msgpack"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
