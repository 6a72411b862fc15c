package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates a setting holds an unsupported value
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigFile indicates a config file could not be read or decoded
	ErrConfigFile = errors.New("cannot read configuration file")
)

// ValidationError names the setting that failed validation
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected %s", e.Field, e.Value, strings.Join(e.Allowed, " or "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new validation error
func NewValidationError(field, value string, allowed ...string) error {
	return &ValidationError{Field: field, Value: value, Allowed: allowed}
}

// FileError wraps a read or decode failure with the file path
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Is reports ErrConfigFile so callers can match without unwrapping
func (e *FileError) Is(target error) bool {
	return target == ErrConfigFile
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new config file error
func NewFileError(path string, err error) error {
	return &FileError{Path: path, Err: err}
}
