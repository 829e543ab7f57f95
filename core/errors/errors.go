// Package errors provides the error taxonomy shared by the catalogs, the verse
// stores and the formatter.
//
// Every typed error unwraps to one of the sentinels below so callers can branch
// with errors.Is without knowing which layer produced the failure.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a catalog entry (surah, source, font) was not found
	ErrNotFound = errors.New("not found")
	// ErrVerseNotFound indicates a (surah, ayah) pair is absent or empty in a data file
	ErrVerseNotFound = errors.New("verse not found")
	// ErrInvalidRange indicates a verse range whose start exceeds its end
	ErrInvalidRange = errors.New("invalid range")
	// ErrDataAccess indicates a data file is missing, unreadable or malformed
	ErrDataAccess = errors.New("data access failure")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a catalog lookup miss with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "surah", "source", "font")
	ID       string // Identifier that was looked up
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// VerseNotFoundError reports a verse that is missing from a data file or
// carries only whitespace.
type VerseNotFoundError struct {
	Surah int
	Ayah  int
	Path  string // Data file, if known
}

func (e *VerseNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("ayah not found: surah=%d, ayah=%d in %s", e.Surah, e.Ayah, e.Path)
	}
	return fmt.Sprintf("ayah not found: surah=%d, ayah=%d", e.Surah, e.Ayah)
}

func (e *VerseNotFoundError) Unwrap() error {
	return ErrVerseNotFound
}

// InvalidRangeError reports a range query with From > To.
type InvalidRangeError struct {
	Surah int
	From  int
	To    int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for surah %d: from %d is greater than to %d", e.Surah, e.From, e.To)
}

// Unwrap returns both ErrInvalidRange and ErrInvalidInput.
func (e *InvalidRangeError) Unwrap() []error {
	return []error{ErrInvalidRange, ErrInvalidInput}
}

// DataAccessError represents a failure to open, read or parse a data file, or
// a query against a store that is no longer usable.
type DataAccessError struct {
	Op   string // Operation being performed (e.g., "open", "parse", "query")
	Path string // Data file path
	Err  error  // Underlying error
}

func (e *DataAccessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Unwrap returns ErrDataAccess and the underlying error.
func (e *DataAccessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataAccess}
	}
	return []error{ErrDataAccess, e.Err}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// ParseError represents a parsing error in a reference, config or font table
type ParseError struct {
	Format  string // Format being parsed (e.g., "reference", "font table")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

// Unwrap returns ErrInvalidInput and the underlying error.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewVerseNotFound creates a VerseNotFoundError
func NewVerseNotFound(surah, ayah int, path string) *VerseNotFoundError {
	return &VerseNotFoundError{Surah: surah, Ayah: ayah, Path: path}
}

// NewInvalidRange creates an InvalidRangeError
func NewInvalidRange(surah, from, to int) *InvalidRangeError {
	return &InvalidRangeError{Surah: surah, From: from, To: to}
}

// NewDataAccess creates a DataAccessError
func NewDataAccess(op, path string, err error) *DataAccessError {
	return &DataAccessError{Op: op, Path: path, Err: err}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
