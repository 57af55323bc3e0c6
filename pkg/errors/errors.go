// Package errors provides custom error types for the tftmeta system.
// These errors enable programmatic error checking across the catalog
// pipeline: callers use errors.Is against the sentinels below and
// errors.As against the typed errors to recover details.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As forward to the standard library so callers need one import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the tftmeta system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates that a single provider call failed
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrIncompleteCatalog indicates a required kind had zero records after merge
	ErrIncompleteCatalog = errors.New("incomplete catalog")

	// ErrAssetNotFound indicates an asset could not be recovered by fallback search
	ErrAssetNotFound = errors.New("asset not found")

	// ErrMalformedReference indicates an image reference could not be canonicalized
	ErrMalformedReference = errors.New("malformed reference")

	// ErrDataUnavailable indicates no snapshot could be served at all
	ErrDataUnavailable = errors.New("data temporarily unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// ProviderUnavailableError represents a failed call to one catalog provider.
type ProviderUnavailableError struct {
	Provider  string
	Operation string
	Err       error
}

// Error implements the error interface
func (e *ProviderUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s unavailable during %s: %v", e.Provider, e.Operation, e.Err)
	}
	return fmt.Sprintf("provider %s unavailable during %s", e.Provider, e.Operation)
}

// Unwrap implements errors.Unwrap
func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ProviderUnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

// NewProviderUnavailableError creates a new ProviderUnavailableError
func NewProviderUnavailableError(provider, operation string, err error) *ProviderUnavailableError {
	return &ProviderUnavailableError{Provider: provider, Operation: operation, Err: err}
}

// IncompleteCatalogError lists the required kinds that ended up empty.
type IncompleteCatalogError struct {
	Kinds []string
}

// Error implements the error interface
func (e *IncompleteCatalogError) Error() string {
	return fmt.Sprintf("incomplete catalog: no records for %s", strings.Join(e.Kinds, ", "))
}

// Is implements errors.Is support
func (e *IncompleteCatalogError) Is(target error) bool {
	return target == ErrIncompleteCatalog
}

// NewIncompleteCatalogError creates a new IncompleteCatalogError
func NewIncompleteCatalogError(kinds ...string) *IncompleteCatalogError {
	return &IncompleteCatalogError{Kinds: kinds}
}

// AssetNotFoundError represents an asset missing from every searched version.
type AssetNotFoundError struct {
	Kind     string
	ID       string
	Searched int // number of versions looked at
}

// Error implements the error interface
func (e *AssetNotFoundError) Error() string {
	if e.Searched > 0 {
		return fmt.Sprintf("%s %s not found after searching %d versions", e.Kind, e.ID, e.Searched)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is implements errors.Is support
func (e *AssetNotFoundError) Is(target error) bool {
	return target == ErrAssetNotFound || target == ErrNotFound
}

// NewAssetNotFoundError creates a new AssetNotFoundError
func NewAssetNotFoundError(kind, id string, searched int) *AssetNotFoundError {
	return &AssetNotFoundError{Kind: kind, ID: id, Searched: searched}
}

// MalformedReferenceError represents an image reference that cannot become a URL.
type MalformedReferenceError struct {
	Reference string
	Reason    string
}

// Error implements the error interface
func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference %q: %s", e.Reference, e.Reason)
}

// Is implements errors.Is support
func (e *MalformedReferenceError) Is(target error) bool {
	return target == ErrMalformedReference
}

// NewMalformedReferenceError creates a new MalformedReferenceError
func NewMalformedReferenceError(reference, reason string) *MalformedReferenceError {
	return &MalformedReferenceError{Reference: reference, Reason: reason}
}

// DataUnavailableError is returned by resolve when neither a fresh build
// nor any cached snapshot exists for the requested key.
type DataUnavailableError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data temporarily unavailable for %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("data temporarily unavailable for %s", e.Key)
}

// Unwrap implements errors.Unwrap
func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// NewDataUnavailableError creates a new DataUnavailableError
func NewDataUnavailableError(key string, err error) *DataUnavailableError {
	return &DataUnavailableError{Key: key, Err: err}
}

// APIError represents an error from a provider API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode >= 500, e.StatusCode == 0:
		return target == ErrProviderUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(provider string, statusCode int, message string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
	}
}

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

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when decoding a provider payload
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Err       error
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s", e.Operation, e.Duration)
	}
	return fmt.Sprintf("operation %s timed out", e.Operation)
}

// Unwrap implements errors.Unwrap
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. A timed out provider call counts as an
// unavailable provider.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrProviderUnavailable
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsProviderUnavailable checks if an error indicates provider unavailability
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsIncompleteCatalog checks if an error is an incomplete catalog error
func IsIncompleteCatalog(err error) bool {
	return errors.Is(err, ErrIncompleteCatalog)
}

// IsAssetNotFound checks if an error is an asset not found error
func IsAssetNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound)
}

// IsMalformedReference checks if an error is a malformed reference error
func IsMalformedReference(err error) bool {
	return errors.Is(err, ErrMalformedReference)
}

// IsDataUnavailable checks if an error is a data unavailable error
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// WrapAPI wraps an error as an APIError
func WrapAPI(provider, endpoint string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Provider:   provider,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
