package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies scraping failures by recovery behavior
type ErrorType string

const (
	// ErrorTypeFetchTimeout means a page failed to signal load-complete
	// within budget
	ErrorTypeFetchTimeout ErrorType = "fetch_timeout"
	// ErrorTypeExtractionUnavailable means the extraction capability could
	// not be reached or injected into the page
	ErrorTypeExtractionUnavailable ErrorType = "extraction_unavailable"
	// ErrorTypeCommunication means a message round-trip with a loaded page
	// produced no response
	ErrorTypeCommunication ErrorType = "communication"
	// ErrorTypeRateLimit means the storefront refused the request
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypePipeline means an unexpected condition escaped a whole
	// per-item aggregation
	ErrorTypePipeline ErrorType = "pipeline"
	// ErrorTypeStorage represents storage collaborator errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError carries the failure class and the store it occurred against
type ScrapeError struct {
	Type    ErrorType
	Store   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Store, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Store, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failed operation is worth repeating.
// Only the message round-trip is; everything else degrades immediately.
func (e *ScrapeError) IsRetryable() bool {
	return e.Type == ErrorTypeCommunication
}

// New creates a new ScrapeError
func New(errType ErrorType, store, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Store:   store,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetchTimeout creates a fetch timeout error
func NewFetchTimeout(store string, timeout time.Duration, err error) *ScrapeError {
	return New(ErrorTypeFetchTimeout, store, fmt.Sprintf("page did not load within %v", timeout), err)
}

// NewExtractionUnavailable creates an extraction-capability error
func NewExtractionUnavailable(store, message string, err error) *ScrapeError {
	return New(ErrorTypeExtractionUnavailable, store, message, err)
}

// NewCommunication creates a message round-trip error
func NewCommunication(store, message string, err error) *ScrapeError {
	return New(ErrorTypeCommunication, store, message, err)
}

// NewRateLimit creates a rate limit error
func NewRateLimit(store, message string) *ScrapeError {
	return New(ErrorTypeRateLimit, store, message, nil)
}

// NewParsing creates a parsing error
func NewParsing(store, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, store, message, err)
}

// NewPipeline creates a per-item pipeline error
func NewPipeline(message string, err error) *ScrapeError {
	return New(ErrorTypePipeline, "", message, err)
}

// NewStorage creates a storage error
func NewStorage(message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, "", message, err)
}

// NewValidation creates a validation error
func NewValidation(store, message string) *ScrapeError {
	return New(ErrorTypeValidation, store, message, nil)
}

// NewConfiguration creates a configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is (or wraps) a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type == errType
	}
	return false
}
