package model

import "fmt"

// ValidationError reports a bad caller request (missing URL, unknown provider).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrURLRequired is returned when a scrape request has no URL.
var ErrURLRequired = NewValidationError("url", "URL is required")

// ErrUnknownProvider is returned when a provider name is not registered.
var ErrUnknownProvider = NewValidationError("provider", "Invalid scraper provider")

// MissingCredentialError reports that a provider has no API key configured.
type MissingCredentialError struct {
	Provider string
	Setting  string // env var the key is read from
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: missing API key (set %s)", e.Provider, e.Setting)
}

// RemoteError reports a failed call to a provider API: a non-2xx status,
// a malformed payload, a transport failure, or a timeout.
type RemoteError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Body       string
	Timeout    bool
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out", e.Provider)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: remote error", e.Provider)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ConversionError reports a Markdown/HTML conversion failure.
type ConversionError struct {
	Op  string // "html_to_markdown" or "markdown_to_html"
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
