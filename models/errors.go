package models

import (
	"fmt"
	"strings"
)

// ValidationError indicates bad input shape (image count or content type).
// The transport is never invoked when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConfigurationError indicates missing or empty endpoint/credential/deployment
// settings. It is raised before any network I/O and is the condition reported
// by the health check as service-unavailable.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// TransportError indicates a network failure, timeout, or non-success status
// from the hosted model endpoint. It is distinct from a successful call whose
// content cannot be parsed; that case is absorbed into a fallback RiskReport.
type TransportError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model API error (status %d): %s", e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return "model request failed: " + e.Cause.Error()
	}
	return "model request failed"
}

func (e *TransportError) Unwrap() error { return e.Cause }
