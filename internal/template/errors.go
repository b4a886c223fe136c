package template

import (
	"fmt"
	"net/http"
)

// ParseError reports a template that could not be decoded.
type ParseError struct {
	Source string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing template %s: %v", e.Source, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// FetchError reports a template source that could not be read.
type FetchError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetching template %s: %s", e.Source, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d: %s)", e.StatusCode, statusText(e.StatusCode))
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ValidationError reports a structurally or semantically invalid template.
// WorkspaceIndex is -1 when the problem is not tied to one workspace.
type ValidationError struct {
	Reason         string
	WorkspaceIndex int
}

func (e *ValidationError) Error() string {
	if e.WorkspaceIndex < 0 {
		return "template validation failed: " + e.Reason
	}
	return fmt.Sprintf("template validation failed: workspace[%d]: %s", e.WorkspaceIndex, e.Reason)
}

func statusText(code int) string {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return http.StatusText(code)
	default:
		return "HTTP Error"
	}
}
