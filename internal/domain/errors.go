package domain

import "errors"

// Sentinel errors for consistent error handling across dispatch.
var (
	// ErrUnknownTool indicates the requested tool name matches no registered handler.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBackendNotConfigured indicates the tool exists but its backend has no
	// credentials, so the tool was never advertised.
	ErrBackendNotConfigured = errors.New("backend not configured")
)

// BackendError represents a failure reported by an Atlassian backend or the
// transport to it. The message is surfaced verbatim to the client.
type BackendError struct {
	Message string
}

// Error implements the error interface for BackendError.
func (e *BackendError) Error() string {
	return e.Message
}
