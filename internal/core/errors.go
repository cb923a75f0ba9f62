package core

import (
	"fmt"
	"time"
)

// AuthError indicates the API rejected the credentials (401/403)
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (HTTP %d)", e.StatusCode)
	}

	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// RateLimitError indicates the API refused the request because of a primary
// or secondary rate limit
type RateLimitError struct {
	ResetAt    time.Time // zero when unknown
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	switch {
	case !e.ResetAt.IsZero():
		return fmt.Sprintf("API rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
	case e.RetryAfter > 0:
		return fmt.Sprintf("API secondary rate limit exceeded, retry after %s", e.RetryAfter)
	default:
		return "API rate limit exceeded"
	}
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NetworkError wraps transient network failures
type NetworkError struct {
	Operation string
	Err       error
	Attempts  int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v",
		e.Operation, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RotationError indicates a backup directory rotation step failed. Steps
// already completed are not rolled back.
type RotationError struct {
	Step string // "remove", "rename" or "create"
	Path string
	Err  error
}

func (e *RotationError) Error() string {
	return fmt.Sprintf("rotate backups: %s %s: %v", e.Step, e.Path, e.Err)
}

func (e *RotationError) Unwrap() error {
	return e.Err
}

// CloneError indicates one repository could not be cloned
type CloneError struct {
	Repo string
	Err  error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone %s: %v", e.Repo, e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}
