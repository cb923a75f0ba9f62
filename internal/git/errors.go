package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Common error messages from git
const (
	errMsgAuthFailed       = "Authentication failed"
	errMsgPermissionDenied = "Permission denied"
	errMsgNoUsername       = "could not read Username"
	errMsgRepoNotFound     = "Repository not found"
)

var networkIndicators = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"timed out",
	"temporary failure",
	"network is unreachable",
	"no such host",
	"could not resolve host",
	"unexpected eof",
	"early eof",
	"tls handshake",
}

// GitError represents a failed git command
type GitError struct {
	ExitCode int
	Args     []string
	Stderr   string
	err      error
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		ExitCode: exitCode,
		Args:     args,
		Stderr:   stderr,
		err:      err,
	}
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return fmt.Errorf("git command failed: %w", e.err).Error()
	}

	return fmt.Sprintf("git command failed: %s", strings.TrimSpace(e.Stderr))
}

func (e *GitError) Unwrap() error {
	return e.err
}

// IsAuthRequired reports whether the remote rejected or asked for credentials
func IsAuthRequired(err error) bool {
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return true
	}

	return containsError(err, errMsgAuthFailed) ||
		containsError(err, errMsgPermissionDenied) ||
		containsError(err, errMsgNoUsername)
}

// IsRepoNotFound reports whether the remote repository does not exist
func IsRepoNotFound(err error) bool {
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return true
	}

	return containsError(err, errMsgRepoNotFound)
}

// IsNetworkError reports whether err looks like a transient transport failure
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	for _, indicator := range networkIndicators {
		if containsError(err, indicator) {
			return true
		}
	}

	return false
}

// containsError checks git stderr, or the error text, for msg
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) && gitErr.Stderr != "" {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}
