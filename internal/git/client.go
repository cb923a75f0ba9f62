// Package git clones repositories for a backup run. Two engines are
// provided: [GoGitCloner] runs in-process on go-git, [Client] drives the
// system git binary and feeds it the token through git's credential-helper
// protocol, served by "git-backup credential".
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/inovacc/git-backup/internal/auth"
	"github.com/inovacc/git-backup/internal/common"
)

// ErrGitNotFound is returned by Client when no git binary is on PATH
var ErrGitNotFound = errors.New("git executable not found in PATH")

// Client wraps the system git binary
type Client struct {
	SelfPath string // git-backup executable, registered as credential helper
	GitPath  string // git executable
}

// NewClient creates a client for the git binary found on PATH
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")
	selfPath, _ := os.Executable()

	return &Client{
		SelfPath: selfPath,
		GitPath:  gitPath,
	}
}

// CredentialPattern scopes the credential helper to a host, or to all hosts
type CredentialPattern struct {
	allMatching bool
	pattern     string
}

// AllMatchingCredentialsPattern matches all hosts
var AllMatchingCredentialsPattern = CredentialPattern{allMatching: true}

// CredentialPatternFromGitURL derives a credential pattern from a git URL
func CredentialPatternFromGitURL(gitURL string) (CredentialPattern, error) {
	u, err := ParseURL(gitURL)
	if err != nil {
		return CredentialPattern{}, err
	}

	if u.Host == "" {
		return AllMatchingCredentialsPattern, nil
	}

	return CredentialPattern{pattern: fmt.Sprintf("%s://%s", u.Scheme, u.Host)}, nil
}

// Command creates a git command without credential configuration
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	return cmd
}

// AuthenticatedCommand creates a git command that asks git-backup for
// credentials. Previously configured helpers for the pattern are cleared.
func (c *Client) AuthenticatedCommand(ctx context.Context, pattern CredentialPattern, args ...string) *exec.Cmd {
	return c.Command(ctx, append(c.credentialArgs(pattern), args...)...)
}

func (c *Client) credentialArgs(pattern CredentialPattern) []string {
	helper := fmt.Sprintf("!%q credential", c.SelfPath)

	if pattern.allMatching {
		return []string{
			"-c", "credential.helper=",
			"-c", "credential.helper=" + helper,
		}
	}

	return []string{
		"-c", fmt.Sprintf("credential.%s.helper=", pattern.pattern),
		"-c", fmt.Sprintf("credential.%s.helper=%s", pattern.pattern, helper),
	}
}

// Clone runs "git clone" for req
func (c *Client) Clone(ctx context.Context, req CloneRequest) error {
	if c.GitPath == "" {
		return ErrGitNotFound
	}

	var pre []string
	if req.InsecureSkipTLS {
		pre = append(pre, "-c", "http.sslVerify=false")
	}

	args := append(pre, "clone", "--", req.URL, req.Path)

	var cmd *exec.Cmd

	token := req.Credentials.Token
	if req.Credentials.SSHAgent || token == "" {
		cmd = c.Command(ctx, args...)
	} else {
		pattern, err := CredentialPatternFromGitURL(req.URL)
		if err != nil {
			pattern = AllMatchingCredentialsPattern
		}

		cmd = c.AuthenticatedCommand(ctx, pattern, args...)
		cmd.Env = append(cmd.Env, auth.EnvToken+"="+token)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError(args, common.ScrubSecret(string(output), token), err)
	}

	return nil
}

// WriteCredential answers a git credential "get" request. The token is the
// username and the password is the fixed placeholder GitHub expects.
func WriteCredential(w io.Writer, request map[string]string, token string) error {
	var buf bytes.Buffer

	for _, key := range []string{"protocol", "host", "path"} {
		if v := request[key]; v != "" {
			_, _ = fmt.Fprintf(&buf, "%s=%s\n", key, v)
		}
	}

	_, _ = fmt.Fprintf(&buf, "username=%s\n", token)
	_, _ = fmt.Fprintf(&buf, "password=%s\n", PlaceholderPassword)

	_, err := w.Write(buf.Bytes())

	return err
}

// ReadCredentialRequest reads the key=value lines git sends to a helper
func ReadCredentialRequest(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential request: %w", err)
	}

	fields := make(map[string]string)

	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if ok {
			fields[key] = value
		}
	}

	return fields, nil
}
