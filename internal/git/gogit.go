package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// GoGitCloner clones in-process with go-git
type GoGitCloner struct {
	// Progress receives the remote's sideband output; nil discards it
	Progress io.Writer
}

// NewGoGitCloner creates a go-git clone engine
func NewGoGitCloner() *GoGitCloner {
	return &GoGitCloner{}
}

// Clone performs a full, non-bare clone of req.URL into req.Path
func (g *GoGitCloner) Clone(ctx context.Context, req CloneRequest) error {
	method, err := authMethod(req.URL, req.Credentials)
	if err != nil {
		return err
	}

	_, err = gogit.PlainCloneContext(ctx, req.Path, false, &gogit.CloneOptions{
		URL:             req.URL,
		Auth:            method,
		InsecureSkipTLS: req.InsecureSkipTLS,
		Progress:        g.Progress,
	})

	// git clone of an empty repository succeeds with a warning; do the same
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return initEmpty(req)
	}

	return err
}

func authMethod(url string, creds Credentials) (transport.AuthMethod, error) {
	if creds.SSHAgent {
		user := "git"
		if ep, err := transport.NewEndpoint(url); err == nil && ep.User != "" {
			user = ep.User
		}

		method, err := gitssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("ssh agent: %w", err)
		}

		return method, nil
	}

	if creds.Token == "" {
		return nil, nil
	}

	return &githttp.BasicAuth{
		Username: creds.Token,
		Password: PlaceholderPassword,
	}, nil
}

func initEmpty(req CloneRequest) error {
	repo, err := gogit.PlainInit(req.Path, false)
	if err != nil {
		return fmt.Errorf("init empty repository: %w", err)
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: gogit.DefaultRemoteName,
		URLs: []string{req.URL},
	})

	return err
}
