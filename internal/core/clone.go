package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/inovacc/git-backup/internal/common"
	"github.com/inovacc/git-backup/internal/git"
	"github.com/inovacc/git-backup/internal/model"
	"golang.org/x/time/rate"
)

// DefaultCloneInterval is the minimum spacing between clone starts
const DefaultCloneInterval = 1100 * time.Millisecond

// Clone engines
const (
	EngineGoGit = "go-git"
	EngineGit   = "git"
)

// Cloner performs one full clone
type Cloner interface {
	Clone(ctx context.Context, req git.CloneRequest) error
}

// NewCloner returns the clone engine with the given name
func NewCloner(engine string) (Cloner, error) {
	switch engine {
	case "", EngineGoGit:
		return git.NewGoGitCloner(), nil
	case EngineGit:
		client := git.NewClient()
		if client.GitPath == "" {
			return nil, git.ErrGitNotFound
		}

		return client, nil
	default:
		return nil, fmt.Errorf("unknown clone engine %q (expected %s or %s)", engine, EngineGoGit, EngineGit)
	}
}

// CloneOptions configures a CloneWorker
type CloneOptions struct {
	// Interval defaults to DefaultCloneInterval
	Interval time.Duration

	// Retries is how many times a clone failing with a transient network
	// error is retried. Zero disables retries.
	Retries    int
	NewBackOff func() backoff.BackOff

	Transport       model.Transport
	Token           string
	InsecureSkipTLS bool

	Logger *slog.Logger
}

// CloneWorker clones repositories one at a time. Each clone starts at least
// Interval after the previous one started.
type CloneWorker struct {
	cloner  Cloner
	limiter *rate.Limiter
	opts    CloneOptions
	logger  *slog.Logger
}

// NewCloneWorker creates a worker around a clone engine
func NewCloneWorker(cloner Cloner, opts CloneOptions) *CloneWorker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultCloneInterval
	}

	return &CloneWorker{
		cloner:  cloner,
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
		opts:    opts,
		logger:  logger,
	}
}

// ValidateName rejects repository names that are unsafe as a directory name
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("repository name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid repository name %q", name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("invalid repository name %q: contains illegal characters", name)
	}

	return nil
}

// CloneOne clones repo into targetDir/<name>, after waiting for its turn
func (w *CloneWorker) CloneOne(ctx context.Context, targetDir string, repo model.Repository) error {
	if err := ValidateName(repo.Name); err != nil {
		return &CloneError{Repo: repo.Name, Err: err}
	}

	cloneURL := repo.URLFor(w.opts.Transport)
	if cloneURL == "" {
		return &CloneError{Repo: repo.Name, Err: errors.New("repository has no clone URL")}
	}

	if err := w.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return err
	}

	req := git.CloneRequest{
		URL:             cloneURL,
		Path:            filepath.Join(targetDir, repo.Name),
		Credentials:     w.credentials(),
		InsecureSkipTLS: w.opts.InsecureSkipTLS,
	}

	w.logger.Info("cloning",
		slog.String("repo", repo.Name),
		slog.String("url", common.SanitizeGitURL(cloneURL)),
	)

	start := time.Now()

	err := withRetry(ctx, retryPolicy{
		Retries:     w.opts.Retries,
		NewBackOff:  w.opts.NewBackOff,
		Operation:   "clone " + repo.Name,
		Logger:      w.logger,
		BeforeRetry: func() error { return os.RemoveAll(req.Path) },
	}, func() error {
		err := w.cloner.Clone(ctx, req)
		if err != nil && ctx.Err() == nil && git.IsNetworkError(err) {
			return &NetworkError{Operation: "clone", Err: err, Attempts: 1}
		}

		return err
	})
	if err != nil {
		// leave no partial clone behind
		_ = os.RemoveAll(req.Path)

		return &CloneError{Repo: repo.Name, Err: err}
	}

	w.logger.Debug("cloned",
		slog.String("repo", repo.Name),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

func (w *CloneWorker) credentials() git.Credentials {
	if w.opts.Transport == model.TransportSSH {
		return git.Credentials{SSHAgent: true}
	}

	return git.Credentials{Token: w.opts.Token}
}
