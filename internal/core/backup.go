package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/inovacc/git-backup/internal/git"
	"github.com/inovacc/git-backup/internal/model"
)

// RepositoryLister lists the repositories owned by the configured account
type RepositoryLister interface {
	ListAll(ctx context.Context, cfg *model.Config) ([]model.Repository, error)
}

// RunRecorder persists the outcome of a backup run
type RunRecorder interface {
	SaveRun(run *model.BackupRun) error
}

// BackupOptions configures a backup run
type BackupOptions struct {
	Lister RepositoryLister
	Cloner Cloner // unused with DryRun

	CloneInterval time.Duration
	Retries       int
	NewBackOff    func() backoff.BackOff

	Filter       *regexp.Regexp // keep only names matching
	SkipArchived bool
	SkipForks    bool

	// DryRun lists and filters but neither rotates nor clones
	DryRun bool

	// InsecureSkipTLS disables certificate checks in addition to the
	// config's insecureSkipTLS
	InsecureSkipTLS bool

	History RunRecorder // nil disables history
	Logger  *slog.Logger
}

// BackupResult describes a finished run
type BackupResult struct {
	Run   model.BackupRun
	Repos []model.Repository // after filtering
	Dir   string             // generation directory written, empty for dry runs
}

// RunBackup lists the account's repositories, rotates the backup directory
// and clones every repository into the fresh generation. A failed clone is
// logged and the run continues; listing and rotation failures are fatal.
// The returned result is non-nil whenever listing started.
func RunBackup(ctx context.Context, cfg *model.Config, opts BackupOptions) (*BackupResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &BackupResult{
		Run: model.BackupRun{
			ID:        uuid.NewString(),
			Owner:     cfg.Owner,
			BackupDir: cfg.BackupDir,
			StartedAt: time.Now(),
		},
	}

	fail := func(err error) (*BackupResult, error) {
		result.Run.Status = model.RunStatusFailed
		if ctx.Err() != nil {
			result.Run.Status = model.RunStatusCancelled
		}

		result.Run.Error = err.Error()

		if !opts.DryRun {
			record(opts.History, &result.Run, logger)
		}

		return result, err
	}

	repos, err := opts.Lister.ListAll(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch repositories: %w", err))
	}

	logger.Info(fmt.Sprintf("Known repos (%d)", len(repos)))

	if opts.hasFilters() {
		before := len(repos)
		repos = applyFilters(repos, opts)

		logger.Info("filtered repositories",
			slog.Int("before", before),
			slog.Int("after", len(repos)),
		)
	}

	result.Repos = repos
	result.Run.Total = len(repos)

	if opts.DryRun {
		logDryRunPlan(cfg, repos, logger)
		result.Run.Status = model.RunStatusComplete
		result.Run.FinishedAt = time.Now()

		return result, nil
	}

	dir, err := RotateBackupDir(cfg.BackupDir, logger)
	if err != nil {
		return fail(err)
	}

	result.Dir = dir

	insecure := cfg.InsecureSkipTLS || opts.InsecureSkipTLS
	if insecure {
		logger.Warn("TLS certificate verification is disabled for clones")
	}

	worker := NewCloneWorker(opts.Cloner, CloneOptions{
		Interval:        opts.CloneInterval,
		Retries:         opts.Retries,
		NewBackOff:      opts.NewBackOff,
		Transport:       cfg.EffectiveTransport(),
		Token:           cfg.Token,
		InsecureSkipTLS: insecure,
		Logger:          logger,
	})

	for _, repo := range repos {
		if ctx.Err() != nil {
			break
		}

		if err := worker.CloneOne(ctx, dir, repo); err != nil {
			if ctx.Err() != nil {
				break
			}

			result.Run.Failed++
			result.Run.FailedRepos = append(result.Run.FailedRepos, repo.Name)

			logger.Error("clone failed",
				slog.String("repo", repo.Name),
				slog.String("reason", failureReason(err)),
				slog.String("error", err.Error()),
			)

			continue
		}

		result.Run.Cloned++
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("backup interrupted",
			slog.Int("cloned", result.Run.Cloned),
			slog.Int("remaining", result.Run.Total-result.Run.Cloned-result.Run.Failed),
		)

		return fail(err)
	}

	result.Run.Status = model.RunStatusComplete
	result.Run.FinishedAt = time.Now()

	logger.Info("backup complete",
		slog.Int("cloned", result.Run.Cloned),
		slog.Int("failed", result.Run.Failed),
		slog.Duration("duration", result.Run.Duration()),
	)

	record(opts.History, &result.Run, logger)

	return result, nil
}

// failureReason gives a short label for a failed clone
func failureReason(err error) string {
	var netErr *NetworkError

	switch {
	case git.IsAuthRequired(err):
		return "auth"
	case git.IsRepoNotFound(err):
		return "not_found"
	case errors.As(err, &netErr) || git.IsNetworkError(err):
		return "network"
	default:
		return "other"
	}
}

func (o BackupOptions) hasFilters() bool {
	return o.Filter != nil || o.SkipArchived || o.SkipForks
}

// applyFilters applies user-specified filters to the repository list
func applyFilters(repos []model.Repository, opts BackupOptions) []model.Repository {
	filtered := make([]model.Repository, 0, len(repos))

	for _, repo := range repos {
		if opts.SkipArchived && repo.Archived {
			continue
		}

		if opts.SkipForks && repo.Fork {
			continue
		}

		if opts.Filter != nil && !opts.Filter.MatchString(repo.Name) {
			continue
		}

		filtered = append(filtered, repo)
	}

	return filtered
}

func logDryRunPlan(cfg *model.Config, repos []model.Repository, logger *slog.Logger) {
	layout := LayoutFor(cfg.BackupDir)

	logger.Info("dry run plan summary",
		slog.String("owner", cfg.Owner),
		slog.String("backup_dir", layout.Current),
		slog.Int("to_clone", len(repos)),
	)

	for _, repo := range repos {
		logger.Info("planned clone",
			slog.String("repo", repo.Name),
			slog.String("url", repo.URLFor(cfg.EffectiveTransport())),
			slog.Bool("archived", repo.Archived),
			slog.Bool("fork", repo.Fork),
		)
	}
}

func record(history RunRecorder, run *model.BackupRun, logger *slog.Logger) {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	if history == nil {
		return
	}

	if err := history.SaveRun(run); err != nil {
		logger.Warn("failed to record backup run",
			slog.String("id", run.ID),
			slog.String("error", err.Error()),
		)
	}
}
