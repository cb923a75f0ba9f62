package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inovacc/git-backup/internal/model"
)

// ListRepos lists the account's repositories and logs each one as
// "=> id:name:clone_url"
func ListRepos(ctx context.Context, cfg *model.Config, lister RepositoryLister, logger *slog.Logger) ([]model.Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repos, err := lister.ListAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	logger.Info(fmt.Sprintf("Known repos (%d):", len(repos)))

	for _, repo := range repos {
		logger.Info(fmt.Sprintf("=> %d:%s:%s", repo.ID, repo.Name, repo.CloneURL))
	}

	return repos, nil
}
