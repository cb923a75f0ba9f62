package cmd

import (
	"log/slog"

	"github.com/inovacc/git-backup/internal/auth"
	"github.com/inovacc/git-backup/internal/model"
	"github.com/spf13/cobra"
)

// addAPIFlags adds the flags shared by commands that call the hosting API
func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "Personal access token (overrides the config file)")
	cmd.Flags().Int("retries", 0, "Retry transient network failures this many times")
}

// loadAccount loads the config file and resolves the token the run uses
func loadAccount(cmd *cobra.Command, logger *slog.Logger) (*model.Config, error) {
	store, err := openStore(logger)
	if err != nil {
		return nil, err
	}

	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	flagToken, _ := cmd.Flags().GetString("token")

	result, err := auth.NewResolver().
		WithFlag(flagToken).
		WithConfig(cfg.Token).
		WithEnv(auth.EnvToken, "GITHUB_TOKEN").
		Resolve()
	if err != nil {
		return nil, err
	}

	if result.Source == auth.SourceNone {
		logger.Warn("no token configured, listing public repositories anonymously")
	}

	logger.Debug("token resolved", slog.String("source", string(result.Source)), slog.String("name", result.Name))

	cfg.Token = result.Token

	return cfg, nil
}
