package cmd

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/inovacc/git-backup/internal/core"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Clone every repository of the configured account",
	Long: `Clone every repository of the configured account into
<backupDir>/.git-backups.

This command will:
  1. Fetch the account's repository list
  2. Delete <backupDir>/.old-git-backups
  3. Move <backupDir>/.git-backups to <backupDir>/.old-git-backups
  4. Clone each repository, one at a time, into a fresh .git-backups

A repository that fails to clone is logged and skipped. If the listing fails
nothing on disk is touched.

Examples:
  # Back up everything
  git-backup backup

  # Preview without touching the backup directory
  git-backup backup --dry-run

  # Only repositories starting with "api-", skipping archived ones
  git-backup backup --filter "^api-" --skip-archived

  # Use the system git binary
  git-backup backup --engine git`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	filterStr, _ := cmd.Flags().GetString("filter")
	skipArchived, _ := cmd.Flags().GetBool("skip-archived")
	skipForks, _ := cmd.Flags().GetBool("skip-forks")
	interval, _ := cmd.Flags().GetDuration("clone-interval")
	retries, _ := cmd.Flags().GetInt("retries")
	engine, _ := cmd.Flags().GetString("engine")
	insecure, _ := cmd.Flags().GetBool("insecure-skip-tls-verify")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	if retries < 0 || retries > 10 {
		return fmt.Errorf("retries must be between 0 and 10")
	}

	if interval < 0 {
		return fmt.Errorf("clone-interval cannot be negative")
	}

	var filter *regexp.Regexp
	if filterStr != "" {
		var err error

		filter, err = regexp.Compile(filterStr)
		if err != nil {
			return fmt.Errorf("invalid filter regex: %w", err)
		}
	}

	cfg, err := loadAccount(cmd, logger)
	if err != nil {
		return err
	}

	opts := core.BackupOptions{
		Lister:          core.NewGitHubLister(core.ListerOptions{Retries: retries, Logger: logger}),
		CloneInterval:   interval,
		Retries:         retries,
		Filter:          filter,
		SkipArchived:    skipArchived,
		SkipForks:       skipForks,
		DryRun:          dryRun,
		InsecureSkipTLS: insecure,
		Logger:          logger,
	}

	if !dryRun {
		opts.Cloner, err = core.NewCloner(engine)
		if err != nil {
			return err
		}

		if !noHistory {
			history, err := openHistory()
			if err != nil {
				logger.Warn("run history disabled", slog.String("error", err.Error()))
			} else {
				defer func() { _ = history.Close() }()

				opts.History = history
			}
		}
	}

	logger.Info("backup", slog.String("owner", cfg.Owner), slog.String("backup_dir", cfg.BackupDir))

	_, err = core.RunBackup(cmd.Context(), cfg, opts)

	return err
}

func init() {
	rootCmd.AddCommand(backupCmd)
	addAPIFlags(backupCmd)

	// Operation mode
	backupCmd.Flags().Bool("dry-run", false, "List and plan without touching the backup directory")
	backupCmd.Flags().String("engine", core.EngineGoGit, "Clone engine: go-git or git")
	backupCmd.Flags().Duration("clone-interval", core.DefaultCloneInterval, "Minimum time between clone starts")
	backupCmd.Flags().Bool("insecure-skip-tls-verify", false, "Do not verify server certificates while cloning")
	backupCmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	// Filtering
	backupCmd.Flags().String("filter", "", "Regex pattern to filter repository names")
	backupCmd.Flags().Bool("skip-archived", false, "Skip archived repositories")
	backupCmd.Flags().Bool("skip-forks", false, "Skip forked repositories")
}
