package cmd

import (
	"github.com/inovacc/git-backup/internal/core"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repositories of the configured account",
	Long: `List every repository owned by the configured user or organization,
one "=> id:name:clone_url" line per repository.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)

	cfg, err := loadAccount(cmd, logger)
	if err != nil {
		return err
	}

	retries, _ := cmd.Flags().GetInt("retries")

	lister := core.NewGitHubLister(core.ListerOptions{
		Retries: retries,
		Logger:  logger,
	})

	_, err = core.ListRepos(cmd.Context(), cfg, lister, logger)

	return err
}

func init() {
	rootCmd.AddCommand(listCmd)
	addAPIFlags(listCmd)
}
