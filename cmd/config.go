package cmd

import (
	"github.com/inovacc/git-backup/internal/core"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the config file",
	Long: `Show the loaded config file.

The token is printed as stored; pass --redact to mask it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd)

		store, err := openStore(logger)
		if err != nil {
			return err
		}

		redact, _ := cmd.Flags().GetBool("redact")

		return core.ShowConfig(cmd.OutOrStdout(), store, redact)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("redact", false, "Mask the token")
}
