package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/inovacc/git-backup/internal/auth"
	"github.com/inovacc/git-backup/internal/git"
	"github.com/spf13/cobra"
)

var credentialCmd = &cobra.Command{
	Use:    "credential [operation]",
	Short:  "Git credential helper (internal use)",
	Long:   `This command is used as a git credential helper by the git clone engine. It is called by git automatically.`,
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	RunE:   runCredential,
}

func runCredential(cmd *cobra.Command, args []string) error {
	// Git credential helper operations: get, store, erase
	operation := "get"
	if len(args) > 0 {
		operation = args[0]
	}

	request, err := git.ReadCredentialRequest(cmd.InOrStdin())
	if err != nil {
		return err
	}

	if operation != "get" || request["protocol"] != "https" || request["host"] == "" {
		return nil
	}

	token := os.Getenv(auth.EnvToken)
	if token == "" {
		token = configToken()
	}

	if token == "" {
		// let git try other credential helpers
		return nil
	}

	return git.WriteCredential(cmd.OutOrStdout(), request, token)
}

// configToken reads the token from the config file. Git shows a helper's
// stderr to the user, so nothing is logged.
func configToken() string {
	store, err := openStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return ""
	}

	cfg, err := store.Load()
	if err != nil {
		return ""
	}

	return cfg.Token
}

func init() {
	rootCmd.AddCommand(credentialCmd)
}
