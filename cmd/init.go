package cmd

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/git-backup/internal/cli"
	"github.com/inovacc/git-backup/internal/core"
	"github.com/inovacc/git-backup/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file interactively",
	Long: `Create ~/.git-backup.json by answering a few questions.

Existing values are offered as defaults. When the gh CLI is logged in and no
token is configured yet, its token is offered.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)

	store, err := openStore(logger)
	if err != nil {
		return err
	}

	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && term.IsTerminal(int(os.Stdin.Fd()))

	prompt := func(defaults model.Config) (*model.Config, error) {
		if interactive {
			return cli.RunConfigureForm(defaults, store.Validate)
		}

		return cli.PromptConfig(cmd.InOrStdin(), cmd.OutOrStdout(), defaults, store.Validate)
	}

	if _, err := core.CreateConfig(store, prompt, core.GHToken, logger); err != nil {
		return err
	}

	printf(cmd.OutOrStdout(), "%s\n", lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Render("✓ Configuration saved to "+store.Path()))

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("plain", false, "Use line prompts instead of the form")
}
