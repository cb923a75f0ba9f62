package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/git-backup/internal/model"
	"github.com/spf13/cobra"
)

var (
	historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	historyDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyles       = map[model.RunStatus]lipgloss.Style{
		model.RunStatusComplete:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.RunStatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.RunStatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded backup runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		id, _ := cmd.Flags().GetString("id")

		db, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		var runs []model.BackupRun

		if id != "" {
			run, err := db.GetRun(id)
			if err != nil {
				return fmt.Errorf("run %s: %w", id, err)
			}

			runs = append(runs, *run)
		} else {
			runs, err = db.ListRuns(limit)
			if err != nil {
				return err
			}
		}

		if jsonFlag {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(runs)
		}

		renderHistory(cmd.OutOrStdout(), runs)

		return nil
	},
}

func renderHistory(w io.Writer, runs []model.BackupRun) {
	if len(runs) == 0 {
		printf(w, "%s\n", historyDimStyle.Render("No backup runs recorded yet."))
		return
	}

	printf(w, "%s\n", historyHeaderStyle.Render(fmt.Sprintf("%-20s  %-20s  %-10s  %8s  %6s  %10s",
		"STARTED", "OWNER", "STATUS", "CLONED", "FAILED", "DURATION")))

	for _, run := range runs {
		status := string(run.Status)
		if style, ok := statusStyles[run.Status]; ok {
			status = style.Render(fmt.Sprintf("%-10s", status))
		}

		printf(w, "%-20s  %-20s  %s  %8s  %6d  %10s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Owner,
			status,
			fmt.Sprintf("%d/%d", run.Cloned, run.Total),
			run.Failed,
			run.Duration().Round(time.Second),
		)

		if len(run.FailedRepos) > 0 {
			printf(w, "  %s\n", historyDimStyle.Render("failed: "+strings.Join(run.FailedRepos, ", ")))
		}

		if run.Error != "" {
			printf(w, "  %s\n", historyDimStyle.Render("error: "+run.Error))
		}
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().String("id", "", "Show only the run with this ID")
}
