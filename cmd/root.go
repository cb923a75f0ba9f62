package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/git-backup/internal/application"
	"github.com/inovacc/git-backup/internal/config"
	"github.com/inovacc/git-backup/internal/database"
	"github.com/spf13/cobra"
)

var (
	debugFlag   bool
	jsonFlag    bool
	configPath  string
	historyPath string
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Back up every repository of a GitHub user or organization",
	Long: `git-backup clones every repository owned by a GitHub user or organization
into <backupDir>/.git-backups, keeping the previous run in
<backupDir>/.old-git-backups.

Run 'git-backup init' once to create ~/.git-backup.json, then
'git-backup backup' to take a backup.`,
	Version:       application.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_ = cmd.Usage()
		return fmt.Errorf("a command is required")
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context; any error is logged and exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		newLogger(rootCmd).Error(err.Error())
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "D", false, "Enable debug messages")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is $HOME/.git-backup.json)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history-file", "", "Run history database (default is <user config dir>/git-backup/history.bolt)")
}

// newLogger creates the command's logger: text on stderr, or JSON on stdout
// with --json
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonFlag {
		handler = slog.NewJSONHandler(cmd.OutOrStdout(), opts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}

	return slog.New(handler)
}

func openStore(logger *slog.Logger) (*config.Store, error) {
	return config.NewStore(configPath, logger)
}

func openHistory() (database.Store, error) {
	var (
		db  *database.Bolt
		err error
	)

	if historyPath != "" {
		db, err = database.NewBolt(historyPath)
	} else {
		db, err = database.Open()
	}

	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
