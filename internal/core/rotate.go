package core

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// CurrentDirName holds the generation being written by the current run
	CurrentDirName = ".git-backups"

	// OldDirName holds the previous generation
	OldDirName = ".old-git-backups"
)

// BackupLayout names the two generation directories under a backup root
type BackupLayout struct {
	Current string
	Old     string
}

// LayoutFor returns the generation directories under backupDir
func LayoutFor(backupDir string) BackupLayout {
	return BackupLayout{
		Current: filepath.Join(backupDir, CurrentDirName),
		Old:     filepath.Join(backupDir, OldDirName),
	}
}

// RotateBackupDir discards the oldest generation, demotes the current one and
// creates an empty current directory, returning its path. Steps run in that
// order, each completing before the next, so at most one generation is
// discarded per run. A failed step is not rolled back.
func RotateBackupDir(backupDir string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	layout := LayoutFor(backupDir)

	if err := os.RemoveAll(layout.Old); err != nil {
		return "", &RotationError{Step: "remove", Path: layout.Old, Err: err}
	}

	info, err := os.Stat(layout.Current)

	switch {
	case err == nil && !info.IsDir():
		return "", &RotationError{Step: "rename", Path: layout.Current, Err: errors.New("not a directory")}
	case err == nil:
		if err := os.Rename(layout.Current, layout.Old); err != nil {
			return "", &RotationError{Step: "rename", Path: layout.Current, Err: err}
		}

		logger.Debug("previous backup moved",
			slog.String("from", layout.Current),
			slog.String("to", layout.Old),
		)
	case !errors.Is(err, fs.ErrNotExist):
		return "", &RotationError{Step: "rename", Path: layout.Current, Err: err}
	}

	if err := os.MkdirAll(layout.Current, 0o755); err != nil {
		return "", &RotationError{Step: "create", Path: layout.Current, Err: err}
	}

	return layout.Current, nil
}
