package database

import "github.com/inovacc/git-backup/internal/model"

// Store defines the history operations used by the app
type Store interface {
	Ping() error
	SaveRun(run *model.BackupRun) error
	ListRuns(limit int) ([]model.BackupRun, error)
	GetRun(id string) (*model.BackupRun, error)
	Close() error
}
