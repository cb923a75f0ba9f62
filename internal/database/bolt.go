package database

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inovacc/git-backup/internal/application"
	"github.com/inovacc/git-backup/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRuns = "runs" // key: sequence -> BackupRun JSON
	boltBucketIDs  = "ids"  // key: run ID -> sequence
)

// ErrRunNotFound is returned by GetRun for an unknown ID
var ErrRunNotFound = errors.New("backup run not found")

var _ Store = (*Bolt)(nil)

type Bolt struct {
	db *bbolt.DB
}

// Open opens the history database at the default location
func Open() (*Bolt, error) {
	path, err := application.HistoryFilePath()
	if err != nil {
		return nil, err
	}

	return NewBolt(path)
}

// NewBolt opens or creates a history database at path
func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketRuns)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketIDs)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Ping checks that the database can be read
func (b *Bolt) Ping() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

// SaveRun stores run. Saving a run whose ID is already stored replaces it.
func (b *Bolt) SaveRun(run *model.BackupRun) error {
	if run == nil || run.ID == "" {
		return errors.New("run ID is required")
	}

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		var (
			runs = tx.Bucket([]byte(boltBucketRuns))
			ids  = tx.Bucket([]byte(boltBucketIDs))
		)

		key := ids.Get([]byte(run.ID))
		if key == nil {
			seq, err := runs.NextSequence()
			if err != nil {
				return err
			}

			key = itob(seq)

			if err := ids.Put([]byte(run.ID), key); err != nil {
				return err
			}
		}

		return runs.Put(key, data)
	})
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (b *Bolt) ListRuns(limit int) ([]model.BackupRun, error) {
	var runs []model.BackupRun

	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}

			var run model.BackupRun
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("corrupt history entry %d: %w", binary.BigEndian.Uint64(k), err)
			}

			runs = append(runs, run)
		}

		return nil
	})

	return runs, err
}

// GetRun returns the run with the given ID
func (b *Bolt) GetRun(id string) (*model.BackupRun, error) {
	var run *model.BackupRun

	err := b.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(boltBucketIDs)).Get([]byte(id))
		if key == nil {
			return ErrRunNotFound
		}

		data := tx.Bucket([]byte(boltBucketRuns)).Get(key)
		if data == nil {
			return ErrRunNotFound
		}

		run = &model.BackupRun{}

		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)

	return buf
}
