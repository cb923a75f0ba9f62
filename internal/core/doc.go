// Package core provides the backup logic for git-backup.
//
// This package contains all functionality separated from UI concerns.
// Functions here return errors instead of printing, take their logger and
// configuration as parameters, and hold no package-level state.
//
// # Backup Operations
//
// A backup run is split into three phases:
//
//  1. [GitHubLister] - pages through the account's repository listing
//  2. [RotateBackupDir] - moves the previous generation aside
//  3. [CloneWorker] - clones each repository, one at a time, paced by a limiter
//
// [RunBackup] sequences the phases. A failed clone is logged and counted; a
// failed listing or rotation aborts the run.
package core
