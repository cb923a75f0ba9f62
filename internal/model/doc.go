// Package model defines the data structures shared by git-backup packages.
//
// # Config
//
// [Config] mirrors the JSON document stored in ~/.git-backup.json:
//
//	{
//	  "owner": "acme",
//	  "isOrg": true,
//	  "user": "jdoe",
//	  "token": "ghp_xxx",
//	  "backupDir": "/srv/backups"
//	}
//
// # Repository
//
// [Repository] is the subset of the hosting API repository object needed to
// clone it. Values are produced by the lister and discarded after a run.
//
// # BackupRun
//
// [BackupRun] is the history record written after every backup attempt.
package model
