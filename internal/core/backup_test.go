package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/inovacc/git-backup/internal/git"
	"github.com/inovacc/git-backup/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	repos []model.Repository
	err   error
	calls int
}

func (s *stubLister) ListAll(context.Context, *model.Config) ([]model.Repository, error) {
	s.calls++
	return s.repos, s.err
}

type memoryHistory struct {
	runs []model.BackupRun
	err  error
}

func (m *memoryHistory) SaveRun(run *model.BackupRun) error {
	m.runs = append(m.runs, *run)
	return m.err
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func backupConfig(t *testing.T) *model.Config {
	t.Helper()

	return &model.Config{
		Owner:     "acme",
		IsOrg:     true,
		User:      "alice",
		Token:     "ghp_test",
		BackupDir: t.TempDir(),
	}
}

func TestRunBackup_EndToEnd(t *testing.T) {
	api := newFakeAPI(t, "acme",
		[]model.Repository{repo(1, "a"), repo(2, "b")},
		[]model.Repository{repo(3, "c")},
	)

	cfg := api.config(true)
	cfg.BackupDir = t.TempDir()

	// a previous generation and an older one
	writeMarker(t, filepath.Join(cfg.BackupDir, OldDirName, "ancient", "HEAD"))
	writeMarker(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))

	logger, logs := newTestLogger()
	cloner := &fakeCloner{}
	history := &memoryHistory{}

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:        NewGitHubLister(ListerOptions{Logger: logger}),
		Cloner:        cloner,
		CloneInterval: time.Millisecond,
		History:       history,
		Logger:        logger,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Run.Total)
	assert.Equal(t, 3, result.Run.Cloned)
	assert.Equal(t, model.RunStatusComplete, result.Run.Status)
	assert.Equal(t, filepath.Join(cfg.BackupDir, CurrentDirName), result.Dir)

	for _, name := range []string{"a", "b", "c"} {
		assert.FileExists(t, filepath.Join(result.Dir, name, "HEAD"))
	}

	assert.FileExists(t, filepath.Join(cfg.BackupDir, OldDirName, "a", "HEAD"))
	assert.NoDirExists(t, filepath.Join(cfg.BackupDir, OldDirName, "ancient"))

	out := logs.String()
	assert.Contains(t, out, "Known repos (3)")
	assert.Contains(t, out, "backup complete")

	require.Len(t, history.runs, 1)
	assert.Equal(t, result.Run.ID, history.runs[0].ID)
	assert.Equal(t, "acme", history.runs[0].Owner)
}

func TestRunBackup_CloneFailureIsolated(t *testing.T) {
	cfg := backupConfig(t)
	logger, logs := newTestLogger()

	cloner := &fakeCloner{fail: map[string]error{"b": errors.New("remote: Repository not found.")}}

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:        &stubLister{repos: []model.Repository{repo(1, "a"), repo(2, "b"), repo(3, "c")}},
		Cloner:        cloner,
		CloneInterval: time.Millisecond,
		Logger:        logger,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Run.Cloned)
	assert.Equal(t, 1, result.Run.Failed)
	assert.Equal(t, []string{"b"}, result.Run.FailedRepos)
	assert.Len(t, cloner.Requests(), 3)

	out := logs.String()
	assert.Contains(t, out, "clone failed")
	assert.Contains(t, out, "repo=b")
	assert.Contains(t, out, "backup complete")
	assert.Less(t, strings.Index(out, "clone failed"), strings.Index(out, "backup complete"))
}

func TestRunBackup_ListingFailureKeepsBackups(t *testing.T) {
	cfg := backupConfig(t)
	writeMarker(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))

	history := &memoryHistory{}
	authErr := &AuthError{StatusCode: 401}

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:  &stubLister{err: authErr},
		Cloner:  &fakeCloner{},
		History: history,
	})

	var got *AuthError
	require.ErrorAs(t, err, &got)
	assert.FileExists(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))
	assert.NoDirExists(t, filepath.Join(cfg.BackupDir, OldDirName))

	require.NotNil(t, result)
	assert.Equal(t, model.RunStatusFailed, result.Run.Status)
	require.Len(t, history.runs, 1)
	assert.Equal(t, model.RunStatusFailed, history.runs[0].Status)
}

func TestRunBackup_UnreachableAPIKeepsPreviousRun(t *testing.T) {
	api := newFakeAPI(t, "acme", []model.Repository{repo(1, "a"), repo(2, "b")})

	cfg := api.config(true)
	cfg.BackupDir = t.TempDir()

	opts := BackupOptions{
		Lister:        NewGitHubLister(ListerOptions{}),
		Cloner:        &fakeCloner{},
		CloneInterval: time.Millisecond,
	}

	_, err := RunBackup(context.Background(), cfg, opts)
	require.NoError(t, err)

	api.Close()

	history := &memoryHistory{}
	opts.History = history

	_, err = RunBackup(context.Background(), cfg, opts)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)

	for _, name := range []string{"a", "b"} {
		assert.FileExists(t, filepath.Join(cfg.BackupDir, CurrentDirName, name, "HEAD"))
	}

	assert.NoDirExists(t, filepath.Join(cfg.BackupDir, OldDirName))

	require.Len(t, history.runs, 1)
	assert.Equal(t, model.RunStatusFailed, history.runs[0].Status)
}

func TestRunBackup_EmptyAccount(t *testing.T) {
	cfg := backupConfig(t)
	logger, logs := newTestLogger()

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister: &stubLister{},
		Cloner: &fakeCloner{},
		Logger: logger,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Run.Total)
	assert.DirExists(t, filepath.Join(cfg.BackupDir, CurrentDirName))
	assert.Contains(t, logs.String(), "Known repos (0)")
	assert.Contains(t, logs.String(), "backup complete")
}

func TestRunBackup_DryRun(t *testing.T) {
	cfg := backupConfig(t)
	writeMarker(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))

	cloner := &fakeCloner{}
	history := &memoryHistory{}

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:  &stubLister{repos: []model.Repository{repo(1, "a"), repo(2, "b")}},
		Cloner:  cloner,
		DryRun:  true,
		History: history,
	})
	require.NoError(t, err)

	assert.Len(t, result.Repos, 2)
	assert.Empty(t, result.Dir)
	assert.Empty(t, cloner.Requests())
	assert.Empty(t, history.runs)
	assert.FileExists(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))
}

func TestRunBackup_Filters(t *testing.T) {
	archived := repo(2, "old")
	archived.Archived = true

	fork := repo(3, "fork-of-x")
	fork.Fork = true

	cfg := backupConfig(t)
	cloner := &fakeCloner{}

	result, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:        &stubLister{repos: []model.Repository{repo(1, "api"), archived, fork, repo(4, "web")}},
		Cloner:        cloner,
		CloneInterval: time.Millisecond,
		Filter:        regexp.MustCompile(`^(api|old|fork-of-x)$`),
		SkipArchived:  true,
		SkipForks:     true,
	})
	require.NoError(t, err)

	require.Len(t, result.Repos, 1)
	assert.Equal(t, "api", result.Repos[0].Name)
	assert.Len(t, cloner.Requests(), 1)
}

func TestRunBackup_InsecureSkipTLS(t *testing.T) {
	cfg := backupConfig(t)
	cfg.InsecureSkipTLS = true

	logger, logs := newTestLogger()
	cloner := &fakeCloner{}

	_, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:        &stubLister{repos: []model.Repository{repo(1, "a")}},
		Cloner:        cloner,
		CloneInterval: time.Millisecond,
		Logger:        logger,
	})
	require.NoError(t, err)

	reqs := cloner.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].InsecureSkipTLS)
	assert.Contains(t, logs.String(), "TLS certificate verification is disabled")
}

// cancellingCloner cancels the run once it has cloned n repositories
type cancellingCloner struct {
	fakeCloner
	n      int
	cancel context.CancelFunc
}

func (c *cancellingCloner) Clone(ctx context.Context, req git.CloneRequest) error {
	err := c.fakeCloner.Clone(ctx, req)
	if len(c.Requests()) == c.n {
		c.cancel()
	}

	return err
}

func TestRunBackup_Cancelled(t *testing.T) {
	cfg := backupConfig(t)
	writeMarker(t, filepath.Join(cfg.BackupDir, CurrentDirName, "a", "HEAD"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cloner := &cancellingCloner{n: 1, cancel: cancel}
	history := &memoryHistory{}

	result, err := RunBackup(ctx, cfg, BackupOptions{
		Lister:        &stubLister{repos: []model.Repository{repo(1, "a"), repo(2, "b"), repo(3, "c")}},
		Cloner:        cloner,
		CloneInterval: time.Millisecond,
		History:       history,
	})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, result.Run.Cloned)
	assert.Equal(t, model.RunStatusCancelled, result.Run.Status)
	assert.Len(t, cloner.Requests(), 1)

	// the previous generation survives
	assert.FileExists(t, filepath.Join(cfg.BackupDir, OldDirName, "a", "HEAD"))

	require.Len(t, history.runs, 1)
	assert.Equal(t, model.RunStatusCancelled, history.runs[0].Status)
}

func TestRunBackup_RotationFailure(t *testing.T) {
	cfg := backupConfig(t)
	writeMarker(t, filepath.Join(cfg.BackupDir, CurrentDirName))

	cloner := &fakeCloner{}

	_, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister: &stubLister{repos: []model.Repository{repo(1, "a")}},
		Cloner: cloner,
	})

	var rotErr *RotationError
	require.ErrorAs(t, err, &rotErr)
	assert.Empty(t, cloner.Requests())
}

func TestRunBackup_HistoryFailureIsNotFatal(t *testing.T) {
	cfg := backupConfig(t)
	logger, logs := newTestLogger()

	_, err := RunBackup(context.Background(), cfg, BackupOptions{
		Lister:  &stubLister{},
		Cloner:  &fakeCloner{},
		History: &memoryHistory{err: errors.New("disk full")},
		Logger:  logger,
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "failed to record backup run")
}

func TestListRepos(t *testing.T) {
	logger, logs := newTestLogger()

	repos, err := ListRepos(context.Background(), backupConfig(t), &stubLister{
		repos: []model.Repository{repo(7, "a"), repo(9, "b")},
	}, logger)
	require.NoError(t, err)
	assert.Len(t, repos, 2)

	out := logs.String()
	assert.Contains(t, out, "Known repos (2):")
	assert.Contains(t, out, "=> 7:a:https://github.com/acme/a.git")
	assert.Contains(t, out, "=> 9:b:https://github.com/acme/b.git")
}

func TestListRepos_Error(t *testing.T) {
	_, err := ListRepos(context.Background(), backupConfig(t), &stubLister{err: &NetworkError{Operation: "x", Err: os.ErrDeadlineExceeded}}, nil)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &CloneError{Repo: "a", Err: git.NewGitError(nil, "fatal: Authentication failed for 'https://github.com/acme/a.git/'", errors.New("exit status 128"))}, "auth"},
		{"not found", &CloneError{Repo: "a", Err: git.NewGitError(nil, "remote: Repository not found.", errors.New("exit status 128"))}, "not_found"},
		{"network", &CloneError{Repo: "a", Err: &NetworkError{Operation: "clone", Err: errors.New("boom"), Attempts: 1}}, "network"},
		{"other", &CloneError{Repo: "a", Err: errors.New("disk full")}, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.err))
		})
	}
}
