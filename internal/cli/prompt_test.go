package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/inovacc/git-backup/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptConfig_Answers(t *testing.T) {
	in := strings.NewReader("acme\ny\nalice\nghp_new\n/backups\n")

	var out bytes.Buffer

	cfg, err := PromptConfig(in, &out, model.Config{BackupDir: "/home/alice", Transport: model.TransportHTTPS}, nil)
	require.NoError(t, err)

	assert.Equal(t, &model.Config{
		Owner:     "acme",
		IsOrg:     true,
		User:      "alice",
		Token:     "ghp_new",
		BackupDir: "/backups",
		Transport: model.TransportHTTPS,
	}, cfg)

	assert.Contains(t, out.String(), "Repo owner (org or user):")
	assert.Contains(t, out.String(), "Location to back up to: [/home/alice]")
}

func TestPromptConfig_DefaultsOnEmptyAnswers(t *testing.T) {
	defaults := model.Config{Owner: "acme", IsOrg: true, User: "alice", Token: "ghp_secret", BackupDir: "/b"}

	var out bytes.Buffer

	cfg, err := PromptConfig(strings.NewReader("\n\n\n\n\n"), &out, defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, defaults, *cfg)

	// the token default is never echoed
	assert.NotContains(t, out.String(), "ghp_secret")
	assert.Contains(t, out.String(), "[ghp_****]")
}

func TestPromptConfig_EndOfInputKeepsDefaults(t *testing.T) {
	defaults := model.Config{Owner: "acme", BackupDir: "/b"}

	cfg, err := PromptConfig(strings.NewReader("other"), &bytes.Buffer{}, defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Owner)
	assert.Equal(t, "/b", cfg.BackupDir)
}

func TestPromptConfig_ReasksIsOrg(t *testing.T) {
	var out bytes.Buffer

	cfg, err := PromptConfig(strings.NewReader("acme\nmaybe\nyes\n\n\n\n"), &out, model.Config{BackupDir: "/b"}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.IsOrg)
	assert.Contains(t, out.String(), `answer y or n, not "maybe"`)
}

func TestPromptConfig_Validate(t *testing.T) {
	invalid := errors.New("invalid")

	_, err := PromptConfig(strings.NewReader("{{owner}}\n"), &bytes.Buffer{}, model.Config{}, func(*model.Config) error {
		return invalid
	})
	assert.ErrorIs(t, err, invalid)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		def     bool
		want    bool
		wantErr bool
	}{
		{in: "", def: true, want: true},
		{in: "Y", want: true},
		{in: "yes", want: true},
		{in: "true", want: true},
		{in: "n", def: true, want: false},
		{in: "No", def: true, want: false},
		{in: "sure", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBool(tt.in, tt.def)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
