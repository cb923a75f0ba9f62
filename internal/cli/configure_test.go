package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/git-backup/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m *ConfigureModel, keys ...tea.KeyType) {
	for _, k := range keys {
		m.Update(tea.KeyMsg{Type: k})
	}
}

func typeText(m *ConfigureModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestConfigureModel_Submit(t *testing.T) {
	m := NewConfigureModel(model.Config{BackupDir: "/home/alice", Transport: model.TransportHTTPS}, nil)

	typeText(m, "acme")
	press(m, tea.KeyTab)
	m.inputs[fieldIsOrg].SetValue("")
	typeText(m, "y")
	press(m, tea.KeyTab)
	typeText(m, "alice")
	press(m, tea.KeyTab)
	typeText(m, "ghp_abc")

	// move to the submit button and press enter
	press(m, tea.KeyTab, tea.KeyTab, tea.KeyEnter)

	require.NotNil(t, m.Result)
	assert.Equal(t, model.Config{
		Owner:     "acme",
		IsOrg:     true,
		User:      "alice",
		Token:     "ghp_abc",
		BackupDir: "/home/alice",
		Transport: model.TransportHTTPS,
	}, *m.Result)
}

func TestConfigureModel_ValidationKeepsFormOpen(t *testing.T) {
	m := NewConfigureModel(model.Config{}, func(*model.Config) error {
		return errors.New("missing owner")
	})

	m.focusIndex = len(m.inputs)
	press(m, tea.KeyEnter)

	assert.Nil(t, m.Result)
	require.Error(t, m.Err)
	assert.Contains(t, m.View(), "missing owner")
}

func TestConfigureModel_Escape(t *testing.T) {
	m := NewConfigureModel(model.Config{}, nil)

	press(m, tea.KeyEsc)

	assert.True(t, m.Aborted)
	assert.Nil(t, m.Result)
}

func TestConfigureModel_FocusWraps(t *testing.T) {
	m := NewConfigureModel(model.Config{}, nil)

	press(m, tea.KeyShiftTab)
	assert.Equal(t, len(m.inputs), m.focusIndex)

	press(m, tea.KeyTab)
	assert.Equal(t, 0, m.focusIndex)
}

func TestConfigureModel_TokenMasked(t *testing.T) {
	m := NewConfigureModel(model.Config{Token: "ghp_secret"}, nil)

	assert.NotContains(t, m.View(), "ghp_secret")
}
