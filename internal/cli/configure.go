package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/git-backup/internal/model"
)

const fmtV1 = " %s\n %s\n\n"

// ErrAborted is returned when the user leaves the wizard without submitting
var ErrAborted = errors.New("configuration aborted")

var (
	focusedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle        = focusedStyle
	noStyle            = lipgloss.NewStyle()
	helpStyleConfigure = blurredStyle

	focusedButton = focusedStyle.Render("[ Submit ]")
	blurredButton = fmt.Sprintf("[ %s ]", blurredStyle.Render("Submit"))
)

const (
	fieldOwner = iota
	fieldIsOrg
	fieldUser
	fieldToken
	fieldBackupDir
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Repo owner (org or user):",
	"Is the owner an organisation? (y/n):",
	"GitHub user:",
	"GitHub personal access token:",
	"Location to back up to:",
}

// ConfigureModel is the init wizard form
type ConfigureModel struct {
	focusIndex int
	inputs     []textinput.Model
	base       model.Config
	validate   func(*model.Config) error

	Result  *model.Config
	Aborted bool
	Err     error
}

// NewConfigureModel creates a form prefilled from defaults. validate, if
// non-nil, is run on submit; a failing config keeps the form open.
func NewConfigureModel(defaults model.Config, validate func(*model.Config) error) *ConfigureModel {
	m := &ConfigureModel{
		inputs:   make([]textinput.Model, fieldCount),
		base:     defaults,
		validate: validate,
	}

	var t textinput.Model
	for i := range m.inputs {
		t = textinput.New()
		t.Cursor.Style = cursorStyle
		t.CharLimit = 256

		switch i {
		case fieldOwner:
			t.Placeholder = "org or user"
			t.SetValue(defaults.Owner)
			t.Focus()
			t.PromptStyle = focusedStyle
			t.TextStyle = focusedStyle
		case fieldIsOrg:
			t.Placeholder = "n"
			t.CharLimit = 5
			t.SetValue(formatBool(defaults.IsOrg))
		case fieldUser:
			t.Placeholder = "your GitHub login"
			t.SetValue(defaults.User)
		case fieldToken:
			t.Placeholder = "ghp_..."
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
			t.SetValue(defaults.Token)
		case fieldBackupDir:
			t.Placeholder = "/path/to/backups"
			t.SetValue(defaults.BackupDir)
		}

		m.inputs[i] = t
	}

	return m
}

func (m *ConfigureModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ConfigureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			// Submit on enter when on the submit button
			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m, m.submit()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			return m, m.refocus()
		}
	}

	return m, m.updateInputs(msg)
}

func (m *ConfigureModel) refocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle

			continue
		}

		m.inputs[i].Blur()
		m.inputs[i].PromptStyle = noStyle
		m.inputs[i].TextStyle = noStyle
	}

	return tea.Batch(cmds...)
}

func (m *ConfigureModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	// Only the focused input responds to key messages
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

// submit builds the config and quits, or reports why it cannot
func (m *ConfigureModel) submit() tea.Cmd {
	isOrg, err := parseBool(m.inputs[fieldIsOrg].Value(), m.base.IsOrg)
	if err != nil {
		m.Err = err
		return nil
	}

	cfg := m.base
	cfg.Owner = strings.TrimSpace(m.inputs[fieldOwner].Value())
	cfg.IsOrg = isOrg
	cfg.User = strings.TrimSpace(m.inputs[fieldUser].Value())
	cfg.Token = strings.TrimSpace(m.inputs[fieldToken].Value())
	cfg.BackupDir = strings.TrimSpace(m.inputs[fieldBackupDir].Value())

	if m.validate != nil {
		if err := m.validate(&cfg); err != nil {
			m.Err = err
			return nil
		}
	}

	m.Err = nil
	m.Result = &cfg

	return tea.Quit
}

func (m *ConfigureModel) View() string {
	if m.Result != nil {
		return ""
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	s := headerStyle.Render("Configure git-backup") + "\n"
	s += blurredStyle.Render("Edit the fields below and press Tab to navigate") + "\n\n"

	for i, input := range m.inputs {
		s += fmt.Sprintf(fmtV1, blurredStyle.Render(fieldLabels[i]), input.View())
	}

	button := &blurredButton
	if m.focusIndex == len(m.inputs) {
		button = &focusedButton
	}

	s += fmt.Sprintf("\n %s\n\n", *button)

	if m.Err != nil {
		s += errorStyle.Render(fmt.Sprintf(" ✗ %v", m.Err)) + "\n\n"
	}

	s += helpStyleConfigure.Render(" tab/shift+tab: navigate • enter: submit • esc: quit")

	return s
}

// RunConfigureForm shows the wizard on the terminal and returns the
// submitted config
func RunConfigureForm(defaults model.Config, validate func(*model.Config) error) (*model.Config, error) {
	m := NewConfigureModel(defaults, validate)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	if m.Aborted || m.Result == nil {
		return nil, ErrAborted
	}

	return m.Result, nil
}

func formatBool(v bool) string {
	if v {
		return "y"
	}

	return "n"
}

func parseBool(s string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("answer y or n, not %q", s)
	}
}
