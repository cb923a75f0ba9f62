// Package cli provides the terminal user interface components for git-backup.
//
// The package uses [Bubbletea] for the interactive config wizard and
// [Lipgloss] for styling. When stdin is not a terminal the wizard falls back
// to [PromptConfig], a plain line-by-line prompt.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
