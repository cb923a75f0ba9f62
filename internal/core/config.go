package core

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ghauth "github.com/cli/go-gh/v2/pkg/auth"
	"github.com/inovacc/git-backup/internal/config"
	"github.com/inovacc/git-backup/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ShowConfig validates the config file and writes it to w as stored. With
// redact set, the file is re-encoded with the token masked; keys the app does
// not use are kept either way.
func ShowConfig(w io.Writer, store *config.Store, redact bool) error {
	cfg, err := store.Load()
	if err != nil {
		return err
	}

	data, err := store.Raw()
	if err != nil {
		return err
	}

	if redact {
		data, err = redactToken(data, cfg.Redacted().Token)
		if err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, titleStyle.Render("git-backup config"))
	_, _ = fmt.Fprintln(w, dimStyle.Render(store.Path()))
	_, _ = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))

	return nil
}

func redactToken(data []byte, masked string) ([]byte, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if _, ok := raw["token"]; ok {
		raw["token"] = masked
	}

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	return out, nil
}

// ConfigPrompter asks the user for config values, starting from defaults
type ConfigPrompter func(defaults model.Config) (*model.Config, error)

// TokenLookup returns a token for a host, or "" when none is known
type TokenLookup func(host string) string

// GHToken looks up the token the gh CLI holds for host
func GHToken(host string) string {
	token, _ := ghauth.TokenForHost(host)
	return token
}

// CreateConfig runs the init flow: load defaults, prompt, validate and
// persist. lookup may be nil.
func CreateConfig(store *config.Store, prompt ConfigPrompter, lookup TokenLookup, logger *slog.Logger) (*model.Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("create config", slog.String("path", store.Path()))

	current, err := store.LoadDefaults()
	if err != nil {
		return nil, err
	}

	defaults := wizardDefaults(current, lookup)

	cfg, err := prompt(defaults)
	if err != nil {
		return nil, err
	}

	if err := store.Persist(cfg); err != nil {
		return nil, err
	}

	logger.Info("config saved", slog.String("path", store.Path()))

	return cfg, nil
}

// wizardDefaults clears unresolved placeholders so the wizard starts from
// usable values. backupDir falls back to the home directory and the token to
// the gh CLI's token for the API host.
func wizardDefaults(current *model.Config, lookup TokenLookup) model.Config {
	defaults := *current
	base := model.DefaultConfig()

	for _, field := range []*string{&defaults.Owner, &defaults.User, &defaults.Token, &defaults.BackupDir, &defaults.APIURL} {
		if config.IsPlaceholder(*field) {
			*field = ""
		}
	}

	if defaults.BackupDir == "" {
		defaults.BackupDir = base.BackupDir
	}

	if defaults.Transport == "" || config.IsPlaceholder(string(defaults.Transport)) {
		defaults.Transport = base.Transport
	}

	if defaults.Token == "" && lookup != nil {
		defaults.Token = lookup(apiHost(&defaults))
	}

	return defaults
}

// apiHost maps the API URL to the host the gh CLI keys tokens by
func apiHost(cfg *model.Config) string {
	u, err := url.Parse(cfg.BaseURL())
	if err != nil || u.Host == "" || u.Host == "api.github.com" {
		return "github.com"
	}

	return u.Host
}
