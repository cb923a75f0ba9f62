// Package config loads, validates and persists the git-backup configuration
// file (~/.git-backup.json).
//
// The file is read fresh on every operation. A config in which any value still
// holds a template placeholder such as {{token}} is rejected as a whole.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/inovacc/git-backup/internal/application"
	"github.com/inovacc/git-backup/internal/encoding"
	"github.com/inovacc/git-backup/internal/model"
)

//go:embed template.json
var templateJSON []byte

var placeholderPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Store reads and writes the config file at a fixed path
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for path. An empty path means ~/.git-backup.json.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path == "" {
		var err error

		path, err = application.ConfigFilePath()
		if err != nil {
			return nil, err
		}
	}

	return &Store{path: path, logger: logger}, nil
}

// Path returns the file the store reads and writes
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the config file
func (s *Store) Load() (*model.Config, error) {
	data, err := encoding.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, fmt.Errorf("%w: %s (run '%s init' to create it)", ErrConfigMissing, s.path, application.AppName)
	}

	raw, err := encoding.ParseJSON[map[string]any](data)
	if err != nil {
		return nil, &InvalidError{Path: s.path, Err: err}
	}

	if keys := s.placeholderKeys(*raw); len(keys) > 0 {
		s.logger.Debug("config load failed", slog.String("path", s.path))
		return nil, &InvalidError{Path: s.path, Placeholders: keys}
	}

	cfg, err := encoding.ParseJSON[model.Config](data)
	if err != nil {
		return nil, &InvalidError{Path: s.path, Err: err}
	}

	if missing := missingKeys(cfg); len(missing) > 0 {
		return nil, &InvalidError{Path: s.path, Missing: missing}
	}

	if err := checkTransport(cfg); err != nil {
		return nil, &InvalidError{Path: s.path, Err: err}
	}

	return cfg, nil
}

// Raw returns the config file as stored
func (s *Store) Raw() ([]byte, error) {
	data, err := encoding.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, fmt.Errorf("%w: %s (run '%s init' to create it)", ErrConfigMissing, s.path, application.AppName)
	}

	return data, nil
}

// LoadDefaults returns the values the init wizard starts from: the existing
// user config when there is one (placeholders allowed), else the bundled
// template.
func (s *Store) LoadDefaults() (*model.Config, error) {
	cfg, err := encoding.ReadJSON[model.Config](s.path)
	if err != nil {
		s.logger.Debug("ignoring unreadable user config",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	}

	if cfg != nil {
		return cfg, nil
	}

	return encoding.ParseJSON[model.Config](templateJSON)
}

// Persist validates cfg and writes it as pretty-printed JSON
func (s *Store) Persist(cfg *model.Config) error {
	if err := s.Validate(cfg); err != nil {
		return err
	}

	if err := encoding.WriteJSONSecure(s.path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Debug("config saved", slog.String("path", s.path))

	return nil
}

// Validate applies the same checks as Load to an in-memory config
func (s *Store) Validate(cfg *model.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return &InvalidError{Path: s.path, Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &InvalidError{Path: s.path, Err: err}
	}

	if keys := s.placeholderKeys(raw); len(keys) > 0 {
		return &InvalidError{Path: s.path, Placeholders: keys}
	}

	if missing := missingKeys(cfg); len(missing) > 0 {
		return &InvalidError{Path: s.path, Missing: missing}
	}

	if err := checkTransport(cfg); err != nil {
		return &InvalidError{Path: s.path, Err: err}
	}

	return nil
}

// IsPlaceholder reports whether v contains an unresolved {{...}} token
func IsPlaceholder(v string) bool {
	return placeholderPattern.MatchString(v)
}

// placeholderKeys returns, sorted, every key whose value still holds a
// placeholder, logging each one
func (s *Store) placeholderKeys(raw map[string]any) []string {
	var keys []string

	for key, value := range raw {
		str := fmt.Sprint(value)
		if IsPlaceholder(str) {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	for _, key := range keys {
		s.logger.Warn("invalid config item",
			slog.String("key", key),
			slog.String("value", fmt.Sprint(raw[key])),
		)
	}

	return keys
}

func missingKeys(cfg *model.Config) []string {
	var missing []string

	if cfg.Owner == "" {
		missing = append(missing, "owner")
	}

	if cfg.BackupDir == "" {
		missing = append(missing, "backupDir")
	}

	return missing
}

func checkTransport(cfg *model.Config) error {
	switch cfg.Transport {
	case "", model.TransportHTTPS, model.TransportSSH:
		return nil
	default:
		return fmt.Errorf("unknown transport %q (want https or ssh)", cfg.Transport)
	}
}
