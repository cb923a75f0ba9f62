package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inovacc/git-backup/internal/model"
)

// PromptConfig asks for each config value on its own line. An empty answer
// keeps the default, as does end of input.
func PromptConfig(in io.Reader, out io.Writer, defaults model.Config, validate func(*model.Config) error) (*model.Config, error) {
	scanner := bufio.NewScanner(in)

	ask := func(label, def, shown string) (string, bool) {
		if shown != "" {
			_, _ = fmt.Fprintf(out, "%s [%s] ", label, shown)
		} else {
			_, _ = fmt.Fprintf(out, "%s ", label)
		}

		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return def, false
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			return def, true
		}

		return answer, true
	}

	cfg := defaults

	cfg.Owner, _ = ask(fieldLabels[fieldOwner], defaults.Owner, defaults.Owner)

	for {
		answer, more := ask(fieldLabels[fieldIsOrg], formatBool(defaults.IsOrg), formatBool(defaults.IsOrg))

		isOrg, err := parseBool(answer, defaults.IsOrg)
		if err == nil {
			cfg.IsOrg = isOrg
			break
		}

		if !more {
			return nil, err
		}

		_, _ = fmt.Fprintln(out, err)
	}

	cfg.User, _ = ask(fieldLabels[fieldUser], defaults.User, defaults.User)
	cfg.Token, _ = ask(fieldLabels[fieldToken], defaults.Token, maskToken(defaults.Token))
	cfg.BackupDir, _ = ask(fieldLabels[fieldBackupDir], defaults.BackupDir, defaults.BackupDir)

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	if validate != nil {
		if err := validate(&cfg); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}

	return model.Config{Token: token}.Redacted().Token
}
