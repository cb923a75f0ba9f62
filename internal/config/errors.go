package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigMissing is returned when no config file exists yet
	ErrConfigMissing = errors.New("config not found")

	// ErrConfigInvalid matches every *InvalidError
	ErrConfigInvalid = errors.New("invalid config")
)

// InvalidError reports a config that exists but cannot be used
type InvalidError struct {
	Path         string
	Placeholders []string // keys still holding a {{...}} template value
	Missing      []string // required keys left empty
	Err          error    // parse failure, if any
}

func (e *InvalidError) Error() string {
	var parts []string

	if len(e.Placeholders) > 0 {
		parts = append(parts, "unresolved placeholder in "+strings.Join(e.Placeholders, ", "))
	}

	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	where := ""
	if e.Path != "" {
		where = " " + e.Path
	}

	return fmt.Sprintf("invalid config%s: %s", where, strings.Join(parts, "; "))
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConfigInvalid) match any InvalidError
func (e *InvalidError) Is(target error) bool {
	return target == ErrConfigInvalid
}
