// Package auth resolves the API token from an ordered list of sources.
package auth

import (
	"fmt"
	"os"
)

// EnvToken is exported to the system git process so the credential helper
// can hand the token back without re-reading the config file.
const EnvToken = "GIT_BACKUP_TOKEN"

// Source names where a token was found
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceConfig Source = "config"
	SourceNone   Source = "none"
)

// Result contains the resolved token and its source
type Result struct {
	Token  string
	Source Source
	Name   string // e.g. "GITHUB_TOKEN" or "config"
}

// TokenProvider returns a token, or "" when it has none to offer. An error is
// returned only for unexpected failures.
type TokenProvider func() (token string, name string, source Source, err error)

// Resolver tries providers in the order they were added
type Resolver struct {
	providers []TokenProvider
}

// NewResolver creates an empty resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// WithFlag adds an explicit command-line value
func (r *Resolver) WithFlag(value string) *Resolver {
	return r.WithProvider(func() (string, string, Source, error) {
		return value, "flag", SourceFlag, nil
	})
}

// WithConfig adds the token stored in the config file
func (r *Resolver) WithConfig(value string) *Resolver {
	return r.WithProvider(func() (string, string, Source, error) {
		return value, "config", SourceConfig, nil
	})
}

// WithEnv adds environment variables, checked in order
func (r *Resolver) WithEnv(vars ...string) *Resolver {
	for _, name := range vars {
		r.WithProvider(func() (string, string, Source, error) {
			return os.Getenv(name), name, SourceEnv, nil
		})
	}

	return r
}

// WithProvider adds a custom provider
func (r *Resolver) WithProvider(p TokenProvider) *Resolver {
	r.providers = append(r.providers, p)
	return r
}

// Resolve returns the first non-empty token. When no source has one the
// result is empty with SourceNone; the public listing endpoints work
// unauthenticated, at a lower rate limit.
func (r *Resolver) Resolve() (*Result, error) {
	for _, provider := range r.providers {
		token, name, source, err := provider()
		if err != nil {
			return nil, fmt.Errorf("token provider %s: %w", name, err)
		}

		if token != "" {
			return &Result{Token: token, Source: source, Name: name}, nil
		}
	}

	return &Result{Source: SourceNone, Name: "none"}, nil
}
