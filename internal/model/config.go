package model

import (
	"os"
)

// Transport selects how repositories are fetched
type Transport string

const (
	// TransportHTTPS clones clone_url with the token as basic-auth username
	TransportHTTPS Transport = "https"

	// TransportSSH clones ssh_url authenticating through the SSH agent
	TransportSSH Transport = "ssh"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com/"

// Config holds the account and backup target settings persisted in
// ~/.git-backup.json
type Config struct {
	// Owner is the user or organization whose repositories are backed up
	Owner string `json:"owner"`

	// IsOrg selects the organization listing endpoint instead of the user one
	IsOrg bool `json:"isOrg"`

	// User is the account the token belongs to
	User string `json:"user"`

	// Token is the personal access token used for the API and for cloning
	Token string `json:"token"`

	// BackupDir is the directory holding .git-backups and .old-git-backups
	BackupDir string `json:"backupDir"`

	// APIURL overrides the API base URL (GitHub Enterprise)
	APIURL string `json:"apiUrl,omitempty"`

	// Transport is "https" (default) or "ssh"
	Transport Transport `json:"transport,omitempty"`

	// InsecureSkipTLS disables server certificate verification while cloning
	InsecureSkipTLS bool `json:"insecureSkipTLS,omitempty"`
}

// DefaultConfig returns the values offered by the init wizard when neither a
// user config nor template value is usable
func DefaultConfig() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return Config{
		BackupDir: homeDir,
		Transport: TransportHTTPS,
	}
}

// BaseURL returns the API base URL, always ending in a slash
func (c *Config) BaseURL() string {
	u := c.APIURL
	if u == "" {
		u = DefaultAPIURL
	}

	if u[len(u)-1] != '/' {
		u += "/"
	}

	return u
}

// EffectiveTransport returns the configured transport or https
func (c *Config) EffectiveTransport() Transport {
	if c.Transport == "" {
		return TransportHTTPS
	}

	return c.Transport
}

// Redacted returns a copy with the token masked
func (c Config) Redacted() Config {
	if len(c.Token) > 4 {
		c.Token = c.Token[:4] + "****"
	} else if c.Token != "" {
		c.Token = "****"
	}

	return c
}
