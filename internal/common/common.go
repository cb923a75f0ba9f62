// Package common holds helpers shared by the listing and cloning code.
package common

import (
	"net/url"
	"strings"
)

// SanitizeGitURL removes userinfo from a git URL so it can be logged.
// SCP-like URLs (git@host:owner/repo) carry no secret and are returned as is.
func SanitizeGitURL(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}

	u.User = nil

	return u.String()
}

// ScrubSecret replaces every occurrence of secret in s. Used on git output
// and error text before it reaches the log.
func ScrubSecret(s, secret string) string {
	if secret == "" {
		return s
	}

	return strings.ReplaceAll(s, secret, "****")
}
