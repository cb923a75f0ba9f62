package git

import (
	"net/url"
	"strings"
)

// ParseURL parses a git URL, including SCP-like syntax
func ParseURL(rawURL string) (*url.URL, error) {
	// git@github.com:owner/repo.git -> ssh://git@github.com/owner/repo.git
	if !strings.Contains(rawURL, "://") && strings.Contains(rawURL, ":") && strings.Contains(rawURL, "@") {
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "git+https":
		u.Scheme = "https"
	case "git+ssh":
		u.Scheme = "ssh"
	}

	return u, nil
}
