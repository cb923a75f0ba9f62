package core

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v82/github"
	"github.com/inovacc/git-backup/internal/application"
	"github.com/inovacc/git-backup/internal/model"
	"golang.org/x/oauth2"
)

// newGitHubClient creates an API client for cfg. A non-empty token is sent as
// "Authorization: token <token>"; an empty one leaves requests anonymous.
func newGitHubClient(cfg *model.Config, base *http.Client) (*github.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}

	httpClient := base
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "token",
		})

		httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: base.Transport},
			Timeout:   base.Timeout,
		}
	}

	baseURL, err := url.Parse(cfg.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", cfg.APIURL, err)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = baseURL
	client.UserAgent = application.AppName

	return client, nil
}
