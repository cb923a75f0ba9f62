package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v82/github"
	"github.com/inovacc/git-backup/internal/model"
)

const (
	// PerPage is the page size requested from the listing endpoints
	PerPage = 100

	// DefaultMaxPages bounds pagination against a server that never stops
	DefaultMaxPages = 500
)

// ErrSequenceConsumed is yielded when a repository sequence is ranged over twice
var ErrSequenceConsumed = errors.New("repository sequence already consumed")

// ListerOptions configures a GitHubLister
type ListerOptions struct {
	// HTTPClient is the base client; nil means http.DefaultClient
	HTTPClient *http.Client

	// MaxPages defaults to DefaultMaxPages
	MaxPages int

	// Retries is how many times a page request failing with a NetworkError
	// is retried. Zero disables retries.
	Retries int

	// NewBackOff returns the delay policy between retries; nil means
	// exponential backoff
	NewBackOff func() backoff.BackOff

	Logger *slog.Logger
}

// GitHubLister pages through the repositories owned by an account
type GitHubLister struct {
	opts   ListerOptions
	logger *slog.Logger
}

// NewGitHubLister creates a lister
func NewGitHubLister(opts ListerOptions) *GitHubLister {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	return &GitHubLister{opts: opts, logger: logger}
}

// ListPath returns the first-page path for the account described by cfg
func ListPath(cfg *model.Config) string {
	kind := "users"
	if cfg.IsOrg {
		kind = "orgs"
	}

	return fmt.Sprintf("%s/%s/repos?per_page=%d", kind, url.PathEscape(cfg.Owner), PerPage)
}

// Repos returns the account's repositories in API order. Pages are fetched
// as the sequence is consumed; the sequence can be ranged over only once.
// Iteration stops at the first error, which is yielded with a zero
// Repository.
func (l *GitHubLister) Repos(ctx context.Context, cfg *model.Config) iter.Seq2[model.Repository, error] {
	var consumed atomic.Bool

	return func(yield func(model.Repository, error) bool) {
		if consumed.Swap(true) {
			yield(model.Repository{}, ErrSequenceConsumed)
			return
		}

		client, err := newGitHubClient(cfg, l.opts.HTTPClient)
		if err != nil {
			yield(model.Repository{}, err)
			return
		}

		var (
			next    = ListPath(cfg)
			visited = make(map[string]bool)
			seenIDs = make(map[int64]bool)
		)

		for page := 1; next != ""; page++ {
			if page > l.opts.MaxPages {
				yield(model.Repository{}, fmt.Errorf("list repositories: more than %d pages", l.opts.MaxPages))
				return
			}

			visited[next] = true

			repos, nextURL, err := l.fetchPageWithRetry(ctx, client, next)
			if err != nil {
				yield(model.Repository{}, err)
				return
			}

			l.logger.Debug("fetched repository page",
				slog.Int("page", page),
				slog.Int("count", len(repos)),
				slog.Bool("has_next", nextURL != ""),
			)

			for _, r := range repos {
				if r == nil || seenIDs[r.GetID()] {
					continue
				}

				seenIDs[r.GetID()] = true

				if !yield(toRepository(r), nil) {
					return
				}
			}

			if nextURL != "" && !sameOrigin(client.BaseURL, nextURL) {
				l.logger.Warn("pagination cursor points at another host, stopping",
					slog.String("url", nextURL),
				)

				return
			}

			if visited[nextURL] {
				l.logger.Warn("pagination cursor repeated, stopping",
					slog.String("url", nextURL),
				)

				return
			}

			next = nextURL
		}
	}
}

// ListAll collects every repository of the account
func (l *GitHubLister) ListAll(ctx context.Context, cfg *model.Config) ([]model.Repository, error) {
	var repos []model.Repository

	for repo, err := range l.Repos(ctx, cfg) {
		if err != nil {
			return nil, err
		}

		repos = append(repos, repo)
	}

	return repos, nil
}

func (l *GitHubLister) fetchPageWithRetry(ctx context.Context, client *github.Client, pageURL string) ([]*github.Repository, string, error) {
	var (
		repos   []*github.Repository
		nextURL string
	)

	err := withRetry(ctx, retryPolicy{
		Retries:    l.opts.Retries,
		NewBackOff: l.opts.NewBackOff,
		Operation:  "list repositories",
		Logger:     l.logger,
	}, func() error {
		var err error

		repos, nextURL, err = fetchPage(ctx, client, pageURL)

		return err
	})

	return repos, nextURL, err
}

func fetchPage(ctx context.Context, client *github.Client, pageURL string) ([]*github.Repository, string, error) {
	reqCtx, cancel := WithRequestTimeout(ctx)
	defer cancel()

	req, err := client.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("list repositories: %w", err)
	}

	req.Header.Set("Cache-Control", "no-cache,no-store")

	var repos []*github.Repository

	resp, err := client.Do(reqCtx, req, &repos)
	if err != nil {
		return nil, "", classifyError(ctx, err)
	}

	return repos, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target of a Link header. Malformed
// entries are ignored, so a header without a usable next link ends
// pagination.
func nextPageURL(header string) string {
	for link := range strings.SplitSeq(header, ",") {
		segments := strings.Split(link, ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if len(target) < 3 || target[0] != '<' || target[len(target)-1] != '>' {
			continue
		}

		for _, param := range segments[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}

			for rel := range strings.FieldsSeq(strings.Trim(strings.TrimSpace(value), `"`)) {
				if strings.EqualFold(rel, "next") {
					return target[1 : len(target)-1]
				}
			}
		}
	}

	return ""
}

// sameOrigin reports whether next, resolved against base, keeps base's
// scheme and host. The client authenticates every request it sends.
func sameOrigin(base *url.URL, next string) bool {
	u, err := url.Parse(next)
	if err != nil {
		return false
	}

	u = base.ResolveReference(u)

	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

// classifyError maps API client errors onto the package's error types
func classifyError(ctx context.Context, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{ResetAt: rateErr.Rate.Reset.Time, Err: err}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{RetryAfter: abuseErr.GetRetryAfter(), Err: err}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{StatusCode: respErr.Response.StatusCode, Message: respErr.Message}
		}

		return fmt.Errorf("list repositories: %w", err)
	}

	// cancelled by the caller, not a timeout of our own
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &NetworkError{Operation: "list repositories", Err: err, Attempts: 1}
	}

	return fmt.Errorf("list repositories: %w", err)
}

func toRepository(r *github.Repository) model.Repository {
	return model.Repository{
		ID:       r.GetID(),
		Name:     r.GetName(),
		CloneURL: r.GetCloneURL(),
		SSHURL:   r.GetSSHURL(),
		Archived: r.GetArchived(),
		Fork:     r.GetFork(),
	}
}
