package versionsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flanksource/vx/internal/manifest"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubSource discovers versions from GitHub release tags, grounded on the
// predecessor's pkg/manager/github.GitHubReleaseManager.DiscoverVersions — but
// trimmed to the REST "list releases" call only; vx does not need the
// predecessor's git-HTTP-protocol fast path since version discovery here is
// called once per process and cached by the resolver, not on every run.
type GitHubSource struct {
	client *github.Client
}

// NewGitHubSource builds a GitHubSource. If token is empty, it falls back to
// GITHUB_TOKEN / GH_TOKEN env vars, then to an unauthenticated client.
func NewGitHubSource(token string) *GitHubSource {
	if token == "" {
		for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
			if v := os.Getenv(name); v != "" {
				token = v
				break
			}
		}
	}
	if token == "" {
		return &GitHubSource{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	return &GitHubSource{client: github.NewClient(httpClient)}
}

func (s *GitHubSource) Name() string { return "github_releases" }

// Discover lists releases for spec.Repo (owner/repo) and returns their tag
// names, draft releases excluded, newest-published-first.
func (s *GitHubSource) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	parts := strings.SplitN(spec.Repo, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("github_releases: repo must be \"owner/repo\", got %q", spec.Repo)
	}
	owner, repo := parts[0], parts[1]

	perPage := limit
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	opts := &github.ListOptions{PerPage: perPage}
	releases, _, err := s.client.Repositories.ListReleases(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("listing releases for %s/%s: %w", owner, repo, err)
	}

	tags := make([]string, 0, len(releases))
	for _, r := range releases {
		if r.GetDraft() {
			continue
		}
		tags = append(tags, r.GetTagName())
	}
	return tags, nil
}
