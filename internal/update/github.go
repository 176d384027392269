package update

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"

	"github.com/valksor/go-cm/internal/log"
)

// GitHubResolver lists releases through the GitHub REST API.
type GitHubResolver struct {
	client  *github.Client
	timeout time.Duration
}

// NewGitHubResolver creates a GitHub resolver.
// Without a token requests are anonymous and subject to rate limits.
func NewGitHubResolver(opts ...ClientOption) (*GitHubResolver, error) {
	o := applyClientOptions(opts)

	httpClient := o.HTTPClient
	if o.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.Token})
		base := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(base, ts)
		httpClient.Timeout = o.Timeout
	}

	client := github.NewClient(httpClient)
	client.UserAgent = o.UserAgent

	if o.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(o.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &GitHubResolver{client: client, timeout: o.Timeout}, nil
}

// LatestPrerelease returns the first release flagged as a pre-release, in the
// order the API lists them. Draft pre-releases (listed only to authenticated
// owners) count like any other.
func (g *GitHubResolver) LatestPrerelease(ctx context.Context, repo string) (*ReleaseInfo, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid github repository %q", repo)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	releases, _, err := g.client.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{
		PerPage: 30,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch releases for %s: %w", repo, err)
	}
	log.Debug("listed releases", "repo", repo, "count", len(releases))

	for _, r := range releases {
		if !r.GetPrerelease() {
			continue
		}

		return ReleaseInfoFromGitHub(r), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoPrerelease, repo)
}

// ReleaseInfoFromGitHub converts a GitHub release to our ReleaseInfo type.
func ReleaseInfoFromGitHub(gh *github.RepositoryRelease) *ReleaseInfo {
	assets := make([]Asset, 0, len(gh.Assets))
	for _, a := range gh.Assets {
		assets = append(assets, Asset{
			Name: a.GetName(),
			URL:  a.GetBrowserDownloadURL(),
			Size: int64(a.GetSize()),
		})
	}

	var publishedAt time.Time
	if gh.PublishedAt != nil {
		publishedAt = gh.PublishedAt.Time
	}

	return &ReleaseInfo{
		TagName:     gh.GetTagName(),
		Name:        gh.GetName(),
		PreRelease:  gh.GetPrerelease(),
		PublishedAt: publishedAt,
		HTMLURL:     gh.GetHTMLURL(),
		Assets:      assets,
	}
}
