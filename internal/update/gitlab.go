package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/mod/semver"

	"github.com/valksor/go-cm/internal/log"
)

// GitLabResolver lists releases through the GitLab REST API.
type GitLabResolver struct {
	gl      *gitlab.Client
	timeout time.Duration
}

// NewGitLabResolver creates a GitLab resolver. BaseURL is the instance root
// ("https://gitlab.example.com"); the API path is appended.
func NewGitLabResolver(opts ...ClientOption) (*GitLabResolver, error) {
	o := applyClientOptions(opts)

	options := []gitlab.ClientOptionFunc{gitlab.WithHTTPClient(o.HTTPClient)}
	if o.BaseURL != "" {
		options = append(options, gitlab.WithBaseURL(strings.TrimSuffix(o.BaseURL, "/")+"/api/v4"))
	}

	client, err := gitlab.NewClient(o.Token, options...)
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}
	client.UserAgent = o.UserAgent

	return &GitLabResolver{gl: client, timeout: o.Timeout}, nil
}

// LatestPrerelease returns the first pre-release in listing order. A GitLab
// release counts as one when it is upcoming or its tag has a semver
// pre-release part.
func (g *GitLabResolver) LatestPrerelease(ctx context.Context, project string) (*ReleaseInfo, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	releases, _, err := g.gl.Releases.ListReleases(project, &gitlab.ListReleasesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 30},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch releases for %s: %w", project, err)
	}
	log.Debug("listed releases", "project", project, "count", len(releases))

	for _, r := range releases {
		if !isGitLabPrerelease(r) {
			continue
		}

		return releaseInfoFromGitLab(r), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoPrerelease, project)
}

func isGitLabPrerelease(r *gitlab.Release) bool {
	if r.UpcomingRelease {
		return true
	}

	tag := r.TagName
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}

	return semver.IsValid(tag) && semver.Prerelease(tag) != ""
}

func releaseInfoFromGitLab(r *gitlab.Release) *ReleaseInfo {
	assets := make([]Asset, 0, len(r.Assets.Links))
	for _, l := range r.Assets.Links {
		u := l.DirectAssetURL
		if u == "" {
			u = l.URL
		}
		assets = append(assets, Asset{Name: l.Name, URL: u})
	}

	var publishedAt time.Time
	if r.ReleasedAt != nil {
		publishedAt = *r.ReleasedAt
	}

	return &ReleaseInfo{
		TagName:     r.TagName,
		Name:        r.Name,
		PreRelease:  true,
		PublishedAt: publishedAt,
		Assets:      assets,
	}
}
