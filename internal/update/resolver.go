package update

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Per-call limits for network operations.
const (
	ReleaseTimeout = 30 * time.Second
	BinaryTimeout  = 120 * time.Second
	ConfigTimeout  = 60 * time.Second
)

// DefaultUserAgent identifies the updater to release hosts.
const DefaultUserAgent = "cm/dev"

// Resolver finds the newest pre-release of a repository.
type Resolver interface {
	LatestPrerelease(ctx context.Context, repo string) (*ReleaseInfo, error)
}

// Source is a release hosting service.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// RepoRef is a parsed repository identifier.
type RepoRef struct {
	Source Source
	Path   string // "owner/name" or "group/sub/project"
}

func (r RepoRef) String() string {
	return string(r.Source) + ":" + r.Path
}

// ParseRepo parses "owner/name", "github:owner/name" or "gitlab:group/project".
// Bare identifiers are GitHub repositories.
func ParseRepo(repo string) (RepoRef, error) {
	repo = strings.TrimSpace(repo)

	ref := RepoRef{Source: SourceGitHub, Path: repo}
	if prefix, rest, ok := strings.Cut(repo, ":"); ok {
		switch Source(strings.ToLower(prefix)) {
		case SourceGitHub:
			ref = RepoRef{Source: SourceGitHub, Path: rest}
		case SourceGitLab:
			ref = RepoRef{Source: SourceGitLab, Path: rest}
		default:
			return RepoRef{}, fmt.Errorf("%w: %q", ErrUnknownSource, prefix)
		}
	}

	ref.Path = strings.Trim(ref.Path, "/")
	if !strings.Contains(ref.Path, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository %q: want owner/name", repo)
	}

	return ref, nil
}

// ClientOptions configures release host clients.
type ClientOptions struct {
	UserAgent  string
	Timeout    time.Duration
	Token      string
	BaseURL    string // API root; empty for the public service
	HTTPClient *http.Client
}

// ClientOption is a functional option for configuring ClientOptions.
type ClientOption func(*ClientOptions)

// DefaultClientOptions returns the defaults used for release listings.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		UserAgent: DefaultUserAgent,
		Timeout:   ReleaseTimeout,
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(o *ClientOptions) {
		if ua != "" {
			o.UserAgent = ua
		}
	}
}

// WithToken authenticates requests.
func WithToken(token string) ClientOption {
	return func(o *ClientOptions) {
		o.Token = token
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) ClientOption {
	return func(o *ClientOptions) {
		o.BaseURL = u
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.Timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *ClientOptions) {
		o.HTTPClient = c
	}
}

func applyClientOptions(opts []ClientOption) ClientOptions {
	o := DefaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}

	return o
}

// Router dispatches a repository identifier to the resolver for its host.
type Router struct {
	resolvers map[Source]Resolver
}

// NewRouter creates a router. A nil resolver disables that source.
func NewRouter(github, gitlab Resolver) *Router {
	r := &Router{resolvers: make(map[Source]Resolver, 2)}
	if github != nil {
		r.resolvers[SourceGitHub] = github
	}
	if gitlab != nil {
		r.resolvers[SourceGitLab] = gitlab
	}

	return r
}

// LatestPrerelease implements Resolver.
func (r *Router) LatestPrerelease(ctx context.Context, repo string) (*ReleaseInfo, error) {
	ref, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}

	res, ok := r.resolvers[ref.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not configured", ErrUnknownSource, ref.Source)
	}

	return res.LatestPrerelease(ctx, ref.Path)
}
