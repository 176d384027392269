package update

import (
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// ReleaseInfo represents a release from any hosting source.
type ReleaseInfo struct {
	TagName     string    // e.g., "v1.12.0-beta.3"
	Name        string    // e.g., "sing-box 1.12.0-beta.3"
	PreRelease  bool      // true for pre-release versions
	PublishedAt time.Time // When the release was published
	HTMLURL     string    // URL to the release page
	Assets      []Asset   // Downloadable assets
}

// Asset represents a release asset.
type Asset struct {
	Name string // e.g., "sing-box-1.12.0-darwin-arm64.tar.gz"
	URL  string // Browser download URL
	Size int64  // Size in bytes, 0 when the source does not report it
}

// Channel returns the semver pre-release label of the tag ("beta.3"),
// or "" when the tag has none or is not semver.
func (r *ReleaseInfo) Channel() string {
	tag := r.TagName
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}

	return strings.TrimPrefix(semver.Prerelease(tag), "-")
}
