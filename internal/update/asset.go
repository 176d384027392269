package update

import (
	"strings"

	"github.com/valksor/go-cm/internal/platform"
)

// assetRule reports whether a lowercased asset name is the build for a core.
type assetRule func(name string, target platform.Target) bool

// assetRules holds the per-core naming conventions of each upstream project.
// xray names its macOS builds "macos", so the darwin check in SelectAsset
// filters those out unless the asset also mentions darwin.
var assetRules = map[string]assetRule{
	"singbox": func(name string, _ platform.Target) bool {
		return strings.HasSuffix(name, ".tar.gz")
	},
	"mihomo": func(name string, _ platform.Target) bool {
		return strings.HasSuffix(name, ".gz") && !strings.HasSuffix(name, ".tar.gz")
	},
	"xray": func(name string, target platform.Target) bool {
		return strings.Contains(name, target.MarketingOS) && strings.HasSuffix(name, ".zip")
	},
}

// SelectAsset returns the first asset of release built for core on target.
// Matching is case-insensitive; checksum files ("sha" in the name) never match.
func SelectAsset(release *ReleaseInfo, core string, target platform.Target) (Asset, bool) {
	if release == nil {
		return Asset{}, false
	}

	rule, ok := assetRules[strings.ToLower(core)]
	if !ok {
		return Asset{}, false
	}

	for _, a := range release.Assets {
		n := strings.ToLower(a.Name)
		if !strings.Contains(n, target.OS) || !strings.Contains(n, target.Arch) || strings.Contains(n, "sha") {
			continue
		}
		if rule(n, target) {
			return a, true
		}
	}

	return Asset{}, false
}

// KnownCore reports whether SelectAsset has a naming rule for core.
func KnownCore(core string) bool {
	_, ok := assetRules[strings.ToLower(core)]

	return ok
}
