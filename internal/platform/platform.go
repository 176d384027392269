// Package platform describes the OS and architecture release assets are
// selected for.
package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Supported values. Assets are only ever picked for macOS builds.
const (
	OSDarwin  = "darwin"
	OSMacOS   = "macos"
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Target is the host an asset must match.
type Target struct {
	OS          string // always "darwin"
	MarketingOS string // "macos", used by projects that name builds after the product
	Arch        string // normalized: "amd64" or "arm64"
	ArchRaw     string // machine string as reported by the kernel
}

// kernelArch is swapped in tests.
var kernelArch = host.KernelArch

// Detect returns the target for the running machine. The kernel's machine
// name is preferred; the Go runtime architecture is the fallback.
func Detect() Target {
	raw, err := kernelArch()
	if err != nil || strings.TrimSpace(raw) == "" {
		raw = runtime.GOARCH
	}

	return ForArch(raw)
}

// ForArch returns the darwin target for a raw machine string.
func ForArch(raw string) Target {
	return Target{
		OS:          OSDarwin,
		MarketingOS: OSMacOS,
		Arch:        NormalizeArch(raw),
		ArchRaw:     strings.TrimSpace(raw),
	}
}

// NormalizeArch maps a machine string to an asset architecture.
// x86_64 and amd64 are amd64; everything else is treated as arm64.
func NormalizeArch(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "x86_64", "amd64":
		return ArchAMD64
	default:
		return ArchARM64
	}
}

// String returns "os/arch".
func (t Target) String() string {
	return t.OS + "/" + t.Arch
}
