// Package config holds the updater's file-based configuration.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FileName is the default configuration document name.
const FileName = "cm_config.json"

// Core describes one installable core program.
type Core struct {
	Repo       string `json:"repo"        yaml:"repo"`        // "owner/name", "github:owner/name" or "gitlab:group/project"
	BinaryName string `json:"binary_name" yaml:"binary_name"` // file name inside the archive and on disk
	Subdir     string `json:"subdir"      yaml:"subdir"`      // directory under the install dir
}

// Entry is a named configuration file fetched from a URL.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url"  yaml:"url"`
}

// Config is the whole configuration document.
type Config struct {
	BinPath      string            `json:"v2rayn_bin_path" yaml:"v2rayn_bin_path"`
	ConfSavePath string            `json:"conf_save_path"  yaml:"conf_save_path"`
	Cores        map[string]Core   `json:"cores"           yaml:"cores"`
	GeoFiles     map[string]string `json:"geofiles"        yaml:"geofiles"`
	Configs      []Entry           `json:"configs"         yaml:"configs"`

	// Optional API credentials and endpoints.
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty"`
	GitLabToken string `json:"gitlab_token,omitempty" yaml:"gitlab_token,omitempty"`
	GitLabURL   string `json:"gitlab_url,omitempty"   yaml:"gitlab_url,omitempty"`
}

const geoReleaseURL = "https://github.com/Loyalsoldier/v2ray-rules-dat/releases/latest/download/"

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		BinPath:      filepath.Join(home, "Library", "Application Support", "v2rayN", "bin"),
		ConfSavePath: filepath.Join(home, "Library", "Mobile Documents", "com~apple~CloudDocs", "Application", "Conf", "conf"),
		Cores: map[string]Core{
			"singbox": {Repo: "SagerNet/sing-box", BinaryName: "sing-box", Subdir: "sing_box"},
			"mihomo":  {Repo: "MetaCubeX/mihomo", BinaryName: "mihomo", Subdir: "mihomo"},
			"xray":    {Repo: "XTLS/Xray-core", BinaryName: "xray", Subdir: "xray"},
		},
		GeoFiles: map[string]string{
			"geoip.dat":   geoReleaseURL + "geoip.dat",
			"geosite.dat": geoReleaseURL + "geosite.dat",
		},
		Configs: []Entry{},
	}
}

// CoreNames returns the configured core names in sorted order.
func (c *Config) CoreNames() []string {
	names := make([]string, 0, len(c.Cores))
	for name := range c.Cores {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// GeoFileNames returns the configured geo file names in sorted order.
func (c *Config) GeoFileNames() []string {
	names := make([]string, 0, len(c.GeoFiles))
	for name := range c.GeoFiles {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// ActiveConfigs returns the entries that have a URL, in document order.
func (c *Config) ActiveConfigs() []Entry {
	var out []Entry
	for _, e := range c.Configs {
		if strings.TrimSpace(e.URL) != "" {
			out = append(out, e)
		}
	}

	return out
}

// BinDir returns the install directory with a leading "~" expanded.
func (c *Config) BinDir() string {
	return expandHome(c.BinPath)
}

// ConfDir returns the config output directory with a leading "~" expanded.
func (c *Config) ConfDir() string {
	return expandHome(c.ConfSavePath)
}

// CorePath returns where the named core's binary is installed.
func (c *Config) CorePath(core Core) string {
	return filepath.Join(c.BinDir(), core.Subdir, core.BinaryName)
}

// EntryFileName returns the on-disk file name for a config entry.
// Names are NFC-normalized so the same title typed on different systems
// maps to one file.
func EntryFileName(name string) string {
	return norm.NFC.String(name)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
