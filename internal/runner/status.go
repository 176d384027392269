package runner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/valksor/go-cm/internal/config"
)

// PathStatus describes one expected file.
type PathStatus struct {
	Name    string
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// StatusReport is a read-only snapshot of the configured locations.
type StatusReport struct {
	ConfigPath     string
	BinPath        string
	BinExists      bool
	Cores          []PathStatus // sorted by core name
	GeoFiles       []PathStatus // sorted by file name
	ConfSavePath   string
	ConfiguredURLs int
}

// BuildStatus inspects the filesystem for cfg. It never writes.
func BuildStatus(cfg *config.Config, configPath string) *StatusReport {
	rep := &StatusReport{
		ConfigPath:     configPath,
		BinPath:        cfg.BinDir(),
		ConfSavePath:   cfg.ConfDir(),
		ConfiguredURLs: len(cfg.ActiveConfigs()),
	}

	if info, err := os.Stat(cfg.BinDir()); err == nil && info.IsDir() {
		rep.BinExists = true
	}
	if !rep.BinExists {
		return rep
	}

	for _, name := range cfg.CoreNames() {
		rep.Cores = append(rep.Cores, statPath(name, cfg.CorePath(cfg.Cores[name])))
	}
	for _, name := range cfg.GeoFileNames() {
		rep.GeoFiles = append(rep.GeoFiles, statPath(name, filepath.Join(cfg.BinDir(), name)))
	}

	return rep
}

func statPath(name, path string) PathStatus {
	ps := PathStatus{Name: name, Path: path}
	if info, err := os.Stat(path); err == nil {
		ps.Exists = true
		ps.Size = info.Size()
		ps.ModTime = info.ModTime()
	}

	return ps
}
