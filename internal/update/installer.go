package update

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveKind is the container format of a downloaded asset.
type ArchiveKind int

const (
	ArchiveUnsupported ArchiveKind = iota
	ArchiveTarGzip
	ArchiveZip
	ArchiveGzip
)

func (k ArchiveKind) String() string {
	switch k {
	case ArchiveTarGzip:
		return "tar.gz"
	case ArchiveZip:
		return "zip"
	case ArchiveGzip:
		return "gz"
	case ArchiveUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ArchiveKind(%d)", int(k))
	}
}

// DetectArchive classifies a file by its name suffix, case-insensitively.
// ".tar.gz" wins over ".gz".
func DetectArchive(name string) ArchiveKind {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".tar.gz"):
		return ArchiveTarGzip
	case strings.HasSuffix(n, ".zip"):
		return ArchiveZip
	case strings.HasSuffix(n, ".gz"):
		return ArchiveGzip
	default:
		return ArchiveUnsupported
	}
}

// InstallResult describes one install.
type InstallResult struct {
	Path        string      // Installed binary
	Kind        ArchiveKind // Format the binary was taken from
	OldSize     int64       // Size before install, 0 if absent
	NewSize     int64       // Size after install
	InstalledAt time.Time   // Modification time set on the binary
}

// Installer places binaries from downloaded archives.
type Installer struct {
	now func() time.Time
}

// NewInstaller creates a new installer.
func NewInstaller() *Installer {
	return &Installer{now: time.Now}
}

// Install extracts binaryName from the archive at archivePath and replaces
// dest with it. The destination is swapped in by rename, so it is either the
// previous file or the complete new one. After install dest is mode 0755 and
// its access and modification times are the install moment.
//
// For unsupported archives dest is untouched, both sizes equal the existing
// size and ErrUnsupportedArchive is returned alongside the result.
func (i *Installer) Install(archivePath, dest, binaryName string) (*InstallResult, error) {
	kind := DetectArchive(archivePath)
	oldSize := FileSize(dest)
	res := &InstallResult{Path: dest, Kind: kind, OldSize: oldSize, NewSize: oldSize}

	if kind == ArchiveUnsupported {
		return res, fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return res, fmt.Errorf("%w: create dest dir: %w", ErrInstallFailed, err)
	}

	var err error
	switch kind {
	case ArchiveTarGzip:
		err = installFromArchive(extractTarGz, archivePath, dest, binaryName)
	case ArchiveZip:
		err = installFromArchive(extractZip, archivePath, dest, binaryName)
	case ArchiveGzip:
		err = installGzip(archivePath, dest)
	case ArchiveUnsupported:
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	now := i.now()
	if err := os.Chmod(dest, 0o755); err != nil {
		return res, fmt.Errorf("%w: chmod failed: %w", ErrInstallFailed, err)
	}
	if err := os.Chtimes(dest, now, now); err != nil {
		return res, fmt.Errorf("%w: set times: %w", ErrInstallFailed, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	res.NewSize = info.Size()
	res.InstalledAt = info.ModTime()

	return res, nil
}

type extractFunc func(archivePath, destDir string) error

// installFromArchive unpacks the whole archive into a scratch directory and
// copies the first file named binaryName over dest.
func installFromArchive(extract extractFunc, archivePath, dest, binaryName string) error {
	scratch, err := os.MkdirTemp("", "cm-extract-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if err := extract(archivePath, scratch); err != nil {
		return err
	}

	src, err := findBinary(scratch, binaryName)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open extracted binary: %w", err)
	}
	defer func() { _ = f.Close() }()

	return writeAtomic(dest, 0o755, func(w io.Writer) error {
		_, err := io.Copy(w, f)

		return err
	})
}

// installGzip decompresses a single-file gzip stream over dest.
func installGzip(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	return writeAtomic(dest, 0o755, func(w io.Writer) error {
		_, err := io.Copy(w, gz)

		return err
	})
}

// FileSize returns the size of path, or 0 when it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return info.Size()
}
