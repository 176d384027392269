package update

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		body := files[name]
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeGz(t *testing.T, path, body string) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectArchive(t *testing.T) {
	tests := []struct {
		name string
		want ArchiveKind
	}{
		{"sing-box-darwin-arm64.tar.gz", ArchiveTarGzip},
		{"SING-BOX.TAR.GZ", ArchiveTarGzip},
		{"Xray-macos-arm64.zip", ArchiveZip},
		{"mihomo-darwin-arm64.gz", ArchiveGzip},
		{"tool.7z", ArchiveUnsupported},
		{"tool.tar.xz", ArchiveUnsupported},
		{"tool", ArchiveUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectArchive(tt.name); got != tt.want {
				t.Errorf("DetectArchive(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestArchiveKindString(t *testing.T) {
	if ArchiveTarGzip.String() != "tar.gz" || ArchiveUnsupported.String() != "unsupported" {
		t.Errorf("unexpected names %q %q", ArchiveTarGzip, ArchiveUnsupported)
	}
}

func TestInstallFormats(t *testing.T) {
	const binary = "sing-box"

	tests := []struct {
		name    string
		archive string
		build   func(t *testing.T, path string)
		want    string
	}{
		{
			name:    "tar.gz nested",
			archive: "sing-box-darwin-arm64.tar.gz",
			build: func(t *testing.T, path string) {
				writeTarGz(t, path, map[string]string{
					"sing-box-1.0/LICENSE":  "license",
					"sing-box-1.0/sing-box": "new-binary",
				})
			},
			want: "new-binary",
		},
		{
			name:    "zip",
			archive: "Xray-macos-darwin-arm64.zip",
			build: func(t *testing.T, path string) {
				writeZip(t, path, map[string]string{
					"geoip.dat": "data",
					"sing-box":  "zip-binary",
				})
			},
			want: "zip-binary",
		},
		{
			name:    "bare gzip",
			archive: "mihomo-darwin-arm64.gz",
			build: func(t *testing.T, path string) {
				writeGz(t, path, "gz-binary")
			},
			want: "gz-binary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, tt.archive)
			tt.build(t, archive)

			dest := filepath.Join(dir, "bin", "core", binary)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
				t.Fatal(err)
			}

			start := time.Now().Truncate(time.Second)
			res, err := NewInstaller().Install(archive, dest, binary)
			if err != nil {
				t.Fatalf("Install() error = %v", err)
			}

			data, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("content = %q, want %q", data, tt.want)
			}

			info, err := os.Stat(dest)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0o755 {
				t.Errorf("mode = %v, want 0755", info.Mode().Perm())
			}
			if info.ModTime().Before(start) {
				t.Errorf("mtime %v before install start %v", info.ModTime(), start)
			}
			if res.OldSize != 3 || res.NewSize != int64(len(tt.want)) {
				t.Errorf("sizes = %d → %d", res.OldSize, res.NewSize)
			}
			if res.InstalledAt.Before(start) {
				t.Errorf("InstalledAt = %v", res.InstalledAt)
			}

			entries, _ := os.ReadDir(filepath.Dir(dest))
			if len(entries) != 1 {
				t.Errorf("staging files left behind: %d entries", len(entries))
			}
		})
	}
}

func TestInstallCreatesDestDir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tool.gz")
	writeGz(t, archive, "fresh")

	dest := filepath.Join(dir, "new", "sub", "tool")
	res, err := NewInstaller().Install(archive, dest, "tool")
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.OldSize != 0 || res.NewSize != 5 {
		t.Errorf("sizes = %d → %d, want 0 → 5", res.OldSize, res.NewSize)
	}
}

func TestInstallUnsupportedLeavesDestination(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tool.7z")
	if err := os.WriteFile(archive, []byte("7z"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "tool")
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewInstaller().Install(archive, dest, "tool")
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("error = %v, want ErrUnsupportedArchive", err)
	}
	if res.OldSize != 8 || res.NewSize != 8 {
		t.Errorf("sizes = %d → %d, want 8 → 8", res.OldSize, res.NewSize)
	}
	if res.Kind != ArchiveUnsupported {
		t.Errorf("Kind = %v", res.Kind)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "existing" {
		t.Errorf("destination changed to %q", data)
	}
}

func TestInstallBinaryMissing(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archive, map[string]string{"README.md": "hi"})

	dest := filepath.Join(dir, "tool")
	if err := os.WriteFile(dest, []byte("keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := NewInstaller().Install(archive, dest, "tool")
	if !errors.Is(err, ErrBinaryNotFound) || !errors.Is(err, ErrInstallFailed) {
		t.Fatalf("error = %v, want ErrInstallFailed wrapping ErrBinaryNotFound", err)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "keep" {
		t.Errorf("destination changed to %q", data)
	}
}

func TestInstallCorruptGzipKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tool.gz")
	if err := os.WriteFile(archive, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "tool")
	if err := os.WriteFile(dest, []byte("keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := NewInstaller().Install(archive, dest, "tool"); !errors.Is(err, ErrInstallFailed) {
		t.Fatalf("error = %v, want ErrInstallFailed", err)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "keep" {
		t.Errorf("destination changed to %q", data)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	dir := t.TempDir()

	tarPath := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, tarPath, map[string]string{"../escape": "x"})
	if err := extractTarGz(tarPath, filepath.Join(dir, "out-tar")); err == nil {
		t.Error("extractTarGz() accepted a path outside the destination")
	}

	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{"../../escape": "x"})
	if err := extractZip(zipPath, filepath.Join(dir, "out-zip")); err == nil {
		t.Error("extractZip() accepted a path outside the destination")
	}

	if _, err := os.Stat(filepath.Join(dir, "escape")); err == nil {
		t.Error("file escaped the destination directory")
	}
}

func TestFindBinaryFirstInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b/tool", "a/tool", "a/tool.txt"} {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(p), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := findBinary(root, "tool")
	if err != nil {
		t.Fatalf("findBinary() error = %v", err)
	}
	if got != filepath.Join(root, "a", "tool") {
		t.Errorf("findBinary() = %q", got)
	}
}
