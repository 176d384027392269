package update

import "errors"

var (
	// ErrNoPrerelease is returned when a repository lists no pre-release.
	ErrNoPrerelease = errors.New("update: no pre-release found")

	// ErrAssetNotFound is returned when no asset matches the core and platform.
	ErrAssetNotFound = errors.New("update: no suitable asset found for platform")

	// ErrDownloadFailed is returned when fetching a URL fails.
	ErrDownloadFailed = errors.New("update: download failed")

	// ErrInstallFailed is returned when replacing the destination fails.
	ErrInstallFailed = errors.New("update: installation failed")

	// ErrUnsupportedArchive is returned for archive names with no known suffix.
	// The destination is left untouched.
	ErrUnsupportedArchive = errors.New("update: unsupported archive format")

	// ErrBinaryNotFound is returned when an archive holds no file with the binary name.
	ErrBinaryNotFound = errors.New("update: binary not found in archive")

	// ErrUnknownSource is returned for repository identifiers with an unknown host prefix.
	ErrUnknownSource = errors.New("update: unknown release source")
)
