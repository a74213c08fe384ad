package binary

import (
	"errors"
	"time"
)

var (
	// ErrDownload marks a failed archive download.
	ErrDownload = errors.New("failed to download")
	// ErrExecutableNotFound is returned when an extracted archive holds no
	// file named like the tool.
	ErrExecutableNotFound = errors.New("executable not found")
)

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates verification was not requested
	VerificationNone VerificationMethod = iota
	// VerificationGPG indicates the checksums file signature was verified
	// in addition to the archive digest
	VerificationGPG
	// VerificationSHA256 indicates the archive digest was checked against
	// an unsigned checksums file
	VerificationSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// DownloadInfo contains metadata needed to download a release archive.
// It is derived from (version, os, arch) and never cached.
type DownloadInfo struct {
	Tool         string
	Version      string // release tag, e.g. "v0.42.0"
	CleanVersion string // tag without "v" and build metadata, e.g. "0.42.0"
	OS           string // "linux", "darwin", "windows"
	Arch         string // "amd64", "arm64", etc.
	ArchiveName  string // e.g. "vals_0.42.0_linux_amd64.tar.gz"
	URL          string // Constructed download URL
	ChecksumURL  string // goreleaser checksums file
	SignatureURL string // detached signature of the checksums file
}

// DownloadResult contains information about a completed download
type DownloadResult struct {
	Info         *DownloadInfo
	Path         string
	Verified     VerificationMethod
	DownloadTime time.Duration
}

// InstallResult describes an archive that was downloaded and unpacked.
type InstallResult struct {
	Version        string
	ExtractedDir   string
	ExecutablePath string
	Verified       VerificationMethod
	DownloadTime   time.Duration
}

// VerificationResult contains the outcome of a verification attempt
type VerificationResult struct {
	Method  VerificationMethod
	Success bool
	Error   error
}
