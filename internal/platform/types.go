// Package platform describes the runner a setup step executes on.
//
// It maps the RUNNER_OS and RUNNER_ARCH labels set by GitHub Actions to the
// OS and architecture names used in release archive filenames. When those
// variables are absent (for example when the binary is run by hand) it falls
// back to gopsutil host detection.
package platform

import (
	"context"
	"errors"
)

// Operating system names used in release archive filenames.
const (
	OSLinux   = "linux"
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// ErrUnsupportedOS is returned when the runner OS has no release archives.
var ErrUnsupportedOS = errors.New("unsupported OS found")

// Info contains platform detection information.
type Info struct {
	OS         string // "linux", "darwin", "windows"
	Arch       string // "amd64", "arm64" (release archive naming)
	CacheArch  string // tool-cache directory label, e.g. "x64", "arm64"
	RunnerOS   string // original label, e.g. "Linux", "macOS"
	RunnerArch string // original label, e.g. "X64", "ARM64"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == OSWindows
}

// ExecutableExt returns ".exe" on Windows and "" elsewhere.
func (i *Info) ExecutableExt() string {
	if i.IsWindows() {
		return ".exe"
	}
	return ""
}

// String returns os/arch.
func (i *Info) String() string {
	return i.OS + "/" + i.Arch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
