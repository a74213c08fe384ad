package platform

import (
	"fmt"
	"strings"
)

// normalizeOS maps runner and host OS labels to release archive names.
// Matching is by case-insensitive prefix so "Windows_NT" and "macOS 14"
// resolve as well.
func normalizeOS(os, arch string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(os))

	switch {
	case strings.HasPrefix(lower, "win"):
		return OSWindows, nil
	case strings.HasPrefix(lower, "linux"):
		return OSLinux, nil
	case strings.HasPrefix(lower, "macos"), strings.HasPrefix(lower, "darwin"):
		return OSDarwin, nil
	default:
		return "", fmt.Errorf("%w. OS: %s Arch: %s", ErrUnsupportedOS, os, arch)
	}
}

// normalizeArch maps every 64-bit x86 label to amd64. Other labels are
// only lowercased, since runners report "ARM64" while assets use "arm64".
func normalizeArch(arch string) string {
	lower := strings.ToLower(strings.TrimSpace(arch))

	switch lower {
	case "x64", "x86_64", "x86-64", "amd64":
		return "amd64"
	default:
		return lower
	}
}

// cacheArch returns the architecture label of the runner tool cache layout
// (the Node.js process.arch naming the hosted runners use).
func cacheArch(arch string) string {
	switch lower := strings.ToLower(strings.TrimSpace(arch)); lower {
	case "x64", "x86_64", "x86-64", "amd64":
		return "x64"
	case "aarch64", "arm64":
		return "arm64"
	case "x86", "i386", "i686", "386":
		return "ia32"
	default:
		return lower
	}
}
