package release

import (
	"strings"

	"github.com/blang/semver"
)

// Latest is the sentinel requesting the newest published release.
const Latest = "latest"

// IsLatest reports whether requested asks for the newest release.
func IsLatest(requested string) bool {
	return strings.EqualFold(strings.TrimSpace(requested), Latest)
}

// EnsurePrefix prepends "v" unless the version already starts with v or V.
// The value is otherwise passed through untouched; no semver validation
// happens here.
func EnsurePrefix(version string) string {
	if strings.HasPrefix(strings.ToLower(version), "v") {
		return version
	}
	return "v" + version
}

// CleanVersion strips surrounding whitespace, leading "v"/"=" characters
// and build metadata from a semantic version ("v1.2.3+abc" -> "1.2.3").
// Strings that are not semantic versions are returned unchanged.
func CleanVersion(version string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(version), "=vV")

	parsed, err := semver.Parse(trimmed)
	if err != nil {
		return version
	}

	parsed.Build = nil
	return parsed.String()
}

// IsSemver reports whether version cleans to a valid semantic version.
func IsSemver(version string) bool {
	_, err := semver.Parse(strings.TrimLeft(strings.TrimSpace(version), "=vV"))
	return err == nil
}
