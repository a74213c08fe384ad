// Package release resolves the version of the tool to install.
//
// A requested version is either a concrete version ("0.42.0", "v0.42.0") or
// the sentinel "latest". Concrete versions are normalized to carry a single
// leading "v", matching the upstream release tags. "latest" is resolved by
// asking the repository's latest-release endpoint for its tag_name; any
// failure there is reported as a warning and the configured default version
// is used instead, so resolution itself never fails.
package release
