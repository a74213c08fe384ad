// Package binary downloads, verifies and unpacks vals release archives.
//
// # Archive layout
//
// Releases are published by goreleaser as
//
//	https://github.com/helmfile/vals/releases/download/<tag>/vals_<version>_<os>_<arch>.tar.gz
//
// where <version> is the tag without its leading "v" and without build
// metadata. The executable sits at the archive root; older archives nested
// it, so Locate falls back to a bounded directory walk.
//
// # Verification
//
// Verification is opt-in. When enabled the archive's SHA256 digest must
// match the entry in vals_<version>_checksums.txt. If an OpenPGP public key
// is supplied, the checksums file's detached signature (.sig) is verified
// first, so the digests themselves are authenticated.
//
// # Usage
//
//	inst, err := binary.NewInstaller(binary.InstallerConfig{
//	    Config:   cfg,
//	    Platform: info,
//	    TempDir:  os.Getenv("RUNNER_TEMP"),
//	    Logger:   log,
//	})
//	if err != nil {
//	    return err
//	}
//
//	res, err := inst.Install(ctx, "v0.42.0")
//
// # Architecture
//
// The package is organized into several components:
//   - Installer: download, verify, extract, locate
//   - Downloader: HTTP download with retry and backoff
//   - Verifier: SHA256 and OpenPGP verification
//   - Extractor: Archive extraction (tar.gz)
//   - Locator: URL construction and executable lookup
package binary
