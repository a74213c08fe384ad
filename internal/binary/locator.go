package binary

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/platform"
	"github.com/jkroepke/setup-vals/internal/release"
)

// ArchiveName returns the release asset name for a version and platform.
// Pattern: {tool}_{cleanVersion}_{os}_{arch}.{ext}
func ArchiveName(cfg config.Config, version, osName, arch string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", cfg.ToolName, release.CleanVersion(version), osName, arch, cfg.ArchiveExt)
}

// BuildDownloadURL returns the archive URL for a version and platform.
// It is a pure function of its arguments.
// Pattern: {server}/{repo}/releases/download/{version}/{archive}
func BuildDownloadURL(cfg config.Config, version, osName, arch string) string {
	return cfg.ReleaseDownloadURL(version) + "/" + ArchiveName(cfg, version, osName, arch)
}

// checksumsName returns the goreleaser checksums file name of a release.
func checksumsName(cfg config.Config, version string) string {
	return fmt.Sprintf("%s_%s_checksums.txt", cfg.ToolName, release.CleanVersion(version))
}

// ConstructDownloadInfo builds download URLs based on platform and version
func ConstructDownloadInfo(cfg config.Config, version string, platformInfo *platform.Info) (*DownloadInfo, error) {
	if platformInfo == nil {
		return nil, fmt.Errorf("platform info is required")
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}

	baseURL := cfg.ReleaseDownloadURL(version)
	checksums := checksumsName(cfg, version)

	return &DownloadInfo{
		Tool:         cfg.ToolName,
		Version:      version,
		CleanVersion: release.CleanVersion(version),
		OS:           platformInfo.OS,
		Arch:         platformInfo.Arch,
		ArchiveName:  ArchiveName(cfg, version, platformInfo.OS, platformInfo.Arch),
		URL:          BuildDownloadURL(cfg, version, platformInfo.OS, platformInfo.Arch),
		ChecksumURL:  baseURL + "/" + checksums,
		SignatureURL: baseURL + "/" + checksums + ".sig",
	}, nil
}

// ExecutableName returns the file name of the tool on the given OS.
func ExecutableName(tool, osName string) string {
	return tool + (&platform.Info{OS: osName}).ExecutableExt()
}

// ExecutablePath returns where the executable sits in an extracted archive.
func ExecutablePath(root, tool, osName string) string {
	return filepath.Join(root, ExecutableName(tool, osName))
}

// FindExecutable walks root depth-first in lexical order and returns the
// first regular file called name. Directories deeper than maxDepth below
// root are not entered. Additional matches are returned as the second value
// so callers can report them.
func FindExecutable(root, name string, maxDepth int) (string, []string, error) {
	root = filepath.Clean(root)

	var found string
	var others []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && depth(root, path) > maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if d.Name() != name || !d.Type().IsRegular() {
			return nil
		}

		if found == "" {
			found = path
		} else {
			others = append(others, path)
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("search %s: %w", root, err)
	}

	if found == "" {
		return "", nil, fmt.Errorf("%s %w in path %s", name, ErrExecutableNotFound, root)
	}

	return found, others, nil
}

// depth returns how many directories path is below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}

// Locate returns the executable inside an extracted archive. The expected
// root location is checked first; nested layouts are found by walking at
// most maxDepth directories deep.
func Locate(root, tool, osName string, maxDepth int) (string, []string, error) {
	direct := ExecutablePath(root, tool, osName)

	info, err := os.Stat(direct)
	if err == nil && info.Mode().IsRegular() {
		return direct, nil, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", nil, fmt.Errorf("stat executable: %w", err)
	}

	return FindExecutable(root, ExecutableName(tool, osName), maxDepth)
}
