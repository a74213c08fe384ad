// Package toolcache stores extracted tools in the runner tool cache.
//
// Entries use the directory layout shared by all setup actions on a runner:
//
//	<root>/<tool>/<version>/<arch>/        the cached files
//	<root>/<tool>/<version>/<arch>.complete marker written last
//
// An entry without its marker is incomplete and treated as absent.
package toolcache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jkroepke/setup-vals/internal/logger"
	"github.com/jkroepke/setup-vals/internal/release"
)

// Cache is a tool cache rooted at a directory for one architecture.
type Cache struct {
	root string
	arch string
	log  *logger.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for lock housekeeping.
func WithLogger(log *logger.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New returns a cache rooted at root holding entries for arch (e.g. "x64").
func New(root, arch string, opts ...Option) *Cache {
	c := &Cache{root: root, arch: arch, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultRoot returns RUNNER_TOOL_CACHE, or a directory below the user
// cache directory when running outside a runner.
func DefaultRoot(getenv func(string) string) (string, error) {
	if root := getenv("RUNNER_TOOL_CACHE"); root != "" {
		return root, nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate tool cache: %w", err)
	}

	return filepath.Join(dir, "setup-vals", "tool-cache"), nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// entryDir returns the entry directory for an already cleaned version.
func (c *Cache) entryDir(tool, version string) string {
	return filepath.Join(c.root, tool, version, c.arch)
}

func (c *Cache) markerPath(tool, version string) string {
	return c.entryDir(tool, version) + ".complete"
}

// Find returns the directory holding tool at version. Only explicit
// semantic versions can be found; anything else reports absent.
func (c *Cache) Find(tool, version string) (string, bool) {
	if tool == "" || !release.IsSemver(version) {
		return "", false
	}

	clean := release.CleanVersion(version)
	dir := c.entryDir(tool, clean)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	if _, err := os.Stat(c.markerPath(tool, clean)); err != nil {
		return "", false
	}

	return dir, true
}

// CacheFile copies src into the entry for tool at version as destName and
// returns the entry directory. An existing entry is replaced, so storing the
// same version twice is harmless.
func (c *Cache) CacheFile(ctx context.Context, src, destName, tool, version string) (string, error) {
	if tool == "" || destName == "" {
		return "", fmt.Errorf("tool and destination name are required")
	}

	clean := release.CleanVersion(version)
	if clean == "" {
		return "", fmt.Errorf("version is required")
	}

	lock, err := AcquireLock(ctx, filepath.Join(c.root, tool), clean+"-"+c.arch+".lock")
	if err != nil {
		return "", fmt.Errorf("lock %s %s: %w", tool, clean, err)
	}
	defer c.release(lock)

	dir := c.entryDir(tool, clean)
	marker := c.markerPath(tool, clean)

	// Drop the marker first so a crash never leaves a complete-looking entry
	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove marker: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove existing entry: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create entry dir: %w", err)
	}

	dest := filepath.Join(dir, destName)
	if err := copyFile(src, dest); err != nil {
		return "", err
	}
	if err := os.Chmod(dest, 0777); err != nil {
		return "", fmt.Errorf("set executable: %w", err)
	}

	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return "", fmt.Errorf("write marker: %w", err)
	}

	return dir, nil
}

// release drops lock and logs a lock file that could not be removed.
func (c *Cache) release(lock *Lock) {
	if err := lock.Release(); err != nil {
		c.log.Debugw("failed to release tool cache lock", "error", err)
	}
}

// copyFile copies a regular file
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	return nil
}
