package binary

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Extractor handles archive extraction
type Extractor struct {
	tempDir string
}

// NewExtractor creates an extractor that unpacks into tempDir
func NewExtractor(tempDir string) *Extractor {
	return &Extractor{tempDir: tempDir}
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	// Open archive file
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	// Create gzip reader
	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	// Create tar reader
	tarReader := tar.NewReader(gzipReader)

	// Create destination directory
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	root, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return fmt.Errorf("resolve dest dir: %w", err)
	}

	// Extract each file
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break // End of archive
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		// Construct target path
		target := filepath.Join(destDir, header.Name)

		// Security check: prevent path traversal
		if !withinDir(destDir, target) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		// Handle different file types
		switch header.Typeflag {
		case tar.TypeDir:
			if err := checkResolved(root, target); err != nil {
				return fmt.Errorf("illegal file path %s: %w", header.Name, err)
			}

			// Create directory
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			// Symlinks extracted earlier must not redirect the write
			if err := checkResolved(root, target); err != nil {
				return fmt.Errorf("illegal file path %s: %w", header.Name, err)
			}

			// Create parent directory if needed
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}

			// Create file
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}

			// Copy file contents
			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}

			outFile.Close()

		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
			}

			parent, err := resolveExisting(filepath.Dir(target))
			if err != nil || !withinDir(root, parent) || !withinDir(root, filepath.Join(parent, header.Linkname)) {
				return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}

	return nil
}

// withinDir reports whether path is dir itself or lies below it.
func withinDir(dir, path string) bool {
	dir = filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, dir+string(os.PathSeparator))
}

// checkResolved fails when path, with the symlinks already on disk
// followed, lies outside root.
func checkResolved(root, path string) error {
	resolved, err := resolveExisting(path)
	if err != nil {
		return err
	}
	if !withinDir(root, resolved) {
		return fmt.Errorf("resolves outside destination: %s", resolved)
	}
	return nil
}

// resolveExisting follows the symlinks of the longest existing prefix of
// path and appends the components that do not exist yet.
func resolveExisting(path string) (string, error) {
	var rest []string
	existing := path
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			break
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

// ExtractToTemp extracts a .tar.gz archive into a new uniquely named
// directory below the extractor's temp directory and returns that path.
func (e *Extractor) ExtractToTemp(archivePath string) (string, error) {
	destDir := filepath.Join(e.tempDir, uuid.NewString())

	if err := e.ExtractTarGz(archivePath, destDir); err != nil {
		return "", err
	}

	return destDir, nil
}

// SetExecutable opens up permissions on an extracted path so every user on
// the runner can execute it.
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0777); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
