package binary

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// Helper function to create a test tar.gz archive
func createTestTarGz(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.tar.gz")

	// Create archive file
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	// Create gzip writer
	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	// Create tar writer
	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	// Add files to archive
	for name, content := range files {
		header := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}

		// Write header
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}

		// Write content
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	return archivePath
}

func TestExtractTarGz(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr bool
	}{
		{
			name: "simple_extraction",
			files: map[string]string{
				"file1.txt": "content1",
				"file2.txt": "content2",
			},
			wantErr: false,
		},
		{
			name: "nested_directories",
			files: map[string]string{
				"dir1/file1.txt":      "content1",
				"dir1/dir2/file2.txt": "content2",
				"dir3/file3.txt":      "content3",
			},
			wantErr: false,
		},
		{
			name: "executable_binary",
			files: map[string]string{
				"vals": "#!/bin/sh\necho hello",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create test archive
			archivePath := createTestTarGz(t, tt.files)

			// Extract to temp directory
			destDir := t.TempDir()
			extractor := NewExtractor(t.TempDir())
			err := extractor.ExtractTarGz(archivePath, destDir)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("extraction failed: %v", err)
			}

			// Verify extracted files
			for name, expectedContent := range tt.files {
				extractedPath := filepath.Join(destDir, name)

				// Check file exists
				if !fileExists(extractedPath) {
					t.Errorf("file %s was not extracted", name)
					continue
				}

				// Check content
				content, err := os.ReadFile(extractedPath)
				if err != nil {
					t.Errorf("failed to read extracted file %s: %v", name, err)
					continue
				}

				if string(content) != expectedContent {
					t.Errorf("content mismatch for %s:\ngot:  %q\nwant: %q",
						name, string(content), expectedContent)
				}
			}
		})
	}
}

func TestExtractTarGz_PathTraversal(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		shouldFail  bool
		description string
	}{
		{
			name:        "obvious traversal",
			fileName:    "../../../etc/passwd",
			shouldFail:  true,
			description: "Simple parent directory traversal",
		},
		{
			name:        "absolute path",
			fileName:    "/etc/passwd",
			shouldFail:  false, // filepath.Join makes this relative, becomes <destdir>/etc/passwd
			description: "Absolute path (filepath.Join makes it relative)",
		},
		{
			name:        "symlink traversal",
			fileName:    "link/../../../etc/passwd",
			shouldFail:  true,
			description: "Traversal via symlink path component",
		},

		{
			name:        "valid subdirectory",
			fileName:    "subdir/file.txt",
			shouldFail:  false,
			description: "Valid file in subdirectory",
		},
		{
			name:        "valid file",
			fileName:    "file.txt",
			shouldFail:  false,
			description: "Valid file in root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			archivePath := filepath.Join(tmpDir, "test.tar.gz")

			// Create archive with the test file
			if err := createTestArchiveWithFile(archivePath, tt.fileName, "test content"); err != nil {
				t.Fatalf("failed to create test archive: %v", err)
			}

			// Attempt extraction
			destDir := filepath.Join(tmpDir, "extract")
			extractor := NewExtractor(t.TempDir())
			err := extractor.ExtractTarGz(archivePath, destDir)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error for %s, but extraction succeeded", tt.description)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for %s: %v", tt.description, err)
				}
			}
		})
	}
}

// createTestArchiveWithFile creates a tar.gz with a single file
func createTestArchiveWithFile(archivePath, fileName, content string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	header := &tar.Header{
		Name: fileName,
		Mode: 0644,
		Size: int64(len(content)),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if _, err := tarWriter.Write([]byte(content)); err != nil {
		return err
	}

	return nil
}

func TestExtractTarGz_SymlinkTraversal(t *testing.T) {
	type entry struct {
		name string
		link string // symlink target; a regular file when empty
	}

	tests := []struct {
		name        string
		entries     []entry
		shouldFail  bool
		description string
	}{
		{
			name:        "absolute symlink",
			entries:     []entry{{name: "link", link: "/etc/passwd"}},
			shouldFail:  true,
			description: "Symlink to absolute path outside destDir",
		},
		{
			name:        "relative traversal symlink",
			entries:     []entry{{name: "link", link: "../../../etc/passwd"}},
			shouldFail:  true,
			description: "Symlink with relative path traversal",
		},
		{
			name:        "valid relative symlink",
			entries:     []entry{{name: "target.txt"}, {name: "link", link: "target.txt"}},
			shouldFail:  false,
			description: "Valid symlink within destDir",
		},
		{
			name:        "valid subdir symlink",
			entries:     []entry{{name: "target.txt"}, {name: "subdir/link", link: "../target.txt"}},
			shouldFail:  false,
			description: "Valid symlink in subdirectory pointing to parent",
		},
		{
			name: "chained symlinks",
			entries: []entry{
				{name: "a", link: "."},
				{name: "a/b", link: ".."},
				{name: "a/b/pwned"},
			},
			shouldFail:  true,
			description: "Second link resolves through the first to the parent of destDir",
		},
		{
			name: "link through dot link",
			entries: []entry{
				{name: "y", link: "."},
				{name: "x", link: "y/../outside"},
				{name: "x/pwned"},
			},
			shouldFail:  true,
			description: "Write through a link that is lexically inside but resolves outside",
		},
		{
			name: "write into linked directory",
			entries: []entry{
				{name: "dir/"},
				{name: "alias", link: "dir"},
				{name: "alias/file.txt"},
			},
			shouldFail:  false,
			description: "Write through a symlink that stays inside destDir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			archivePath := filepath.Join(tmpDir, "test.tar.gz")

			// Create archive with symlinks
			archiveFile, err := os.Create(archivePath)
			if err != nil {
				t.Fatalf("failed to create archive: %v", err)
			}
			defer func() { _ = archiveFile.Close() }()

			gzipWriter := gzip.NewWriter(archiveFile)
			defer func() { _ = gzipWriter.Close() }()

			tarWriter := tar.NewWriter(gzipWriter)
			defer func() { _ = tarWriter.Close() }()

			for _, e := range tt.entries {
				var header *tar.Header
				switch {
				case e.link != "":
					header = &tar.Header{Name: e.name, Typeflag: tar.TypeSymlink, Linkname: e.link}
				case e.name[len(e.name)-1] == '/':
					header = &tar.Header{Name: e.name, Typeflag: tar.TypeDir, Mode: 0755}
				default:
					header = &tar.Header{Name: e.name, Typeflag: tar.TypeReg, Mode: 0644, Size: 4}
				}
				if err := tarWriter.WriteHeader(header); err != nil {
					t.Fatalf("failed to write header %s: %v", e.name, err)
				}
				if header.Typeflag == tar.TypeReg {
					_, _ = tarWriter.Write([]byte("test"))
				}
			}

			_ = tarWriter.Close()
			_ = gzipWriter.Close()
			_ = archiveFile.Close()

			// Attempt extraction
			destDir := filepath.Join(tmpDir, "extract")
			extractor := NewExtractor(t.TempDir())
			err = extractor.ExtractTarGz(archivePath, destDir)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error for %s, but extraction succeeded", tt.description)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for %s: %v", tt.description, err)
				}
			}

			for _, escaped := range []string{"pwned", "outside"} {
				if _, err := os.Lstat(filepath.Join(tmpDir, escaped)); err == nil {
					t.Errorf("%s was written outside the destination directory", escaped)
				}
			}
		})
	}
}

func TestSetExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test-file")

	// Create test file
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}

	if info.Mode().Perm()&0111 != 0 {
		t.Error("file should not be executable initially")
	}

	// Set executable
	if err := SetExecutable(testFile); err != nil {
		t.Fatalf("SetExecutable failed: %v", err)
	}

	// Verify new permissions
	info, err = os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file after SetExecutable: %v", err)
	}

	if info.Mode().Perm() != 0777 {
		t.Errorf("permissions mismatch: got %o, want 0777", info.Mode().Perm())
	}
}

func TestExtractTarGz_CorruptedArchive(t *testing.T) {
	tmpDir := t.TempDir()

	// Create a corrupted archive
	corruptedPath := filepath.Join(tmpDir, "corrupted.tar.gz")
	if err := os.WriteFile(corruptedPath, []byte("not a valid gzip file"), 0644); err != nil {
		t.Fatalf("failed to create corrupted file: %v", err)
	}

	// Attempt extraction
	destDir := filepath.Join(tmpDir, "extract")
	extractor := NewExtractor(t.TempDir())
	err := extractor.ExtractTarGz(corruptedPath, destDir)

	if err == nil {
		t.Error("expected error for corrupted archive")
	}
}

func TestExtractToTemp(t *testing.T) {
	files := map[string]string{
		"vals":      "vals binary content",
		"README.md": "readme content",
		"LICENSE":   "license content",
	}
	archivePath := createTestTarGz(t, files)

	tempDir := t.TempDir()
	extractor := NewExtractor(tempDir)

	dir1, err := extractor.ExtractToTemp(archivePath)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	dir2, err := extractor.ExtractToTemp(archivePath)
	if err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}

	if dir1 == dir2 {
		t.Errorf("expected distinct directories, both are %s", dir1)
	}
	if filepath.Dir(dir1) != tempDir {
		t.Errorf("extracted to %s, want a directory in %s", dir1, tempDir)
	}

	for name, want := range files {
		content, err := os.ReadFile(filepath.Join(dir1, name))
		if err != nil {
			t.Errorf("failed to read extracted file %s: %v", name, err)
			continue
		}
		if string(content) != want {
			t.Errorf("content mismatch for %s:\ngot:  %q\nwant: %q", name, string(content), want)
		}
	}
}

func TestExtractToTemp_CorruptedArchive(t *testing.T) {
	tempDir := t.TempDir()
	corruptedPath := filepath.Join(tempDir, "corrupted.tar.gz")
	if err := os.WriteFile(corruptedPath, []byte("<html>not found</html>"), 0644); err != nil {
		t.Fatalf("failed to create corrupted file: %v", err)
	}

	extractor := NewExtractor(tempDir)
	if _, err := extractor.ExtractToTemp(corruptedPath); err == nil {
		t.Error("expected error for corrupted archive")
	}
}
