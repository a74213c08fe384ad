package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/logger"
	"github.com/jkroepke/setup-vals/internal/platform"
)

// Installer orchestrates archive download, verification and extraction
type Installer struct {
	cfg          config.Config
	platformInfo *platform.Info
	downloader   *Downloader
	verifier     *Verifier
	extractor    *Extractor
	log          *logger.Logger
}

// InstallerConfig holds configuration for the installer
type InstallerConfig struct {
	// Config names the tool, repository and HTTP behavior
	Config config.Config
	// Platform selects the archive to download
	Platform *platform.Info
	// TempDir receives downloads and extracted archives (RUNNER_TEMP)
	TempDir string
	// Verifier enables checksum verification when non-nil
	Verifier *Verifier
	// Logger defaults to a no-op logger
	Logger *logger.Logger
}

// NewInstaller creates a new installer
func NewInstaller(cfg InstallerConfig) (*Installer, error) {
	if cfg.TempDir == "" {
		return nil, fmt.Errorf("TempDir is required")
	}

	if cfg.Platform == nil {
		return nil, fmt.Errorf("Platform is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Installer{
		cfg:          cfg.Config,
		platformInfo: cfg.Platform,
		downloader:   NewDownloader(cfg.TempDir, cfg.Config.HTTP, log),
		verifier:     cfg.Verifier,
		extractor:    NewExtractor(cfg.TempDir),
		log:          log,
	}, nil
}

// Download fetches the release archive for version and, when a verifier is
// configured, checks it against the release checksums.
func (i *Installer) Download(ctx context.Context, version string) (*DownloadResult, error) {
	startTime := time.Now()

	info, err := ConstructDownloadInfo(i.cfg, version, i.platformInfo)
	if err != nil {
		return nil, fmt.Errorf("construct download info: %w", err)
	}

	i.log.Infow("downloading", "url", info.URL)

	archivePath, err := i.downloader.DownloadTool(ctx, info.URL)
	if err != nil {
		return nil, fmt.Errorf("%w %s from location %s: %w", ErrDownload, info.Tool, info.URL, err)
	}

	verified := VerificationNone
	if i.verifier != nil {
		verified, err = i.verify(ctx, info, archivePath)
		if err != nil {
			os.Remove(archivePath)
			return nil, err
		}
	}

	return &DownloadResult{
		Info:         info,
		Path:         archivePath,
		Verified:     verified,
		DownloadTime: time.Since(startTime),
	}, nil
}

// verify downloads the checksums file (and signature when a key is set)
// next to the archive and checks the archive against it.
func (i *Installer) verify(ctx context.Context, info *DownloadInfo, archivePath string) (VerificationMethod, error) {
	checksumPath, err := i.downloader.DownloadTool(ctx, info.ChecksumURL)
	if err != nil {
		return VerificationNone, fmt.Errorf("%w checksums from location %s: %w", ErrDownload, info.ChecksumURL, err)
	}
	defer os.Remove(checksumPath)

	var signaturePath string
	if i.verifier.HasKey() {
		signaturePath, err = i.downloader.DownloadTool(ctx, info.SignatureURL)
		if err != nil {
			return VerificationNone, fmt.Errorf("%w signature from location %s: %w", ErrDownload, info.SignatureURL, err)
		}
		defer os.Remove(signaturePath)
	}

	result, err := i.verifier.VerifyArchive(archivePath, checksumPath, signaturePath, info.ArchiveName)
	if err != nil {
		return VerificationNone, fmt.Errorf("verify %s: %w", info.ArchiveName, err)
	}

	i.log.Debugw("archive verified", "archive", info.ArchiveName, "method", result.Method.String())
	return result.Method, nil
}

// Install downloads and unpacks version and returns the location of the
// executable inside the extracted tree.
func (i *Installer) Install(ctx context.Context, version string) (*InstallResult, error) {
	dl, err := i.Download(ctx, version)
	if err != nil {
		return nil, err
	}

	return i.Unpack(dl)
}

// Unpack extracts a downloaded archive and locates the executable in it.
// The extracted tree and the executable are made world-executable and the
// archive is removed.
func (i *Installer) Unpack(dl *DownloadResult) (*InstallResult, error) {
	defer os.Remove(dl.Path)

	extractedDir, err := i.extractor.ExtractToTemp(dl.Path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", dl.Info.ArchiveName, err)
	}

	if err := SetExecutable(extractedDir); err != nil {
		return nil, err
	}

	exePath, others, err := Locate(extractedDir, i.cfg.ToolName, i.platformInfo.OS, i.cfg.MaxSearchDepth)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		i.log.Debugw("ignoring additional match", "path", other, "using", exePath)
	}

	if err := SetExecutable(exePath); err != nil {
		return nil, err
	}

	i.log.Debugw("extracted", "dir", extractedDir, "executable", filepath.Base(exePath))

	return &InstallResult{
		Version:        dl.Info.Version,
		ExtractedDir:   extractedDir,
		ExecutablePath: exePath,
		Verified:       dl.Verified,
		DownloadTime:   dl.DownloadTime,
	}, nil
}
