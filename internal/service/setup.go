package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jkroepke/setup-vals/internal/actions"
	"github.com/jkroepke/setup-vals/internal/binary"
	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/logger"
	"github.com/jkroepke/setup-vals/internal/platform"
	"github.com/jkroepke/setup-vals/internal/toolcache"
)

// ErrCacheInvariant is returned when a freshly stored cache entry cannot be
// found again.
var ErrCacheInvariant = errors.New("tool cache entry missing after install")

// InputVersion is the action input naming the requested version.
const InputVersion = "version"

// OutputPath is the action output carrying the executable path.
const OutputPath = "path"

// Runner is the part of the Actions runner contract the setup step uses.
type Runner interface {
	Input(name string, opts actions.InputOptions) (string, error)
	SetOutput(name, value string) error
	AddPath(dir string) actions.PathUpdate
}

// VersionResolver turns a requested version into a release tag.
type VersionResolver interface {
	Resolve(ctx context.Context, requested string) string
}

// SetupService orchestrates installing the tool into the runner tool cache.
type SetupService struct {
	cfg       config.Config
	runner    Runner
	resolver  VersionResolver
	detector  platform.Detector
	cacheRoot string
	tempDir   string
	verifier  *binary.Verifier
	log       *logger.Logger
}

// SetupConfig holds the collaborators of a SetupService.
type SetupConfig struct {
	Config    config.Config
	Runner    Runner
	Resolver  VersionResolver
	Detector  platform.Detector
	CacheRoot string
	TempDir   string
	// Verifier enables checksum verification of downloads when non-nil.
	Verifier *binary.Verifier
	Logger   *logger.Logger
}

// NewSetupService creates a new setup service.
func NewSetupService(cfg SetupConfig) (*SetupService, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("Runner is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("Resolver is required")
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("Detector is required")
	}
	if cfg.CacheRoot == "" {
		return nil, fmt.Errorf("CacheRoot is required")
	}
	if cfg.TempDir == "" {
		return nil, fmt.Errorf("TempDir is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &SetupService{
		cfg:       cfg.Config,
		runner:    cfg.Runner,
		resolver:  cfg.Resolver,
		detector:  cfg.Detector,
		cacheRoot: cfg.CacheRoot,
		tempDir:   cfg.TempDir,
		verifier:  cfg.Verifier,
		log:       log,
	}, nil
}

// SetupRequest contains parameters for a setup run.
type SetupRequest struct {
	// Version overrides the "version" input when set.
	Version string
}

// SetupResult contains the results of a setup run.
type SetupResult struct {
	Version    string
	Path       string
	CacheHit   bool
	PathUpdate actions.PathUpdate
}

// run carries the state of one invocation.
type run struct {
	s     *SetupService
	state State
}

func (r *run) enter(state State) {
	r.s.log.Debugw("setup state", "from", r.state.String(), "to", state.String())
	r.state = state
}

// fail moves the run to StateFailed and returns err.
func (r *run) fail(err error) error {
	r.s.log.Debugw("setup state", "from", r.state.String(), "to", StateFailed.String())
	r.state = StateFailed
	return err
}

// Run resolves the requested version, installs it unless cached, puts it on
// PATH and publishes the executable path as the "path" output. Nothing is
// published when an error is returned.
func (s *SetupService) Run(ctx context.Context, req SetupRequest) (*SetupResult, error) {
	r := &run{s: s, state: StateStart}

	requested := req.Version
	if requested == "" {
		var err error
		requested, err = s.runner.Input(InputVersion, actions.InputOptions{Required: true})
		if err != nil {
			return nil, r.fail(err)
		}
	}

	r.enter(StateResolvingVersion)
	version := s.resolver.Resolve(ctx, requested)
	log := s.log.WithTool(s.cfg.ToolName, version)

	r.enter(StateCheckingCache)
	info, err := s.detector.Detect(ctx)
	if err != nil {
		return nil, r.fail(err)
	}

	cache := toolcache.New(s.cacheRoot, info.CacheArch, toolcache.WithLogger(log))
	exeName := binary.ExecutableName(s.cfg.ToolName, info.OS)

	cachedDir, cacheHit := cache.Find(s.cfg.ToolName, version)
	if cacheHit {
		r.enter(StateCacheHit)
		log.Debugw("found in tool cache", "dir", cachedDir)
	} else {
		r.enter(StateCacheMiss)
		log.Debugw("not in tool cache", "root", cache.Root(), "platform", info.String())

		if err := s.install(ctx, r, cache, info, version, exeName); err != nil {
			return nil, r.fail(err)
		}

		var found bool
		cachedDir, found = cache.Find(s.cfg.ToolName, version)
		if !found {
			return nil, r.fail(fmt.Errorf("%w: %s %s in %s", ErrCacheInvariant, s.cfg.ToolName, version, s.cacheRoot))
		}
	}

	r.enter(StatePublishing)

	update := s.runner.AddPath(cachedDir)
	if update.Skipped() {
		log.Debugw("PATH not updated", "dir", cachedDir, "error", update.Err)
	}

	exePath := filepath.Join(cachedDir, exeName)
	if err := s.runner.SetOutput(OutputPath, exePath); err != nil {
		return nil, r.fail(fmt.Errorf("set output %s: %w", OutputPath, err))
	}

	log.Infow("installed", "path", exePath)

	return &SetupResult{
		Version:    version,
		Path:       exePath,
		CacheHit:   cacheHit,
		PathUpdate: update,
	}, nil
}

// install downloads and extracts version and stores the executable in cache.
func (s *SetupService) install(ctx context.Context, r *run, cache *toolcache.Cache, info *platform.Info, version, exeName string) error {
	inst, err := binary.NewInstaller(binary.InstallerConfig{
		Config:   s.cfg,
		Platform: info,
		TempDir:  s.tempDir,
		Verifier: s.verifier,
		Logger:   s.log,
	})
	if err != nil {
		return fmt.Errorf("create installer: %w", err)
	}

	r.enter(StateDownloading)
	dl, err := inst.Download(ctx, version)
	if err != nil {
		return err
	}

	r.enter(StateExtracting)
	res, err := inst.Unpack(dl)
	if err != nil {
		return err
	}

	r.enter(StateInstalling)
	if _, err := cache.CacheFile(ctx, res.ExecutablePath, exeName, s.cfg.ToolName, version); err != nil {
		return fmt.Errorf("cache %s: %w", s.cfg.ToolName, err)
	}

	return nil
}
