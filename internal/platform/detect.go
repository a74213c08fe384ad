package platform

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// hostInfoFunc matches host.InfoWithContext.
type hostInfoFunc func(ctx context.Context) (*host.InfoStat, error)

// RunnerDetector implements Detector from the runner environment.
type RunnerDetector struct {
	getenv   func(string) string
	hostInfo hostInfoFunc
}

// NewDetector creates a detector reading the process environment.
func NewDetector() Detector {
	return NewDetectorWithEnv(os.Getenv)
}

// NewDetectorWithEnv creates a detector reading variables through getenv.
func NewDetectorWithEnv(getenv func(string) string) Detector {
	return &RunnerDetector{
		getenv:   getenv,
		hostInfo: host.InfoWithContext,
	}
}

// Detect performs platform detection and returns platform information.
//
// RUNNER_OS and RUNNER_ARCH take precedence. Missing values are filled from
// gopsutil host information and, if that fails too, from runtime.GOOS and
// runtime.GOARCH.
func (d *RunnerDetector) Detect(ctx context.Context) (*Info, error) {
	runnerOS := d.getenv("RUNNER_OS")
	runnerArch := d.getenv("RUNNER_ARCH")

	if runnerOS == "" || runnerArch == "" {
		hostOS, hostArch, err := d.detectHost(ctx)
		if err != nil {
			return nil, err
		}
		if runnerOS == "" {
			runnerOS = hostOS
		}
		if runnerArch == "" {
			runnerArch = hostArch
		}
	}

	arch := normalizeArch(runnerArch)

	osName, err := normalizeOS(runnerOS, arch)
	if err != nil {
		return nil, err
	}

	return &Info{
		OS:         osName,
		Arch:       arch,
		CacheArch:  cacheArch(runnerArch),
		RunnerOS:   runnerOS,
		RunnerArch: runnerArch,
	}, nil
}

// detectHost returns the OS and kernel architecture of the machine.
func (d *RunnerDetector) detectHost(ctx context.Context) (string, string, error) {
	info, err := d.hostInfo(ctx)
	if err != nil || info == nil {
		// Check if context was cancelled - this is a hard failure
		if ctx.Err() != nil {
			return "", "", fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		// Graceful fallback to the values the binary was built for
		return runtime.GOOS, runtime.GOARCH, nil
	}

	hostOS, hostArch := info.OS, info.KernelArch
	if hostOS == "" {
		hostOS = runtime.GOOS
	}
	if hostArch == "" {
		hostArch = runtime.GOARCH
	}

	return hostOS, hostArch, nil
}
