package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jkroepke/setup-vals/internal/actions"
	"github.com/jkroepke/setup-vals/internal/binary"
	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/logger"
	"github.com/jkroepke/setup-vals/internal/platform"
	"github.com/jkroepke/setup-vals/internal/release"
	"github.com/jkroepke/setup-vals/internal/service"
	"github.com/jkroepke/setup-vals/internal/toolcache"
)

// Set at build time via -ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Action inputs besides "version".
const (
	inputVerifyChecksum = "verify-checksum"
	inputPublicKey      = "checksum-public-key"
	inputToken          = "token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		reportError(os.Stdout, os.Stderr, err)
		os.Exit(1)
	}
}

// reportError fails the workflow step inside Actions and prints the error
// elsewhere.
func reportError(stdout, stderr io.Writer, err error) {
	runner := actions.NewRunner(stdout)
	if runner.IsActions() {
		if cmdErr := runner.SetFailed(err.Error()); cmdErr == nil {
			return
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

type setupOptions struct {
	version        string
	configFile     string
	debug          bool
	verifyChecksum bool
	publicKey      string
}

func newRootCommand(out io.Writer) *cobra.Command {
	var opts setupOptions

	cmd := &cobra.Command{
		Use:   "setup-vals",
		Short: "Install vals into the GitHub Actions tool cache",
		Long: `setup-vals resolves a vals release, installs it into the runner tool cache,
adds it to PATH and publishes its location as the "path" step output.

Inputs are read from the INPUT_* variables set by the runner; flags override them.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true, // We handle errors in main()
		SilenceUsage:  true, // Don't show usage on errors
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, out, opts)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", `vals version to install, e.g. "v0.42.0" or "latest" (default: input "version")`)
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().BoolVar(&opts.verifyChecksum, "verify-checksum", false, "Verify the archive against the release checksums")
	cmd.Flags().StringVar(&opts.publicKey, "checksum-public-key", "", "Armored OpenPGP key that signed the release checksums")

	cmd.AddCommand(newVersionCommand(out))

	return cmd
}

func newVersionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the setup-vals version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "setup-vals %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func runSetup(cmd *cobra.Command, out io.Writer, opts setupOptions) error {
	runner := actions.NewRunner(out)

	debug := opts.debug || runner.IsDebug()

	var log *logger.Logger
	if runner.IsActions() {
		log = logger.NewActions(out, debug)
	} else {
		log = logger.New(debug)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verifier, err := newVerifier(cmd, runner, opts)
	if err != nil {
		return err
	}

	token, err := runner.Input(inputToken, actions.InputOptions{})
	if err != nil {
		return err
	}

	cacheRoot, err := toolcache.DefaultRoot(runner.Getenv)
	if err != nil {
		return err
	}

	tempDir := runner.Getenv("RUNNER_TEMP")
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	svc, err := service.NewSetupService(service.SetupConfig{
		Config:    cfg,
		Runner:    runner,
		Resolver:  release.NewResolver(cfg, log, release.WithToken(token)),
		Detector:  platform.NewDetector(),
		CacheRoot: cacheRoot,
		TempDir:   tempDir,
		Verifier:  verifier,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	log.Debugw("starting setup", "setupVersion", version, "commit", commit)

	_, err = svc.Run(cmd.Context(), service.SetupRequest{Version: opts.version})
	return err
}

// newVerifier returns nil when verification is off. Supplying a public key
// turns verification on.
func newVerifier(cmd *cobra.Command, runner *actions.Runner, opts setupOptions) (*binary.Verifier, error) {
	verify := opts.verifyChecksum
	if !cmd.Flags().Changed("verify-checksum") {
		var err error
		verify, err = runner.BoolInput(inputVerifyChecksum, false, false)
		if err != nil {
			return nil, err
		}
	}

	key := opts.publicKey
	if key == "" {
		var err error
		key, err = runner.Input(inputPublicKey, actions.InputOptions{})
		if err != nil {
			return nil, err
		}
	}

	if !verify && key == "" {
		return nil, nil
	}

	verifier, err := binary.NewVerifier(key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", inputPublicKey, err)
	}
	return verifier, nil
}
