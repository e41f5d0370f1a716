// Package main is the CLI entry point for reclaim.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/config"
	"github.com/eliteGoblin/reclaim/internal/daemon"
	"github.com/eliteGoblin/reclaim/internal/infra"
	"github.com/eliteGoblin/reclaim/internal/logging"
	"github.com/eliteGoblin/reclaim/internal/metrics"
	"github.com/eliteGoblin/reclaim/internal/profile"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

// errTargetsFailed is returned by run --strict when some target is still present.
var errTargetsFailed = errors.New("some targets could not be reclaimed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errTargetsFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Reclaim build output directories held open by lingering processes",
	Long: `reclaim removes stale packaging output (release/, dist/, out/ ...) before a build.

It kills processes known to hold those directories open, waits for handles to
be released, then escalates per directory: direct delete, the OS's forced
delete, rename-aside plus background delete, and finally background delete of
the original path. It never prompts and never fails the build by default.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reclaim all configured targets once",
	Long: `Terminates interfering processes, waits, and reclaims every target.
Targets come from the selected profile, the config file and --target flags.
Exit status is 0 even if some targets fail, unless --strict is given.`,
	RunE: runRun,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in profiles",
	Long:  `Shows every built-in profile with its target directories and process names.`,
	RunE:  runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

// Hidden command - the detached removal task self-execs into this
var deferredCmd = &cobra.Command{
	Use:    infra.DeferredRemoveCommand,
	Hidden: true,
	RunE:   runDeferred,
}

var (
	runFlags    runOptions
	jsonVersion bool

	deferredPath     string
	deferredDelay    time.Duration
	deferredRetries  int
	deferredInterval time.Duration
	deferredLogFile  string
)

func init() {
	runFlags.bind(runCmd)

	versionCmd.Flags().BoolVar(&jsonVersion, "json", false, "Output version info as JSON")

	d := deferredCmd.Flags()
	d.StringVar(&deferredPath, "path", "", "Path to remove")
	d.DurationVar(&deferredDelay, "delay", 5*time.Second, "Delay before the first attempt")
	d.IntVar(&deferredRetries, "retries", 5, "Removal rounds")
	d.DurationVar(&deferredInterval, "interval", 2*time.Second, "Pause between rounds")
	d.StringVar(&deferredLogFile, "log-file", "", "Log file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(deferredCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}
	if err := runFlags.apply(cmd, cfg); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("effective configuration", zap.Any("config", cfg.LogEffective(runFlags.configPath)))

	targets, sigs, err := resolvePlan(cfg, profile.NewProfileStore())
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	session := newSession(cfg, recorder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := session.Run(ctx, targets, sigs)
	if err != nil {
		return err
	}

	if runFlags.json {
		if err := printReportJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}

	if cfg.Metrics.TextFile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.TextFile); err != nil {
			logger.Warn("failed to write metrics textfile",
				zap.String("path", cfg.Metrics.TextFile),
				zap.Error(err))
		}
	}

	if runFlags.strict && report.HasFailures() {
		return errTargetsFailed
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	registry := profile.NewRegistry()

	fmt.Fprintln(out, "\n=== Profiles ===")

	for _, p := range registry.GetAll() {
		fmt.Fprintf(out, "\n[%s] %s\n", p.ID(), p.Name())
		fmt.Fprintln(out, "  Targets:")
		targets := p.Targets()
		if len(targets) == 0 {
			fmt.Fprintln(out, "    (from config and --target only)")
		}
		for _, t := range targets {
			if len(t.Holders) > 0 {
				fmt.Fprintf(out, "    - %s (held by %v)\n", t.Dir, t.Holders)
			} else {
				fmt.Fprintf(out, "    - %s\n", t.Dir)
			}
		}
		fmt.Fprintln(out, "  Processes:")
		for _, proc := range p.ProcessPatterns("<app>") {
			fmt.Fprintf(out, "    - %s\n", proc)
		}
	}

	fmt.Fprintln(out, "\n================")
	return nil
}

// runDeferred is the detached removal task. It has no caller to report to:
// everything goes to the log file and the exit status is always 0.
func runDeferred(cmd *cobra.Command, args []string) error {
	platform := infra.DetectPlatform(runtime.GOOS)
	logPath := deferredLogFile
	if logPath == "" {
		logPath = platform.DeferredLogPath
	}
	logger := logging.NewFile(logPath)
	defer func() { _ = logger.Sync() }()

	daemon.SetProcessName("reclaim-deferred")

	path := filepath.Clean(deferredPath)
	if deferredPath == "" || !filepath.IsAbs(path) || filepath.Dir(path) == path {
		logger.Error("refusing deferred removal", zap.String("path", deferredPath))
		return nil
	}

	fs := infra.NewFileSystemManager()
	forced := infra.NewForcedRemover(logger, fs.Exists, platform.ForcedStrategies(&infra.RealCommandRunner{})...)
	remover := daemon.NewRemover(daemon.RemoverConfig{
		Path:     path,
		Delay:    deferredDelay,
		Retries:  deferredRetries,
		Interval: deferredInterval,
	}, fs, forced, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := remover.Run(ctx); err != nil {
		logger.Warn("deferred removal did not complete", zap.String("path", path), zap.Error(err))
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if jsonVersion {
		fmt.Fprintf(out, `{"version":"%s","commit":"%s","build_time":"%s","platform":"%s/%s"}`+"\n",
			Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
	} else {
		fmt.Fprintf(out, "reclaim %s (commit: %s, built: %s, %s/%s)\n",
			Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
	}
}
