package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/config"
	"github.com/eliteGoblin/reclaim/internal/daemon"
	"github.com/eliteGoblin/reclaim/internal/domain"
	"github.com/eliteGoblin/reclaim/internal/infra"
	"github.com/eliteGoblin/reclaim/internal/usecase"
)

// runOptions holds the run command's flags. Only flags set on the command
// line override the loaded configuration.
type runOptions struct {
	configPath  string
	profile     string
	root        string
	appName     string
	targets     []string
	processes   []string
	quiescence  time.Duration
	parallel    int
	strict      bool
	json        bool
	metricsFile string
	noSweep     bool
	logLevel    string
	logFormat   string
}

func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVar(&o.profile, "profile", "", "Built-in profile (see 'reclaim list')")
	f.StringVar(&o.root, "root", "", "Project root for profile targets (default: current directory)")
	f.StringVar(&o.appName, "app", "", "Packaged application executable name")
	f.StringArrayVar(&o.targets, "target", nil, "Extra target as label=path (repeatable)")
	f.StringArrayVar(&o.processes, "process", nil, "Extra process name to terminate (repeatable)")
	f.DurationVar(&o.quiescence, "quiescence", 0, "Settle delay after terminating processes")
	f.IntVar(&o.parallel, "parallel", 0, "Targets reclaimed concurrently")
	f.BoolVar(&o.strict, "strict", false, "Exit non-zero when any target fails")
	f.BoolVar(&o.json, "json", false, "Print the report as JSON")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.BoolVar(&o.noSweep, "no-sweep", false, "Do not remove leftovers of earlier runs")
	f.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&o.logFormat, "log-format", "", "Log format (console, json)")
}

func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = o.profile
	}
	if flags.Changed("root") {
		cfg.Root = o.root
	}
	if flags.Changed("app") {
		cfg.AppName = o.appName
	}
	for _, raw := range o.targets {
		t, err := parseTargetFlag(raw)
		if err != nil {
			return err
		}
		cfg.Targets = append(cfg.Targets, t)
	}
	cfg.Processes = append(cfg.Processes, o.processes...)
	if flags.Changed("quiescence") {
		cfg.Session.Quiescence = o.quiescence
	}
	if flags.Changed("parallel") {
		cfg.Session.Parallelism = o.parallel
	}
	if o.noSweep {
		cfg.Session.SweepStale = false
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.TextFile = o.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	return cfg.Validate()
}

// parseTargetFlag parses "label=path". A bare path uses its base name as label.
func parseTargetFlag(raw string) (config.TargetConfig, error) {
	label, path, found := strings.Cut(raw, "=")
	if !found {
		path = raw
		label = filepath.Base(filepath.Clean(raw))
	}
	label = strings.TrimSpace(label)
	path = strings.TrimSpace(path)
	if label == "" || path == "" {
		return config.TargetConfig{}, fmt.Errorf("invalid --target %q: want label=path", raw)
	}
	return config.TargetConfig{Label: label, Path: path}, nil
}

// resolvePlan combines the profile's targets and signatures with the
// configured extras. Relative target paths are taken from the project root.
func resolvePlan(cfg *config.Config, store domain.ProfileStore) ([]domain.TargetPath, []domain.ProcessSignature, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve project root: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve project root: %w", err)
	}

	plan, err := store.GetByID(cfg.Profile, domain.ProfileOptions{Root: root, AppName: cfg.AppName})
	if err != nil {
		return nil, nil, err
	}

	targets := append([]domain.TargetPath{}, plan.Targets...)
	for _, t := range cfg.Targets {
		path := t.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		target := domain.TargetPath{Label: t.Label, Path: filepath.Clean(path)}
		for _, h := range t.Holders {
			target.Holders = append(target.Holders, domain.ProcessSignature{Name: h})
		}
		targets = append(targets, target)
	}

	sigs := append([]domain.ProcessSignature{}, plan.Signatures...)
	for _, name := range cfg.Processes {
		if name = strings.TrimSpace(name); name != "" {
			sigs = append(sigs, domain.ProcessSignature{Name: name})
		}
	}
	return targets, sigs, nil
}

// newSession wires the production adapter, escalation chain and session.
func newSession(cfg *config.Config, recorder domain.Recorder, logger *zap.Logger) *usecase.Session {
	platform := infra.DetectPlatform(runtime.GOOS)
	if cfg.Deferred.LogFile != "" {
		platform.DeferredLogPath = cfg.Deferred.LogFile
	}

	exe, err := daemon.SelfExecutable()
	if err != nil {
		// Rename and scheduled strategies will report spawn failures
		logger.Warn("cannot locate own executable", zap.Error(err))
	}

	adapter := infra.NewPlatformAdapter(
		platform,
		infra.NewProcessManager(),
		infra.NewFileSystemManager(),
		&infra.RealCommandRunner{},
		daemon.NewSpawner(platform.DetachedWorkDir),
		infra.DeferredTaskOptions{
			Executable: exe,
			Retries:    cfg.Deferred.Retries,
			Interval:   cfg.Deferred.Interval,
		},
		logger,
	)
	logger.Debug("platform adapter ready",
		zap.String("family", string(platform.Family)),
		zap.Int("forced_strategies", len(adapter.ForcedRemover().GetStrategies())))

	reclaimer := usecase.NewReclaimer(
		adapter,
		infra.NewTombstoneNamer(),
		usecase.NewScheduler(adapter, logger),
		recorder,
		usecase.ReclaimerConfig{DeferredDelay: cfg.Deferred.Delay, SweepStale: cfg.Session.SweepStale},
		logger,
	)

	return usecase.NewSession(
		usecase.NewTerminator(adapter, recorder, logger),
		usecase.NewQuiescenceWaiter(cfg.Session.Quiescence, logger),
		reclaimer,
		recorder,
		usecase.SessionConfig{Parallelism: cfg.Session.Parallelism},
		logger,
	)
}
