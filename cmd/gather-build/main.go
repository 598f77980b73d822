package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/epaperdriver/gather-build/pkg/config"
	"github.com/epaperdriver/gather-build/pkg/finder"
	"github.com/epaperdriver/gather-build/pkg/gather"
	"github.com/epaperdriver/gather-build/pkg/includes"
	"github.com/epaperdriver/gather-build/pkg/logging"
	"github.com/epaperdriver/gather-build/pkg/materialize"
	"github.com/epaperdriver/gather-build/pkg/output"
	"github.com/epaperdriver/gather-build/pkg/walker"
	"github.com/epaperdriver/gather-build/pkg/watcher"
)

const (
	quietPeriod = 200 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	flags := config.NewFlagSet("gather-build")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logging.Fatal("invalid arguments", "error", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		logging.Fatal("failed to load configuration", "error", err)
	}

	level, err := logging.LevelFromVerbosity(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		logging.Fatal("invalid verbosity", "error", err)
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	opts, err := gatherOptions(cfg)
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := gather.NewGatherer(opts)
	if err := runOnce(ctx, g, cfg, "initial run"); err != nil {
		stop()
		logging.Fatal("gather failed", "error", err)
	}

	if cfg.Watch {
		if err := watch(ctx, g, cfg); err != nil {
			stop()
			logging.Fatal("watch failed", "error", err)
		}
	}
}

func gatherOptions(cfg *config.Config) (gather.Options, error) {
	if err := cfg.Validate(); err != nil {
		return gather.Options{}, err
	}

	policy, err := materialize.ParseCollisionPolicy(cfg.Collision)
	if err != nil {
		return gather.Options{}, err
	}
	exclude, err := finder.NewExcludeFilter(cfg.Exclude)
	if err != nil {
		return gather.Options{}, err
	}

	return gather.Options{
		Roots: walker.Roots{
			Example: cfg.Example,
			Library: cfg.Library,
			Output:  cfg.Output,
		},
		Materialize: materialize.Options{
			Text:      materialize.DefaultTextPolicy,
			Collision: policy,
			Exclude:   exclude,
		},
	}, nil
}

// runOnce gathers the whole build tree, then runs the optional check and report
func runOnce(ctx context.Context, g *gather.Gatherer, cfg *config.Config, reason string) error {
	return logging.TrackRun(ctx, reason, func(ctx context.Context) error {
		summary, err := g.Run(ctx)
		if err != nil {
			return err
		}

		var checks []*includes.Report
		if cfg.Check {
			units := make([]includes.UnitDir, 0, len(summary.Units))
			for _, u := range summary.Units {
				units = append(units, includes.UnitDir{Name: u.Name, Dir: u.OutputDir})
			}
			checks, err = includes.CheckUnits(ctx, units)
			if err != nil {
				// The build tree is complete, a failed check is only worth a warning
				logging.WarnContext(ctx, "include check failed", "error", err)
			}
		}

		if cfg.Report {
			output.PrintGatherReport(os.Stdout, summary, checks)
		}
		return nil
	})
}

// watch gathers again whenever an input changes, until ctx is done
func watch(ctx context.Context, g *gather.Gatherer, cfg *config.Config) error {
	roots := g.Roots()
	fw, err := watcher.NewFileWatcher(roots.Example, roots.Library)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	logging.Info("watching for changes, press Ctrl+C to stop")

	for batch := range debouncer.Output() {
		analysis := watcher.AnalyzeChanges(batch)
		if !analysis.NeedRegather {
			continue
		}
		logging.Debug("changes detected", "files", len(analysis.ChangedFiles))

		// A broken input during watch is reported and waited out
		if err := runOnce(ctx, g, cfg, analysis.Reason); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logging.Error("gather failed", "reason", analysis.Reason, "error", err)
		}
	}

	logging.Info("stopped watching")
	return nil
}
