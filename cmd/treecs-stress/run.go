package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/plus3/visora/treecs"
	"github.com/plus3/visora/treecs/metrics"
)

type runOptions struct {
	scenarioPath   string
	scenario       Scenario
	profileMode    string
	profileDir     string
	metricsAddr    string
	gcPauseMetrics bool
	verbose        bool
}

func runCmd() *cobra.Command {
	opts := runOptions{scenario: defaultScenario()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a stress scenario",
		Long: `Run mounts the scenario's tree and drives frames until the duration elapses.

Flags override values read from --scenario.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.scenarioPath != "" {
				sc, err := loadScenario(opts.scenarioPath)
				if err != nil {
					return err
				}
				applyOverrides(cmd, &sc, opts.scenario)
				opts.scenario = sc
			}
			if err := opts.scenario.validate(); err != nil {
				return fmt.Errorf("invalid scenario: %w", err)
			}

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			return run(cmd.Context(), opts, logger, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.scenarioPath, "scenario", "f", "", "YAML scenario file")
	f.DurationVarP(&opts.scenario.Duration, "duration", "d", opts.scenario.Duration, "total run duration")
	f.IntVar(&opts.scenario.Depth, "depth", opts.scenario.Depth, "depth of every mounted subtree")
	f.IntVar(&opts.scenario.Fanout, "fanout", opts.scenario.Fanout, "children per container")
	f.IntVar(&opts.scenario.Churn, "churn", opts.scenario.Churn, "subtrees remounted per frame")
	f.Int64Var(&opts.scenario.Seed, "seed", opts.scenario.Seed, "random seed")
	f.StringVar(&opts.profileMode, "profile", "", "profile mode: cpu, mem or empty")
	f.StringVar(&opts.profileDir, "profile-dir", ".", "directory for profile output")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.BoolVar(&opts.gcPauseMetrics, "gc-pause-metrics", false, "include GC pause metrics in the report")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// applyOverrides copies explicitly set flags over a scenario read from disk.
func applyOverrides(cmd *cobra.Command, sc *Scenario, flags Scenario) {
	f := cmd.Flags()
	if f.Changed("duration") {
		sc.Duration = flags.Duration
	}
	if f.Changed("depth") {
		sc.Depth = flags.Depth
	}
	if f.Changed("fanout") {
		sc.Fanout = flags.Fanout
	}
	if f.Changed("churn") {
		sc.Churn = flags.Churn
	}
	if f.Changed("seed") {
		sc.Seed = flags.Seed
	}
}

func startProfile(mode, dir string) (interface{ Stop() }, error) {
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet), nil
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet), nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q", mode)
	}
}

// newFramePasses registers the per-frame passes in execution order.
func newFramePasses(tree *treecs.Treecs, out io.Writer) (*treecs.Passes, *RenderPass) {
	render := &RenderPass{Out: out}
	passes := treecs.NewPasses(tree)
	passes.Register(&ChurnPass{})
	passes.Register(MeasurePass{})
	passes.Register(PlacePass{})
	passes.Register(render)
	return passes, render
}

func serveMetrics(addr string, tree *treecs.Treecs, mu *sync.Mutex, logger *slog.Logger) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics.NewCollector(tree, metrics.WithSubsystem("stress"), metrics.WithLocker(mu)),
		collectors.NewGoCollector(),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}

func run(ctx context.Context, opts runOptions, logger *slog.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc := opts.scenario

	prof, err := startProfile(opts.profileMode, opts.profileDir)
	if err != nil {
		return err
	}
	if prof != nil {
		defer prof.Stop()
	}

	tree := treecs.New()
	treecs.SetResource(tree, sc)
	treecs.SetResource(tree, FrameCounters{})

	// held around every frame so scrapes never see a half-applied flush
	var mu sync.Mutex
	if opts.metricsAddr != "" {
		srv, err := serveMetrics(opts.metricsAddr, tree, &mu, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	logger.Info("populating tree", "scenario", sc.Name, "depth", sc.Depth, "fanout", sc.Fanout)
	mounted := populate(tree, sc)
	logger.Info("population complete", "entities", tree.Len())

	passes, render := newFramePasses(tree, io.Discard)

	report := &Report{
		Scenario:       sc,
		Mounted:        mounted,
		GCPauseMetrics: opts.gcPauseMetrics,
		TreeStart:      tree.CollectStats(),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running frames", "duration", sc.Duration)
	ctx, cancel := context.WithTimeout(ctx, sc.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			mu.Lock()
			passes.OnceContext(ctx, deltaTime.Seconds())
			mu.Unlock()
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			report.TotalFrames++

			if render.Err != nil {
				return fmt.Errorf("rendering frame %d: %w", report.TotalFrames, render.Err)
			}
			if report.TotalFrames%1000 == 0 {
				logger.Debug("frame", "n", report.TotalFrames, "entities", tree.Len())
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Passes = passes.GetStats()
	report.Counters = *treecs.GetResource[FrameCounters](tree)
	report.TreeEnd = tree.CollectStats()

	logger.Info("run finished", "frames", report.TotalFrames)

	if err := report.Generate(out); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	return nil
}
