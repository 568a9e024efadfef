package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adamwoolhether/pacer/clock"
	"github.com/adamwoolhether/pacer/internal/profile"
	"github.com/adamwoolhether/pacer/internal/server"
	"github.com/adamwoolhether/pacer/meter"
)

var errUnknownMode = errors.New("unknown mode")

type benchOptions struct {
	rate        float64
	duration    time.Duration
	mode        string
	window      time.Duration
	metricsAddr string
	metricsPath string
}

type benchResult struct {
	Mode         string
	Iterations   int
	Elapsed      time.Duration
	MeasuredRate float64
	Error        float64
	MeterRate    float64
}

var benchOpts benchOptions

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a paced loop and report the achieved rate",
	Long: `Run a loop paced by an interval clock and compare the achieved rate
against the target.

Modes:
  wait     block between ticks
  await    block between ticks, cancellable
  elapsed  poll the clock in a busy loop
  inexact  poll the clock, snapping to the poll time on each tick
  loop     iterate the clock's tick sequence`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cmd, cfg)

		opts := benchOpts
		if opts.metricsAddr == "" && cfg.Metrics.Enabled {
			opts.metricsAddr = cfg.Metrics.Address
		}
		opts.metricsPath = cfg.Metrics.Path

		res, err := runBench(cmd.Context(), log, opts)
		if err != nil {
			return err
		}

		printBench(cmd.OutOrStdout(), res)

		return nil
	},
}

func init() {
	benchCmd.Flags().Float64Var(&benchOpts.rate, "rate", 100, "target iterations per second")
	benchCmd.Flags().DurationVar(&benchOpts.duration, "duration", 2*time.Second, "how long to run")
	benchCmd.Flags().StringVar(&benchOpts.mode, "mode", "wait", "pacing mode (wait, await, elapsed, inexact, loop)")
	benchCmd.Flags().DurationVar(&benchOpts.window, "window", time.Second, "meter window for the trailing rate")
	benchCmd.Flags().StringVar(&benchOpts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(benchCmd)
}

// runBench paces opts.rate iterations per second for opts.duration.
// With a metrics address it also serves the meter's trailing rate until
// the workload ends.
func runBench(ctx context.Context, log *slog.Logger, opts benchOptions) (benchResult, error) {
	if opts.rate <= 0 || opts.duration <= 0 {
		return benchResult{}, fmt.Errorf("rate[%g] and duration[%s] must be greater than zero", opts.rate, opts.duration)
	}
	if opts.window <= 0 {
		opts.window = time.Second
	}

	interval := time.Duration(float64(time.Second) / opts.rate)
	if interval <= 0 {
		return benchResult{}, fmt.Errorf("rate[%g] exceeds nanosecond resolution", opts.rate)
	}
	iterations := max(int(opts.duration/interval), 1)

	clk, err := clock.New(interval, clock.WithLogger(log))
	if err != nil {
		return benchResult{}, err
	}
	m, err := meter.New(opts.window)
	if err != nil {
		return benchResult{}, err
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := m.Register(reg, prometheus.GaugeOpts{
			Name:        "pacer_bench_rate",
			Help:        "Trailing iterations per second of the bench loop",
			ConstLabels: prometheus.Labels{"mode": opts.mode},
		}); err != nil {
			return benchResult{}, err
		}

		path := opts.metricsPath
		if path == "" {
			path = "/metrics"
		}
		srv := server.NewMetrics(reg, path, server.WithHost(opts.metricsAddr), server.WithLogger(log))
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	prof := profile.New(iterations, opts.rate, nil)
	g.Go(func() error {
		defer stop()

		log.Info("bench started", "mode", opts.mode, "rate", opts.rate, "interval", interval.String(), "iterations", iterations)

		return prof.Time(func() error {
			return pace(ctx, clk, m, opts.mode, iterations)
		})
	})

	if err := g.Wait(); err != nil {
		return benchResult{}, err
	}

	res := benchResult{
		Mode:         opts.mode,
		Iterations:   iterations,
		Elapsed:      prof.Elapsed(),
		MeasuredRate: prof.MeasuredRate(),
		Error:        prof.Error(),
		MeterRate:    m.Rate(),
	}
	log.Info("bench complete", "mode", res.Mode, "elapsed", res.Elapsed.String(), "rate", res.MeasuredRate)

	return res, nil
}

// pace runs n ticks of clk in the given mode, updating m on every tick.
func pace(ctx context.Context, clk *clock.Clock, m *meter.Meter, mode string, n int) error {
	switch mode {
	case "wait":
		for range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := clk.WaitNext(); err != nil {
				return err
			}
			m.Update()
		}

	case "await":
		for range n {
			if err := clk.AwaitNext(ctx); err != nil {
				return err
			}
			m.Update()
		}

	case "elapsed", "inexact":
		var opts []clock.CallOption
		if mode == "inexact" {
			opts = append(opts, clock.Inexact())
		}
		for done := 0; done < n; {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := clk.Elapsed(opts...)
			if err != nil {
				return err
			}
			if !ok {
				runtime.Gosched()
				continue
			}
			done++
			m.Update()
		}

	case "loop":
		for _, err := range clk.AwaitLoop(ctx, clock.MaxTicks(n)) {
			if err != nil {
				return err
			}
			m.Update()
		}

	default:
		return fmt.Errorf("%w: %q", errUnknownMode, mode)
	}

	return nil
}

func printBench(w io.Writer, res benchResult) {
	fmt.Fprintf(w, "Mode:          %s\n", res.Mode)
	fmt.Fprintf(w, "Iterations:    %d\n", res.Iterations)
	fmt.Fprintf(w, "Elapsed:       %s\n", res.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "Measured rate: %.2f/s\n", res.MeasuredRate)
	fmt.Fprintf(w, "Rate error:    %.3f%%\n", res.Error*100)
	fmt.Fprintf(w, "Trailing rate: %.2f/s\n", res.MeterRate)
}
