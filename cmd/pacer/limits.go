package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/pacer/config"
	"github.com/adamwoolhether/pacer/limiter"
)

type limitsOptions struct {
	calls   int
	timeout time.Duration
}

type limitsResult struct {
	Name      string
	Config    limiter.Config
	Allowed   int
	Waited    int
	Rejected  int
	Abandoned int
}

var limitsOpts limitsOptions

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Push a burst of calls through every configured limiter",
	Long: `Build every limiter named in the config file and call each one in a
tight loop, reporting how many calls were allowed, waited, rejected or
abandoned. Waiting limiters give up once --timeout passes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return errors.New("limits requires --config")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		results, err := runLimits(cmd.Context(), newLogger(cmd, cfg), cfg, limitsOpts)
		if err != nil {
			return err
		}

		return printLimits(cmd.OutOrStdout(), results)
	},
}

func init() {
	limitsCmd.Flags().IntVar(&limitsOpts.calls, "calls", 0, "calls per limiter (default twice its limit)")
	limitsCmd.Flags().DurationVar(&limitsOpts.timeout, "timeout", 5*time.Second, "how long waiting calls may block")

	rootCmd.AddCommand(limitsCmd)
}

// tally counts limiter outcomes per limiter name.
type tally struct {
	mu     sync.Mutex
	counts map[string]*limitsResult
}

func (t *tally) get(name string) *limitsResult {
	if t.counts[name] == nil {
		t.counts[name] = &limitsResult{Name: name}
	}
	return t.counts[name]
}

func (t *tally) Allowed(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(name).Allowed++
}

func (t *tally) Waited(name string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(name).Waited++
}

func (t *tally) Rejected(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(name).Rejected++
}

func runLimits(ctx context.Context, log *slog.Logger, cfg *config.Config, opts limitsOptions) ([]limitsResult, error) {
	t := tally{counts: make(map[string]*limitsResult)}

	limiters, err := config.BuildLimiters(cfg, limiter.Fallback[struct{}]{}, limiter.WithLogger(log), limiter.WithMetrics(&t))
	if err != nil {
		return nil, err
	}

	results := make([]limitsResult, 0, len(limiters))
	for _, name := range sortedNames(limiters) {
		l := limiters[name]

		calls := opts.calls
		if calls <= 0 {
			calls = 2 * l.Config().Limit
		}

		abandoned, err := burst(ctx, l, calls, opts.timeout)
		if err != nil {
			return nil, fmt.Errorf("limiter %q: %w", name, err)
		}

		t.mu.Lock()
		res := *t.get(name)
		t.mu.Unlock()
		res.Config = l.Config()
		res.Abandoned = abandoned
		results = append(results, res)
	}

	return results, nil
}

// burst makes calls through l back to back and returns how many were
// abandoned while waiting.
func burst(ctx context.Context, l *limiter.Limiter[struct{}], calls int, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	call := l.Wrap(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})

	var abandoned int
	for range calls {
		_, err := call(ctx)
		switch {
		case err == nil, errors.Is(err, limiter.ErrLimitExceeded):
		case errors.Is(err, limiter.ErrWaitingFailed):
			abandoned++
		default:
			return abandoned, err
		}
	}

	return abandoned, nil
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func printLimits(w io.Writer, results []limitsResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LIMITER\tLIMIT\tINTERVAL\tWAIT\tALLOWED\tWAITED\tREJECTED\tABANDONED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%d\t%d\t%d\t%d\n",
			r.Name, r.Config.Limit, r.Config.Interval, r.Config.Wait,
			r.Allowed, r.Waited, r.Rejected, r.Abandoned)
	}

	return tw.Flush()
}
