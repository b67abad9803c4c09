package experiment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// Runner runs a single walk. The walker package's Walker satisfies it.
type Runner interface {
	Walk(ctx context.Context, runID int) (model.WalkOutcome, error)
}

// Observer is called after every completed walk with the walk's outcome,
// the number of walks completed so far, and the requested total. With
// multiple workers it is called from worker goroutines, so observers that
// touch shared state must synchronize.
type Observer func(outcome model.WalkOutcome, completed, total int)

// Driver runs batches of walks and collects their outcomes.
//
// Design decision: The Driver owns batching and concurrency but no
// rendering or persistence. Progress display and report writing hook in
// through the Observer and the returned outcomes, which keeps the run
// loop testable without a terminal or a database.
type Driver struct {
	// runner performs individual walks.
	runner Runner

	// runs is the number of walks to perform.
	runs int

	// workers is the maximum number of walks in flight. 1 means
	// sequential execution.
	workers int

	// observer, when set, is notified after each completed walk.
	observer Observer

	// logger records batch-level events.
	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithWorkers sets the maximum number of walks in flight.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithObserver sets the per-walk completion callback.
func WithObserver(observer Observer) Option {
	return func(d *Driver) {
		d.observer = observer
	}
}

// WithLogger sets the logger for batch-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New creates a Driver that performs runs walks.
func New(runner Runner, runs int, opts ...Option) *Driver {
	d := &Driver{
		runner:  runner,
		runs:    runs,
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run performs all walks and returns their outcomes ordered by run ID.
// Run IDs are assigned 1 through N.
//
// A non-nil error means the batch stopped early; the outcomes collected
// before the stop are still returned alongside it.
func (d *Driver) Run(ctx context.Context) ([]model.WalkOutcome, error) {
	d.logger.InfoContext(ctx, "starting experiment",
		"walks", d.runs,
		"workers", d.workers,
	)

	startTime := time.Now()

	var outcomes []model.WalkOutcome
	var err error
	if d.workers <= 1 {
		outcomes, err = d.runSequential(ctx)
	} else {
		outcomes, err = d.runConcurrent(ctx)
	}

	d.logger.InfoContext(ctx, "experiment finished",
		"completed", len(outcomes),
		"requested", d.runs,
		"elapsed", time.Since(startTime),
	)

	return outcomes, err
}

// runSequential performs walks one at a time.
func (d *Driver) runSequential(ctx context.Context) ([]model.WalkOutcome, error) {
	outcomes := make([]model.WalkOutcome, 0, d.runs)

	for i := 0; i < d.runs; i++ {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}

		outcome, err := d.runner.Walk(ctx, i+1)
		if err != nil {
			return outcomes, err
		}

		outcomes = append(outcomes, outcome)
		if d.observer != nil {
			d.observer(outcome, len(outcomes), d.runs)
		}
	}

	return outcomes, nil
}

// runConcurrent performs walks on a bounded worker pool. Outcomes land
// in a slice indexed by run so the result keeps run order regardless of
// completion order.
func (d *Driver) runConcurrent(ctx context.Context) ([]model.WalkOutcome, error) {
	outcomes := make([]model.WalkOutcome, d.runs)
	done := make([]bool, d.runs)

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i := 0; i < d.runs; i++ {
		i := i // per-iteration copy for the closure (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			outcome, err := d.runner.Walk(gctx, i+1)
			if err != nil {
				return err
			}

			mu.Lock()
			outcomes[i] = outcome
			done[i] = true
			completed++
			count := completed
			mu.Unlock()

			if d.observer != nil {
				d.observer(outcome, count, d.runs)
			}
			return nil
		})
	}

	err := g.Wait()

	// Compact away the slots of walks that never finished, keeping run
	// order for the rest.
	results := make([]model.WalkOutcome, 0, completed)
	for i, ok := range done {
		if ok {
			results = append(results, outcomes[i])
		}
	}

	return results, err
}
