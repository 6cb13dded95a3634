// Package groupexec drives grouped aggregation of interval rows across
// parallel workers.
//
// Rows are batched and dispatched to a worker pool. Each worker owns a
// private map of per-group accumulation states, so accumulation needs no
// locking. After input is exhausted the partial states are folded together
// with the aggregate's merge operation and finalized once per group,
// single-threaded. Merge order does not affect results; max_intersections
// is order-independent.
package groupexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eunmann/overlap-db/internal/logctx"
	"github.com/eunmann/overlap-db/pkg/humanfmt"
	"github.com/eunmann/overlap-db/pkg/input"
	"github.com/eunmann/overlap-db/pkg/overlapagg"
	"github.com/eunmann/overlap-db/pkg/sysmem"
)

// bytesPerInterval is the approximate in-memory cost of one accumulated
// interval (two int64 bounds), used for the memory budget estimate.
const bytesPerInterval = 16

// Config holds configuration for the aggregation driver.
type Config struct {
	// Workers is the number of concurrent accumulation workers.
	// Default: NumCPU clamped to [2, 16].
	Workers int

	// BatchSize is the number of rows dispatched to a worker at a time.
	// Default: 4096.
	BatchSize int

	// MemoryBudget is the approximate limit (in bytes) for accumulated
	// interval storage. The aggregate must retain every interval until
	// finalization, so the budget cannot trigger spilling; exceeding it
	// logs a warning instead. Default: 25% of system RAM, clamped to
	// [128MB, 1GB].
	MemoryBudget int64
}

// DefaultConfig returns a Config with sensible defaults based on the
// current machine.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	} else if workers > 16 {
		workers = 16
	}

	budget := int64(sysmem.TotalOrDefault()) / 4
	const minBudget = 128 * 1024 * 1024
	const maxBudget = 1024 * 1024 * 1024
	if budget < minBudget {
		budget = minBudget
	} else if budget > maxBudget {
		budget = maxBudget
	}

	return Config{
		Workers:      workers,
		BatchSize:    4096,
		MemoryBudget: budget,
	}
}

// Runner accepts interval rows and computes the max_intersections result
// per group. Create with NewRunner, feed rows with Add, then call Finish.
// Runner itself must be used from a single goroutine; parallelism happens
// in its worker pool.
type Runner struct {
	cfg     Config
	ctx     context.Context
	group   *errgroup.Group
	batchCh chan []input.Row

	// partials[i] is worker i's private accumulation map.
	partials []map[string]*overlapagg.State

	batch    []input.Row
	rowsIn   int64
	dropped  atomic.Int64 // rows excluded for a null bound
	stored   atomic.Int64 // intervals accepted into states
	warnOnce sync.Once
	started  time.Time
	finished bool
}

// NewRunner creates a runner and starts its worker pool. Finish must be
// called to release the workers, even on error paths.
func NewRunner(ctx context.Context, cfg Config) *Runner {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MemoryBudget <= 0 {
		cfg.MemoryBudget = def.MemoryBudget
	}

	g, gctx := errgroup.WithContext(ctx)
	r := &Runner{
		cfg:      cfg,
		ctx:      gctx,
		group:    g,
		batchCh:  make(chan []input.Row, cfg.Workers*2),
		partials: make([]map[string]*overlapagg.State, cfg.Workers),
		batch:    make([]input.Row, 0, cfg.BatchSize),
		started:  time.Now(),
	}

	for i := range cfg.Workers {
		states := make(map[string]*overlapagg.State)
		r.partials[i] = states
		workerCtx := logctx.WithInt(gctx, "worker_id", i)
		g.Go(func() error {
			return r.runWorker(workerCtx, states)
		})
	}

	return r
}

// runWorker accumulates dispatched batches into the worker's private states.
func (r *Runner) runWorker(ctx context.Context, states map[string]*overlapagg.State) error {
	for batch := range r.batchCh {
		if err := ctx.Err(); err != nil {
			return err
		}

		var stored int64
		for _, row := range batch {
			if row.StartNull || row.EndNull {
				// Special null handling: rows with a null bound never
				// reach the aggregate.
				r.dropped.Add(1)
				continue
			}
			state, ok := states[row.Group]
			if !ok {
				state = overlapagg.NewState()
				states[row.Group] = state
			}
			before := state.Len()
			state.Add(row.Start, row.End)
			stored += int64(state.Len() - before)
		}

		total := r.stored.Add(stored)
		if total*bytesPerInterval > r.cfg.MemoryBudget {
			r.warnOnce.Do(func() {
				logger := logctx.FromContext(ctx)
				logger.Warn().
					Int64("intervals", total).
					Str("estimated", humanfmt.Bytes(total*bytesPerInterval)).
					Str("budget", humanfmt.Bytes(r.cfg.MemoryBudget)).
					Msg("accumulated intervals exceed memory budget")
			})
		}
	}
	return nil
}

// Add feeds one row into the runner. Returns an error when the context was
// canceled or a worker failed.
func (r *Runner) Add(row input.Row) error {
	if r.finished {
		return errors.New("groupexec: Add after Finish")
	}
	r.rowsIn++
	r.batch = append(r.batch, row)
	if len(r.batch) >= r.cfg.BatchSize {
		return r.flush()
	}
	return nil
}

// flush dispatches the pending batch to the worker pool.
func (r *Runner) flush() error {
	if len(r.batch) == 0 {
		return nil
	}
	batch := r.batch
	r.batch = make([]input.Row, 0, r.cfg.BatchSize)

	select {
	case r.batchCh <- batch:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// Finish flushes pending rows, waits for the workers, folds their partial
// states together, and finalizes every group. An all-null or empty input
// produces an empty result map.
func (r *Runner) Finish() (map[string]int64, error) {
	if r.finished {
		return nil, errors.New("groupexec: Finish called twice")
	}
	r.finished = true

	flushErr := r.flush()
	close(r.batchCh)
	if err := r.group.Wait(); err != nil {
		return nil, fmt.Errorf("aggregation worker: %w", err)
	}
	if flushErr != nil {
		return nil, flushErr
	}

	// Fold all partial states into the first worker's map. Each group's
	// source buffers are drained into the surviving state.
	merged := r.partials[0]
	for _, partial := range r.partials[1:] {
		for group, state := range partial {
			target, ok := merged[group]
			if !ok {
				merged[group] = state
				continue
			}
			target.MergeFrom(state)
		}
	}

	results := make(map[string]int64, len(merged))
	for group, state := range merged {
		results[group] = state.Finalize()
	}

	logger := logctx.FromContext(r.ctx)
	logger.Info().
		Int64("rows", r.rowsIn).
		Int64("null_rows", r.dropped.Load()).
		Int64("intervals", r.stored.Load()).
		Int("groups", len(results)).
		Str("elapsed", humanfmt.Duration(time.Since(r.started))).
		Msg("aggregation complete")

	return results, nil
}

// Aggregate streams all rows of a reader through a runner and returns the
// per-group results.
func Aggregate(ctx context.Context, rd input.Reader, cfg Config) (map[string]int64, error) {
	r := NewRunner(ctx, cfg)
	for {
		row, err := rd.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Drain the pool before reporting the read error.
			_, _ = r.Finish()
			return nil, fmt.Errorf("read input: %w", err)
		}
		if err := r.Add(row); err != nil {
			_, _ = r.Finish()
			return nil, err
		}
	}
	return r.Finish()
}
