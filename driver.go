package datatable

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ParallelDriver runs the full chunked-read-and-commit loop described in
// spec §4.5 / §5: a pool of worker goroutines read chunks out of order
// (dynamic scheduling, grounded in chunks.cc's `#pragma omp for ordered
// schedule(dynamic)`), while commits into the ColumnStore happen strictly
// in chunk order (`#pragma omp ordered`), implemented here with an
// errgroup worker pool plus a condition-variable commit gate, following
// the errgroup.WithContext pattern in gastrolog's index.BuildHelper.
type ParallelDriver struct {
	data     []byte
	cfg      ReaderConfig
	factory  ParseContextFactory
	planner  *ChunkPlanner
	store    ColumnStore
	latch    *ExceptionLatch
	log      *slog.Logger
	progress ProgressFunc
}

// DriverResult is what Run returns once every chunk has been read and
// committed (or the read was aborted).
type DriverResult struct {
	RowsWritten  int64
	ChunksRead   int
	NThreadsUsed int
	Clipped      bool
	Status       Status
}

func NewParallelDriver(data []byte, cfg ReaderConfig, factory ParseContextFactory, store ColumnStore, logger *slog.Logger, progress ProgressFunc) *ParallelDriver {
	return &ParallelDriver{
		data:     data,
		cfg:      cfg,
		factory:  factory,
		planner:  NewChunkPlanner(cfg.SOF, cfg.EOF, cfg.MeanLineLen),
		store:    store,
		latch:    &ExceptionLatch{},
		log:      defaultLogger(logger),
		progress: progress,
	}
}

// Run executes the parallel read-and-commit loop to completion.
func (d *ParallelDriver) Run(ctx context.Context) (DriverResult, error) {
	plan := d.planner.Plan(d.cfg.NThreads)
	if plan.NThreads != d.cfg.NThreads {
		d.log.Debug("reduced worker count for small input", "requested", d.cfg.NThreads, "actual", plan.NThreads)
	}

	nrowsMax := d.cfg.NRowsMax
	initialAlloc := d.store.GetNRows()
	committer := NewCommitter(d.store, &ReallocLock{}, plan.ChunkCount, d.cfg.SOF, initialAlloc, nrowsMax)

	gate := &commitGate{}
	var nextClaim atomic.Int64
	var doneEarly atomic.Bool
	gateNow := time.Now()
	pg := newProgressGate(d.progress, d.cfg.EOF-d.cfg.SOF, gateNow)

	var memLimit *MemoryLimit
	if d.cfg.MemoryLimitMB > 0 {
		memLimit = NewMemoryLimit(d.cfg.MemoryLimitMB)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < plan.NThreads; w++ {
		g.Go(func() error {
			return d.worker(gctx, plan, committer, gate, &nextClaim, &doneEarly, pg, memLimit)
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		d.latch.Set(runErr)
	}

	finalRows := committer.NRowsWritten()
	if err := d.store.SetNRows(finalRows); err != nil {
		d.latch.Set(err)
	}

	status := StatusDone
	if err := d.latch.Err(); err != nil {
		status = StatusErrored
		if ctx.Err() != nil {
			status = StatusInterrupted
		}
	}
	pg.reportFinal(d.planner.WorkDoneAmount(committer.LastChunkEnd()), status)

	result := DriverResult{
		RowsWritten:  finalRows,
		ChunksRead:   plan.ChunkCount,
		NThreadsUsed: plan.NThreads,
		Clipped:      doneEarly.Load(),
		Status:       status,
	}
	return result, d.latch.Err()
}

// commitGate enforces that commits happen in strictly increasing chunk
// index order, regardless of the order in which workers finish reading.
type commitGate struct {
	mu         sync.Mutex
	cond       *sync.Cond
	nextCommit int
}

func (g *commitGate) waitTurn(i int) {
	g.mu.Lock()
	if g.cond == nil {
		g.cond = sync.NewCond(&g.mu)
	}
	for g.nextCommit != i {
		g.cond.Wait()
	}
}

func (g *commitGate) advance() {
	g.nextCommit++
	g.cond.Broadcast()
	g.mu.Unlock()
}

// worker claims chunk indices dynamically from the shared counter, reads
// each with its own long-lived ParseContext, then waits its turn to
// commit. A worker never reads its next claimed chunk until its previous
// one has been committed, since the ParseContext's buffers are only
// valid until PushBuffers drains them.
func (d *ParallelDriver) worker(ctx context.Context, plan ChunkPlan, committer *Committer, gate *commitGate, nextClaim *atomic.Int64, doneEarly *atomic.Bool, pg *progressGate, memLimit *MemoryLimit) error {
	pctx := d.factory()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		i := int(nextClaim.Add(1)) - 1
		if i >= plan.ChunkCount {
			return nil
		}

		if memLimit != nil {
			switch memLimit.CheckMemoryUsage() {
			case MemoryStatusExceeded:
				d.latch.Set(memLimit.CreateMemoryError("chunk read"))
			case MemoryStatusWarning:
				d.log.Warn("approaching memory limit", "chunk", i)
			}
		}

		stop := d.latch.Tripped() || doneEarly.Load()

		var expected, actual ChunkCoordinates
		var readErr error
		if !stop {
			// committer.LastChunkEnd() is live, not the static SOF: for the
			// single-thread/true-start path (chunk.go's isFirst || NThreads
			// == 1 branch), every chunk's start must be the previous
			// chunk's actual committed end, not the input's start. For the
			// multi-thread speculative path this is equivalent to SOF
			// anyway, since only chunk 0 ever reads this value and nothing
			// commits ahead of chunk 0.
			expected = d.planner.ComputeChunkBoundaries(i, plan, committer.LastChunkEnd())
			actual, readErr = pctx.ReadChunk(expected)
			if pe, ok := readErr.(*ParseError); ok {
				pe.ChunkIndex = i
			}
			if readErr != nil {
				d.latch.Set(readErr)
			}
		} else {
			pctx.TruncateRows(0)
		}

		gate.waitTurn(i)
		if !stop && readErr == nil {
			res, err := committer.Commit(i, expected, actual, pctx)
			if err != nil {
				d.latch.Set(err)
			} else {
				pg.maybeReport(d.planner.WorkDoneAmount(res.LastChunkEnd), time.Now())
				if res.Done {
					doneEarly.Store(true)
				}
			}
		}
		gate.advance()

		if d.latch.Tripped() || doneEarly.Load() {
			return d.latch.Err()
		}
	}
}
