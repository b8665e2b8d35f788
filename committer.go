package datatable

import "sync"

// CommitResult reports what a single Committer.Commit call did, for the
// driver's progress/status bookkeeping.
type CommitResult struct {
	LastChunkEnd int64
	RowsWritten  int64
	Clipped      bool // true if rows were truncated to respect nrowsMax
	Done         bool // true if nrowsMax was reached and no further chunks should start
}

// Committer serializes chunk results into a ColumnStore in input order,
// grounded in chunks.cc's order_chunk / realloc_output_columns running
// inside the #pragma omp ordered section. The driver guarantees Commit is
// only ever called by one goroutine at a time, and always in increasing
// chunkIndex order (see Driver's commit gate) — Committer itself holds no
// ordering logic beyond the two-pass boundary reconciliation.
type Committer struct {
	mu sync.Mutex

	store       ColumnStore
	reallocLock *ReallocLock
	chunkCount  int
	nrowsMax    int64 // <= 0 means unbounded

	lastChunkEnd   int64
	nrowsWritten   int64
	nrowsAllocated int64
}

// NewCommitter creates a Committer writing into store, starting from
// inputStart (the chunk-0 true start), with store already sized to
// nrowsAllocated rows and a hard cap of nrowsMax rows (<=0 for unbounded).
func NewCommitter(store ColumnStore, lock *ReallocLock, chunkCount int, inputStart, nrowsAllocated, nrowsMax int64) *Committer {
	return &Committer{
		store:          store,
		reallocLock:    lock,
		chunkCount:     chunkCount,
		nrowsMax:       nrowsMax,
		lastChunkEnd:   inputStart,
		nrowsAllocated: nrowsAllocated,
	}
}

// LastChunkEnd returns the byte offset immediately past the last
// committed chunk, used by ChunkPlanner.WorkDoneAmount for progress and
// as the true start for the next true-start chunk.
func (c *Committer) LastChunkEnd() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastChunkEnd
}

// NRowsWritten returns how many rows have been committed so far.
func (c *Committer) NRowsWritten() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nrowsWritten
}

// Commit reconciles actual against the committer's view of the stream
// (reading the chunk again from ctx if actual.Start doesn't line up with
// lastChunkEnd), grows the backing ColumnStore if needed, and pushes the
// chunk's buffered rows in order.
//
// chunkIndex must be this chunk's position in the overall chunk sequence
// (needed for realloc's forward projection); ctx is the same ParseContext
// that produced actual via ReadChunk(expected).
func (c *Committer) Commit(chunkIndex int, expected, actual ChunkCoordinates, ctx ParseContext) (CommitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reconciled, err := c.reconcile(expected, actual, ctx)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.ChunkIndex = chunkIndex
		}
		return CommitResult{}, err
	}

	row0 := c.nrowsWritten
	used := int64(ctx.UsedRows())
	nrowsNew := c.nrowsWritten + used
	var clipped, done bool

	if nrowsNew > c.nrowsAllocated {
		switch {
		case c.nrowsMax > 0 && c.nrowsAllocated >= c.nrowsMax:
			used = c.nrowsMax - c.nrowsWritten
			if used < 0 {
				used = 0
			}
			ctx.TruncateRows(int(used))
			nrowsNew = c.nrowsMax
			clipped = true
		default:
			newCap, wasClipped, err := GrowColumnStore(c.reallocLock, c.store, chunkIndex, c.chunkCount, c.nrowsAllocated, nrowsNew, c.nrowsMax)
			if err != nil {
				return CommitResult{}, NewErrorContext("grow column store").WithChunk(chunkIndex).Error(err)
			}
			c.nrowsAllocated = newCap
			if wasClipped {
				used = newCap - c.nrowsWritten
				if used < 0 {
					used = 0
				}
				ctx.TruncateRows(int(used))
				nrowsNew = newCap
				clipped = true
			}
		}
	}

	if err := ctx.PushBuffers(c.store, row0); err != nil {
		return CommitResult{}, err
	}
	ctx.OrderBuffer()

	c.nrowsWritten = nrowsNew
	c.lastChunkEnd = reconciled.End
	if c.nrowsMax > 0 && c.nrowsWritten >= c.nrowsMax {
		done = true
	}

	return CommitResult{LastChunkEnd: c.lastChunkEnd, RowsWritten: nrowsNew, Clipped: clipped, Done: done}, nil
}

// reconcile implements chunks.cc's order_chunk: if the chunk's actual
// start doesn't abut lastChunkEnd exactly, the committer forces a true
// start at lastChunkEnd and asks the ParseContext to read again. Per
// SPEC_FULL.md §7 this is bounded to a single retry (two total reads); if
// the second attempt still doesn't land on lastChunkEnd, the input is
// treated as genuinely inconsistent rather than retried indefinitely.
func (c *Committer) reconcile(expected, actual ChunkCoordinates, ctx ParseContext) (ChunkCoordinates, error) {
	for attempt := 0; attempt < 1; attempt++ {
		if actual.Start == c.lastChunkEnd && actual.End >= c.lastChunkEnd {
			return actual, nil
		}

		retry := ChunkCoordinates{Start: c.lastChunkEnd, End: expected.End, TrueStart: true, TrueEnd: expected.TrueEnd}
		next, err := ctx.ReadChunk(retry)
		if err != nil {
			return ChunkCoordinates{}, err
		}
		expected, actual = retry, next
	}

	if actual.Start == c.lastChunkEnd && actual.End >= c.lastChunkEnd {
		return actual, nil
	}
	return ChunkCoordinates{}, &ParseError{Offset: actual.Start, Err: ErrInconsistentBoundary}
}
