package datatable

// Planning constants, grounded in chunks.cc's determine_chunking_strategy:
// chunkSize starts at max(1000*meanLineLen, 256KiB).
const (
	minChunkBytes       = 1 << 18 // 256 KiB
	linesPerChunkTarget = 1000
)

// ChunkCoordinates is a half-open byte range [Start, End) over the input,
// plus flags recording whether each end is a known record boundary
// (TrueStart/TrueEnd) or a speculative guess. Only chunk 0's start and the
// last chunk's end are true from the outset; every other boundary starts
// as a guess and is corrected by reconciliation (see Committer).
type ChunkCoordinates struct {
	Start, End         int64
	TrueStart, TrueEnd bool
}

// ChunkPlan is the output of ChunkPlanner.Plan: how many chunks to cut the
// input into, how large each (non-final) chunk is, and how many worker
// threads to run.
type ChunkPlan struct {
	ChunkSize  int64
	ChunkCount int
	NThreads   int
}

// ChunkPlanner computes the chunking strategy and per-index tentative
// boundaries for a byte range, grounded in chunks.cc's
// ChunkedDataReader::determine_chunking_strategy and
// compute_chunk_boundaries.
type ChunkPlanner struct {
	inputStart, inputEnd int64
	meanLineLen          float64

	// AdjustBoundaries may widen or shrink a chunk's tentative coordinates
	// using parser-specific look-back/look-ahead state (e.g. a parser that
	// wants extra leading context to recover a quoted field). It must
	// never move a boundary that is already true. Defaults to identity.
	AdjustBoundaries func(c ChunkCoordinates) ChunkCoordinates
}

// NewChunkPlanner creates a planner for the range [inputStart, inputEnd)
// using meanLineLen (clamped to >= 1.0) as the expected record length.
func NewChunkPlanner(inputStart, inputEnd int64, meanLineLen float64) *ChunkPlanner {
	if meanLineLen < 1.0 {
		meanLineLen = 1.0
	}
	return &ChunkPlanner{inputStart: inputStart, inputEnd: inputEnd, meanLineLen: meanLineLen}
}

// Plan computes chunkSize, chunkCount, and the (possibly reduced) thread
// count for nthreads requested threads, per spec §3's ChunkPlan
// invariants:
//   - chunkCount >= 1
//   - chunkCount is a multiple of nthreads whenever there would otherwise
//     be at least nthreads chunks (load balance)
//   - chunkSize starts at max(1000*meanLineLen, 256KiB), then is
//     recomputed as inputSize/chunkCount
//   - if the input is too small to fill nthreads chunks, nthreads is
//     lowered to chunkCount and the caller is expected to log that change
func (p *ChunkPlanner) Plan(nthreads int) ChunkPlan {
	if nthreads < 1 {
		nthreads = 1
	}
	inputSize := p.inputEnd - p.inputStart
	if inputSize < 0 {
		inputSize = 0
	}

	size1000 := int64(linesPerChunkTarget * p.meanLineLen)
	chunkSize := max(size1000, minChunkBytes)

	chunkCount := int64(1)
	if chunkSize > 0 {
		chunkCount = max(inputSize/chunkSize, 1)
	}

	zThreads := int64(nthreads)
	if chunkCount > zThreads {
		// Round chunkCount up to a multiple of nthreads so work divides evenly.
		chunkCount = zThreads * (1 + (chunkCount-1)/zThreads)
	} else {
		nthreads = int(chunkCount)
	}

	if chunkCount > 0 {
		chunkSize = inputSize / chunkCount
	}

	return ChunkPlan{ChunkSize: chunkSize, ChunkCount: int(chunkCount), NThreads: nthreads}
}

// ComputeChunkBoundaries returns the tentative (speculative) coordinates
// for chunk i, given the plan and the current lastChunkEnd (the end of the
// most recently committed chunk). Only i==0 (or the single-thread case)
// gets a true start; only the last chunk gets a true end.
func (p *ChunkPlanner) ComputeChunkBoundaries(i int, plan ChunkPlan, lastChunkEnd int64) ChunkCoordinates {
	var c ChunkCoordinates

	isFirst := i == 0
	isLast := i == plan.ChunkCount-1

	if plan.NThreads == 1 || isFirst {
		c.Start = lastChunkEnd
		c.TrueStart = true
	} else {
		c.Start = p.inputStart + int64(i)*plan.ChunkSize
	}

	if isLast {
		c.End = p.inputEnd
		c.TrueEnd = true
	} else {
		c.End = c.Start + plan.ChunkSize
	}

	if p.AdjustBoundaries != nil {
		adjusted := p.AdjustBoundaries(c)
		// A true boundary may never be moved by the hook.
		if !c.TrueStart {
			c.Start = adjusted.Start
		}
		if !c.TrueEnd {
			c.End = adjusted.End
		}
	}

	return c
}

// WorkDoneAmount returns (lastChunkEnd - inputStart) / (inputEnd - inputStart),
// per spec §6.
func (p *ChunkPlanner) WorkDoneAmount(lastChunkEnd int64) float64 {
	total := p.inputEnd - p.inputStart
	if total <= 0 {
		return 1.0
	}
	done := lastChunkEnd - p.inputStart
	return float64(done) / float64(total)
}
