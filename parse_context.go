package datatable

// ParseContext is the per-worker scratch space and byte-level parser
// contract described in spec §4.2. The core never implements field-level
// parsing itself; it only drives this interface. DelimitedParseContext is
// the default implementation for comma/tab-delimited records.
//
// A single ParseContext instance is created once per worker goroutine and
// reused across every chunk assigned to that worker: ReadChunk must reset
// its internal write cursor to zero at entry so it is safe to call again
// with different coordinates (see spec §9's re-entrancy note).
type ParseContext interface {
	// ReadChunk parses rows starting from expected.Start. If
	// expected.TrueStart, parsing starts exactly there; otherwise the
	// parser must scan forward from expected.Start for the next
	// syntactically valid record boundary and report it as actual.Start.
	//
	// Parsing stops after the first complete record whose end lies at or
	// past expected.End (or at the input's end if sooner); actual.End is
	// set to that record's end, and actual.TrueEnd is set when
	// expected.TrueEnd was true or the stop boundary was otherwise
	// structurally confirmed.
	//
	// ReadChunk must be idempotent with respect to anything outside its
	// own buffers: calling it again with a different `expected` discards
	// whatever this call had buffered.
	ReadChunk(expected ChunkCoordinates) (actual ChunkCoordinates, err error)

	// UsedRows returns how many rows the most recent ReadChunk produced.
	UsedRows() int

	// TruncateRows discards all but the first n buffered rows. Used by the
	// Committer when the row cap is reached mid-chunk.
	TruncateRows(n int)

	// PushBuffers copies the buffered rows into the ColumnStore starting
	// at row0 (set by the Committer before calling this). Must be
	// callable with zero rows.
	PushBuffers(store ColumnStore, row0 int64) error

	// OrderBuffer is a post-ordering hook invoked once the commit for this
	// chunk is finalized, for any per-chunk bookkeeping that depends on
	// commit order (e.g. assigning contiguous auxiliary offsets). The
	// default DelimitedParseContext has nothing to do here.
	OrderBuffer()
}

// ParseContextFactory returns a fresh ParseContext for one worker. It must
// return a distinct instance on every call: ParseContext instances are
// never shared across worker goroutines.
type ParseContextFactory func() ParseContext
