package datatable

import (
	"context"
	"log/slog"
	"strconv"
)

// ReaderConfig configures one parallel read of a byte range, per spec §3's
// driver state plus SPEC_FULL.md's ambient additions (logging, progress,
// explicit schema/delimiter overrides).
type ReaderConfig struct {
	// SOF and EOF bound the byte range to read, [SOF, EOF). Required.
	SOF, EOF int64

	// NThreads is the requested worker count; the driver may reduce it for
	// small inputs (see ChunkPlanner.Plan).
	NThreads int

	// MeanLineLen seeds the chunk size estimate; if zero, FileLoader's
	// sampling (or a conservative default) is used.
	MeanLineLen float64

	// NRowsMax caps the total rows committed; <= 0 means unbounded.
	NRowsMax int64

	// MemoryLimitMB, if > 0, makes the driver check process heap usage
	// between chunk commits (via MemoryLimit) and abort the read once
	// usage exceeds the limit. <= 0 disables the check entirely.
	MemoryLimitMB int64

	// Delimiter is the field separator byte for DelimitedParseContext.
	// Defaults to ',' when zero.
	Delimiter byte

	// Columns, if non-empty, is used as-is instead of running type
	// inference against a sample of the first chunk.
	Columns Schema

	// HasHeader reports whether the first row of the input is a header
	// row rather than data.
	HasHeader bool

	// ParseContextFactory, if set, overrides DelimitedParseContext.
	ParseContextFactory ParseContextFactory

	// ColumnStore, if set, overrides ArrowColumnStore as the destination.
	ColumnStore ColumnStore

	// Logger receives structured diagnostics; nil uses a discard logger.
	Logger *slog.Logger

	// Progress, if set, receives periodic completion callbacks (see
	// progressGate for when it actually fires).
	Progress ProgressFunc
}

func (c ReaderConfig) delimiter() byte {
	if c.Delimiter == 0 {
		return ','
	}
	return c.Delimiter
}

// ReadResult is what ReadAll returns on success.
type ReadResult struct {
	Store       ColumnStore
	Schema      Schema
	RowsWritten int64
	Driver      DriverResult
}

// Reader drives one parallel read of an in-memory byte range into a
// ColumnStore, per spec §2's ParallelDriver/Committer/ChunkPlanner
// collaboration.
type Reader struct {
	data   []byte
	cfg    ReaderConfig
	log    *slog.Logger
	schema Schema
}

// NewReader prepares a Reader over data using cfg. If cfg.EOF is zero, it
// defaults to len(data). If cfg.NThreads is zero, it defaults to 4. If
// cfg.Columns is empty, the schema is inferred from a sample of the first
// populated rows once reading starts.
func NewReader(data []byte, cfg ReaderConfig) (*Reader, error) {
	if cfg.EOF == 0 {
		cfg.EOF = int64(len(data))
	}
	if cfg.EOF < cfg.SOF {
		return nil, NewErrorContext("new reader").WithDetails("EOF before SOF").Error(nil)
	}
	if cfg.EOF == cfg.SOF {
		return nil, ErrEmptyInput
	}
	if cfg.NThreads <= 0 {
		cfg.NThreads = 4
	}
	if cfg.MeanLineLen <= 0 {
		cfg.MeanLineLen = estimateMeanLineLen(data, cfg.SOF, cfg.EOF)
	}

	return &Reader{
		data:   data,
		cfg:    cfg,
		log:    defaultLogger(cfg.Logger),
		schema: cfg.Columns,
	}, nil
}

// ReadAll runs the parallel read-and-commit loop to completion and
// returns the populated ColumnStore along with its schema.
func (r *Reader) ReadAll(ctx context.Context) (ReadResult, error) {
	dataStart, err := r.sniffHeaderAndSchema()
	if err != nil {
		return ReadResult{}, err
	}

	store := r.cfg.ColumnStore
	if store == nil {
		store = NewArrowColumnStore(r.schema)
	}

	factory := r.cfg.ParseContextFactory
	if factory == nil {
		factory = NewDelimitedParseContextFactory(r.data, r.cfg.delimiter())
	}

	readCfg := r.cfg
	readCfg.SOF = dataStart

	driver := NewParallelDriver(r.data, readCfg, factory, store, r.log, r.cfg.Progress)
	dres, err := driver.Run(ctx)

	result := ReadResult{Store: store, Schema: r.schema, RowsWritten: dres.RowsWritten, Driver: dres}
	return result, err
}

// sniffHeaderAndSchema reads the first line (header, if configured) and a
// small sample of subsequent rows using a throwaway ParseContext, purely
// to infer a Schema when the caller didn't supply one. It returns the
// byte offset where chunked parallel reading should actually begin.
func (r *Reader) sniffHeaderAndSchema() (int64, error) {
	sniffer := NewDelimitedParseContext(r.data, r.cfg.delimiter())
	sampleEnd := min(r.cfg.EOF, r.cfg.SOF+sniffSampleBytes)

	actual, err := sniffer.ReadChunk(ChunkCoordinates{Start: r.cfg.SOF, End: sampleEnd, TrueStart: true})
	if err != nil {
		return r.cfg.SOF, err
	}

	rows := sniffer.Rows()
	dataStart := r.cfg.SOF
	var header Header

	if r.cfg.HasHeader && len(rows) > 0 {
		header = newHeader(rows[0])
		rows = rows[1:]
		dataStart = headerByteLen(r.data, r.cfg.SOF, actual.End)
	}

	if len(r.schema) == 0 {
		names := header
		if len(names) == 0 && len(rows) > 0 {
			names = make(Header, len(rows[0]))
			for i := range names {
				names[i] = defaultColumnName(i)
			}
		}
		r.schema = inferSchema(names, rows)
	}
	if err := validateColumnNames(r.schema.Names()); err != nil {
		return r.cfg.SOF, err
	}
	if len(r.schema) == 0 {
		return r.cfg.SOF, ErrNoColumns
	}

	return dataStart, nil
}

const sniffSampleBytes = 64 * 1024

func defaultColumnName(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if i < len(letters) {
		return string(letters[i])
	}
	return "col" + strconv.Itoa(i)
}

// headerByteLen finds where the header row ends by locating its
// terminating newline.
func headerByteLen(data []byte, start, end int64) int64 {
	for i := start; i < end; i++ {
		if data[i] == '\n' {
			return i + 1
		}
	}
	return end
}

// estimateMeanLineLen samples up to the first 64KiB of the range to seed the
// chunk planner, grounded in chunks.cc's meanLineLen parameter (normally
// computed by the caller's dialect-detection pass, here approximated
// directly since this reader has no separate sniff phase of its own).
func estimateMeanLineLen(data []byte, start, end int64) float64 {
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	sampleEnd := min(end, start+sniffSampleBytes)
	lines, bytes := 0, int64(0)
	for i := start; i < sampleEnd; i++ {
		bytes++
		if data[i] == '\n' {
			lines++
		}
	}
	if lines == 0 {
		return 1.0
	}
	return float64(bytes) / float64(lines)
}
