package datatable

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, grounded in the teacher's errors.go pattern of a flat
// set of package-level errors that callers can match with errors.Is.
var (
	// errDuplicateColumnName is returned when a header contains duplicate
	// column names.
	errDuplicateColumnName = errors.New("datatable: duplicate column name")

	// ErrEmptyInput indicates the byte range contains no records.
	ErrEmptyInput = errors.New("datatable: empty input range")

	// ErrInconsistentBoundary is the fatal assertion of spec §4.3 step 2:
	// reconciliation failed even after forcing a true start at the
	// predecessor chunk's end. This indicates either a parser that cannot
	// honor a true start, or input that is corrupt past the point of
	// recovery. It is always wrapped with the chunk index that failed.
	ErrInconsistentBoundary = errors.New("datatable: chunk boundary could not be reconciled")

	// ErrInterrupted indicates the caller's context was cancelled while
	// workers were in flight.
	ErrInterrupted = errors.New("datatable: read interrupted")

	// ErrNoColumns indicates a ColumnStore or Schema with zero columns was
	// used where at least one column is required.
	ErrNoColumns = errors.New("datatable: no columns")

	// ErrUnsupportedCompression indicates FileLoader does not recognize the
	// file's compression extension.
	ErrUnsupportedCompression = errors.New("datatable: unsupported compression")

	// ErrParse is the sentinel every *ParseError matches via errors.Is,
	// for callers that want to branch on "some chunk failed to parse"
	// without inspecting ParseError's fields.
	ErrParse = errors.New("datatable: parse error")
)

// ParseError is returned by a ParseContext when its chunk is unrecoverably
// malformed, per spec §7. It is captured by the ExceptionLatch and
// re-raised after the parallel loop, never allowed to propagate through a
// worker goroutine directly.
type ParseError struct {
	ChunkIndex int
	Offset     int64
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("datatable: parse error in chunk %d at offset %d: %v", e.ChunkIndex, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is the ErrParse sentinel, so callers can
// write errors.Is(err, ErrParse) instead of a type assertion.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ErrorContext adds operation/location context to an error, grounded in
// the teacher's ErrorContext type in errors.go.
type ErrorContext struct {
	Operation string
	ChunkIdx  int
	Details   string
}

// NewErrorContext creates a new ErrorContext for the given operation.
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{Operation: operation, ChunkIdx: -1}
}

// WithChunk attaches a chunk index to the error context.
func (ec *ErrorContext) WithChunk(i int) *ErrorContext {
	ec.ChunkIdx = i
	return ec
}

// WithDetails attaches free-form detail text to the error context.
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error wraps baseErr with the accumulated context.
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("datatable: %s failed", ec.Operation)}
	if ec.ChunkIdx >= 0 {
		parts = append(parts, fmt.Sprintf("chunk: %d", ec.ChunkIdx))
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}
	ctx := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", ctx, baseErr)
	}
	return errors.New(ctx)
}
