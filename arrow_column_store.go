package datatable

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ArrowColumnStore is the default ColumnStore, grounded in the teacher's
// use of github.com/apache/arrow/go/v17/arrow/array builders in stream.go
// (there used to read Parquet into Arrow tables; here used the other
// direction, as the append-only destination committed rows land in).
//
// Arrow builders don't support resizing capacity downward or writing at
// an arbitrary row offset, so SetNRows only ever grows reserved capacity
// (via Reserve); actual column length only grows through appends. This
// matches the spec's invariant that growth never disturbs already
// appended values.
type ArrowColumnStore struct {
	alloc   memory.Allocator
	schema  Schema
	writers []*arrowColumnWriter
}

// NewArrowColumnStore creates a column store with one typed builder per
// entry in schema.
func NewArrowColumnStore(schema Schema) *ArrowColumnStore {
	alloc := memory.NewGoAllocator()
	s := &ArrowColumnStore{alloc: alloc, schema: schema, writers: make([]*arrowColumnWriter, len(schema))}
	for i, col := range schema {
		s.writers[i] = newArrowColumnWriter(alloc, col.Kind)
	}
	return s
}

func (s *ArrowColumnStore) SetNRows(n int64) error {
	if n < 0 {
		return fmt.Errorf("datatable: negative row count %d", n)
	}
	for _, w := range s.writers {
		w.builder.Reserve(int(n))
	}
	return nil
}

func (s *ArrowColumnStore) GetNRows() int64 {
	if len(s.writers) == 0 {
		return 0
	}
	var longest int64
	for _, w := range s.writers {
		if n := int64(w.builder.Len()); n > longest {
			longest = n
		}
	}
	return longest
}

func (s *ArrowColumnStore) Writer(i int) ColumnWriter {
	if i < 0 || i >= len(s.writers) {
		return nil
	}
	return s.writers[i]
}

// Columns returns the finished, immutable Arrow arrays, one per schema
// column. Calling this releases the builders; the store must not be
// written to afterward.
func (s *ArrowColumnStore) Columns() []arrowColumn {
	out := make([]arrowColumn, len(s.writers))
	for i, w := range s.writers {
		out[i] = arrowColumn{Name: s.schema[i].Name, Kind: s.schema[i].Kind, Array: w.builder.NewArray()}
	}
	return out
}

// arrowColumn pairs a finished Arrow array with the column metadata that
// produced it, for SQLiteSink and other downstream consumers.
type arrowColumn struct {
	Name  string
	Kind  Kind
	Array arrow.Array
}

type arrowColumnWriter struct {
	kind    Kind
	builder array.Builder
}

func newArrowColumnWriter(alloc memory.Allocator, kind Kind) *arrowColumnWriter {
	var b array.Builder
	switch kind {
	case KindInteger:
		b = array.NewInt64Builder(alloc)
	case KindReal:
		b = array.NewFloat64Builder(alloc)
	case KindDatetime:
		b = array.NewStringBuilder(alloc)
	default:
		b = array.NewStringBuilder(alloc)
	}
	return &arrowColumnWriter{kind: kind, builder: b}
}

func (w *arrowColumnWriter) Kind() Kind { return w.kind }

func (w *arrowColumnWriter) AppendString(v string) error {
	switch b := w.builder.(type) {
	case *array.StringBuilder:
		b.Append(v)
	case *array.Int64Builder:
		n, err := parseInt64Strict(v)
		if err != nil {
			return &ParseError{Err: fmt.Errorf("column is INTEGER, got %q: %w", v, err)}
		}
		b.Append(n)
	case *array.Float64Builder:
		f, err := parseFloat64Strict(v)
		if err != nil {
			return &ParseError{Err: fmt.Errorf("column is REAL, got %q: %w", v, err)}
		}
		b.Append(f)
	default:
		return fmt.Errorf("datatable: unsupported builder type %T", b)
	}
	return nil
}

func (w *arrowColumnWriter) AppendNull() error {
	w.builder.AppendNull()
	return nil
}
