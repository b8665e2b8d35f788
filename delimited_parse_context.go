package datatable

import (
	"bytes"
	"fmt"
)

// DelimitedParseContext is the default ParseContext: an RFC 4180-ish
// quote-aware scanner over comma/tab/pipe-delimited text. The dialect
// (delimiter, quote char) mirrors what the teacher configures its
// encoding/csv reader with; unlike encoding/csv, this scanner must be able
// to resynchronize on an arbitrary mid-file byte offset, since chunk
// boundaries other than chunk 0's start are guesses (spec §4.2), so record
// splitting is hand-rolled rather than delegated to encoding/csv.
type DelimitedParseContext struct {
	data      []byte
	delimiter byte
	quote     byte

	// pool recycles each record's field slice between ReadChunk calls:
	// since one DelimitedParseContext is reused for every chunk a worker
	// claims, its row buffers would otherwise be reallocated from
	// scratch on every call.
	pool *MemoryPool

	rows    [][]string
	rowEnds []int64 // byte offset (absolute) just past each buffered row
}

// NewDelimitedParseContext returns a ParseContext over data using
// delimiter as the field separator and '"' as the quote character.
func NewDelimitedParseContext(data []byte, delimiter byte) *DelimitedParseContext {
	return &DelimitedParseContext{data: data, delimiter: delimiter, quote: '"', pool: NewMemoryPool(defaultMemoryPoolSize)}
}

// NewDelimitedParseContextFactory returns a ParseContextFactory producing
// independent DelimitedParseContext instances over the same backing data,
// one per worker goroutine.
func NewDelimitedParseContextFactory(data []byte, delimiter byte) ParseContextFactory {
	return func() ParseContext {
		return NewDelimitedParseContext(data, delimiter)
	}
}

func (d *DelimitedParseContext) ReadChunk(expected ChunkCoordinates) (ChunkCoordinates, error) {
	for _, row := range d.rows {
		d.pool.PutStringSlice(row)
	}
	d.rows = d.rows[:0]
	d.rowEnds = d.rowEnds[:0]

	start := expected.Start
	if !expected.TrueStart {
		var ok bool
		start, ok = d.resyncForward(start)
		if !ok {
			return ChunkCoordinates{Start: start, End: start, TrueStart: true, TrueEnd: true}, nil
		}
	}

	actual := ChunkCoordinates{Start: start, TrueStart: true}
	pos := start

	for pos < int64(len(d.data)) {
		row, next, err := d.scanRecord(pos)
		if err != nil {
			return actual, &ParseError{Offset: pos, Err: err}
		}
		d.rows = append(d.rows, row)
		d.rowEnds = append(d.rowEnds, next)
		pos = next

		if pos >= expected.End {
			break
		}
	}

	actual.End = pos
	actual.TrueEnd = expected.TrueEnd || pos >= int64(len(d.data))
	return actual, nil
}

// resyncForward scans forward from pos looking for the start of the next
// syntactically valid record: the byte immediately following a newline
// that is not embedded in a quoted field. Returns false if no record
// boundary precedes the end of the input.
func (d *DelimitedParseContext) resyncForward(pos int64) (int64, bool) {
	n := int64(len(d.data))
	if pos >= n {
		return n, false
	}

	// The byte at pos might land inside a field; the first newline at or
	// after pos that is not inside quotes marks the end of a (possibly
	// partial) record. The record's start is the byte right after that.
	idx := pos
	for idx < n {
		nl := bytes.IndexByte(d.data[idx:], '\n')
		if nl < 0 {
			return n, false
		}
		candidate := idx + int64(nl) + 1
		if d.quoteBalanced(pos, candidate) {
			return candidate, candidate < n
		}
		idx = idx + int64(nl) + 1
	}
	return n, false
}

// quoteBalanced reports whether the quotes in data[from:to) are balanced,
// i.e. `to` does not land inside an open quoted field that started before
// `from`. Used conservatively during resync: it only inspects the
// candidate span itself, which is correct as long as the true record
// start lies at or after `from` (guaranteed since `from` is itself a
// guessed chunk start, never inside a quote that opened earlier in the
// same record run we're about to discard).
func (d *DelimitedParseContext) quoteBalanced(from, to int64) bool {
	count := 0
	for i := from; i < to; i++ {
		if d.data[i] == d.quote {
			count++
		}
	}
	return count%2 == 0
}

// scanRecord parses one CSV record starting at pos, returning the parsed
// fields and the offset immediately past the record's terminating
// newline (or end of input).
func (d *DelimitedParseContext) scanRecord(pos int64) ([]string, int64, error) {
	n := int64(len(d.data))
	fields := d.pool.GetStringSlice()
	var field bytes.Buffer
	inQuotes := false

	i := pos
	for i < n {
		c := d.data[i]

		if inQuotes {
			if c == d.quote {
				if i+1 < n && d.data[i+1] == d.quote {
					field.WriteByte(d.quote)
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}

		switch {
		case c == d.quote && field.Len() == 0:
			inQuotes = true
			i++
		case c == d.delimiter:
			fields = append(fields, field.String())
			field.Reset()
			i++
		case c == '\r':
			i++
		case c == '\n':
			fields = append(fields, field.String())
			return fields, i + 1, nil
		default:
			field.WriteByte(c)
			i++
		}
	}

	if inQuotes {
		return nil, pos, fmt.Errorf("unterminated quoted field starting near offset %d", pos)
	}
	fields = append(fields, field.String())
	return fields, n, nil
}

func (d *DelimitedParseContext) UsedRows() int { return len(d.rows) }

func (d *DelimitedParseContext) TruncateRows(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	d.rows = d.rows[:n]
	d.rowEnds = d.rowEnds[:n]
}

func (d *DelimitedParseContext) PushBuffers(store ColumnStore, row0 int64) error {
	for ri, row := range d.rows {
		for ci, val := range row {
			w := store.Writer(ci)
			if w == nil {
				continue
			}
			if val == "" {
				if err := w.AppendNull(); err != nil {
					return &ParseError{Offset: d.rowEnds[ri], Err: err}
				}
				continue
			}
			if err := w.AppendString(val); err != nil {
				return &ParseError{Offset: d.rowEnds[ri], Err: err}
			}
		}
	}
	_ = row0
	return nil
}

func (d *DelimitedParseContext) OrderBuffer() {}

// Rows exposes the most recently buffered records, for callers (e.g. the
// Reader's header/schema sampling step) that need to inspect raw
// parsed data rather than push it to a ColumnStore.
func (d *DelimitedParseContext) Rows() []Record {
	out := make([]Record, len(d.rows))
	for i, r := range d.rows {
		out[i] = newRecord(r)
	}
	return out
}
