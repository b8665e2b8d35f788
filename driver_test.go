package datatable

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCSV(nrows int) []byte {
	var sb strings.Builder
	for i := 0; i < nrows; i++ {
		fmt.Fprintf(&sb, "%d,name-%d,%d.5\n", i, i, i)
	}
	return []byte(sb.String())
}

func TestParallelDriverSingleThread(t *testing.T) {
	t.Parallel()

	data := buildCSV(50)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 1, MeanLineLen: 10}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.RowsWritten)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, int64(50), store.GetNRows())
}

func TestParallelDriverSingleThreadMultiChunk(t *testing.T) {
	t.Parallel()

	// Large enough to force multiple chunks even with a single worker
	// (chunk count is independent of thread count; see ChunkPlanner.Plan).
	// Exercises the true-start path's live LastChunkEnd() re-seeding for
	// every chunk after the first, not just chunk 0.
	const nrows = 300_000
	data := buildCSV(nrows)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 1, MeanLineLen: 12}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.NThreadsUsed)
	assert.Greater(t, res.ChunksRead, 1, "large input should still split into more than one chunk")
	assert.Equal(t, int64(nrows), res.RowsWritten)
	assert.Equal(t, int64(nrows), store.GetNRows())
}

func TestParallelDriverMultiThread(t *testing.T) {
	t.Parallel()

	// Large enough to force multiple 256KiB+ chunks across 4 threads.
	const nrows = 300_000
	data := buildCSV(nrows)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 4, MeanLineLen: 12}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(nrows), res.RowsWritten)
	assert.Equal(t, int64(nrows), store.GetNRows())
	assert.Greater(t, res.ChunksRead, 1, "large input should split into more than one chunk")
}

func TestParallelDriverRespectsNRowsMax(t *testing.T) {
	t.Parallel()

	data := buildCSV(1000)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 4, MeanLineLen: 12, NRowsMax: 100}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, res.RowsWritten, int64(100))
}

func TestParallelDriverWithGenerousMemoryLimitSucceeds(t *testing.T) {
	t.Parallel()

	data := buildCSV(500)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 2, MeanLineLen: 10, MemoryLimitMB: 4096}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.RowsWritten)
	assert.Equal(t, StatusDone, res.Status)
}

func TestParallelDriverMemoryLimitDisabledByDefault(t *testing.T) {
	t.Parallel()

	data := buildCSV(500)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 2, MeanLineLen: 10}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	res, err := driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.RowsWritten)
}

func TestParallelDriverCancelledContext(t *testing.T) {
	t.Parallel()

	data := buildCSV(5000)
	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}, {Name: "score", Kind: KindReal}}
	store := NewArrowColumnStore(schema)

	cfg := ReaderConfig{SOF: 0, EOF: int64(len(data)), NThreads: 4, MeanLineLen: 12}
	factory := NewDelimitedParseContextFactory(data, ',')
	driver := NewParallelDriver(data, cfg, factory, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.Run(ctx)
	assert.Error(t, err)
}
