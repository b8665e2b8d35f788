package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelimitedParseContextReadChunkBasic(t *testing.T) {
	t.Parallel()

	data := []byte("1,a\n2,b\n3,c\n")
	ctx := NewDelimitedParseContext(data, ',')

	actual, err := ctx.ReadChunk(ChunkCoordinates{Start: 0, End: int64(len(data)), TrueStart: true, TrueEnd: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), actual.Start)
	assert.Equal(t, int64(len(data)), actual.End)
	assert.Equal(t, 3, ctx.UsedRows())

	rows := ctx.Rows()
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Equal(newRecord([]string{"1", "a"})))
	assert.True(t, rows[2].Equal(newRecord([]string{"3", "c"})))
}

func TestDelimitedParseContextQuotedFields(t *testing.T) {
	t.Parallel()

	data := []byte(`1,"hello, world"` + "\n" + `2,"with ""quotes"""` + "\n")
	ctx := NewDelimitedParseContext(data, ',')

	_, err := ctx.ReadChunk(ChunkCoordinates{Start: 0, End: int64(len(data)), TrueStart: true, TrueEnd: true})
	require.NoError(t, err)

	rows := ctx.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "hello, world", rows[0][1])
	assert.Equal(t, `with "quotes"`, rows[1][1])
}

func TestDelimitedParseContextStopsAtExpectedEnd(t *testing.T) {
	t.Parallel()

	data := []byte("1,a\n2,b\n3,c\n4,d\n")
	ctx := NewDelimitedParseContext(data, ',')

	// Expected end lands mid-record; the scanner should read through the
	// full record that straddles it, not stop early.
	actual, err := ctx.ReadChunk(ChunkCoordinates{Start: 0, End: 5, TrueStart: true})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, actual.End, int64(5))
	assert.False(t, actual.TrueEnd)
}

func TestDelimitedParseContextResyncForward(t *testing.T) {
	t.Parallel()

	data := []byte("1,a\n2,b\n3,c\n")
	ctx := NewDelimitedParseContext(data, ',')

	// Guessed start lands mid-record (offset 5 is inside "2,b\n"); resync
	// should skip ahead to the next full record ("3,c\n").
	actual, err := ctx.ReadChunk(ChunkCoordinates{Start: 5, End: int64(len(data)), TrueStart: false, TrueEnd: true})
	require.NoError(t, err)
	assert.Equal(t, int64(8), actual.Start)
	assert.True(t, actual.TrueStart)

	rows := ctx.Rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Equal(newRecord([]string{"3", "c"})))
}

func TestDelimitedParseContextTruncateRows(t *testing.T) {
	t.Parallel()

	data := []byte("1,a\n2,b\n3,c\n")
	ctx := NewDelimitedParseContext(data, ',')
	_, err := ctx.ReadChunk(ChunkCoordinates{Start: 0, End: int64(len(data)), TrueStart: true, TrueEnd: true})
	require.NoError(t, err)

	ctx.TruncateRows(1)
	assert.Equal(t, 1, ctx.UsedRows())
}

func TestDelimitedParseContextPushBuffers(t *testing.T) {
	t.Parallel()

	data := []byte("1,alice\n2,bob\n")
	ctx := NewDelimitedParseContext(data, ',')
	_, err := ctx.ReadChunk(ChunkCoordinates{Start: 0, End: int64(len(data)), TrueStart: true, TrueEnd: true})
	require.NoError(t, err)

	schema := Schema{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}}
	store := NewArrowColumnStore(schema)
	require.NoError(t, store.SetNRows(2))

	require.NoError(t, ctx.PushBuffers(store, 0))
	assert.Equal(t, int64(2), store.GetNRows())
}
