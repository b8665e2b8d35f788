package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMemoryPool(t *testing.T) {
	t.Parallel()

	t.Run("default max size", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(0)
		assert.Equal(t, 1024*1024, pool.maxSize)
	})

	t.Run("custom max size", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(512 * 1024)
		assert.Equal(t, 512*1024, pool.maxSize)
	})
}

func TestMemoryPoolStringSlice(t *testing.T) {
	t.Parallel()
	pool := NewMemoryPool(1024 * 1024)

	fields := pool.GetStringSlice()
	assert.Len(t, fields, 0)

	fields = append(fields, "a", "b")
	pool.PutStringSlice(fields)

	fields2 := pool.GetStringSlice()
	assert.Len(t, fields2, 0)
}

func TestMemoryPoolRejectsOversizedStringSlice(t *testing.T) {
	t.Parallel()
	pool := NewMemoryPool(64) // maxSize/averageStringSizeFactor == 2

	large := make([]string, 0, 10)
	pool.PutStringSlice(large) // should be silently dropped, not pooled

	fields := pool.GetStringSlice()
	assert.LessOrEqual(t, cap(fields), 10)
}

func TestNewMemoryLimit(t *testing.T) {
	t.Parallel()

	t.Run("default when non-positive", func(t *testing.T) {
		t.Parallel()
		limit := NewMemoryLimit(0)
		assert.Equal(t, int64(defaultMemoryLimit), limit.maxMemoryMB)
	})

	t.Run("clamps unreasonable upper bound", func(t *testing.T) {
		t.Parallel()
		limit := NewMemoryLimit(maxReasonableMemoryLimit * 2)
		assert.Equal(t, int64(maxReasonableMemoryLimit), limit.maxMemoryMB)
	})
}

func TestMemoryLimitCheckMemoryUsageWithinLimit(t *testing.T) {
	t.Parallel()

	// The test process's own heap is a tiny fraction of a 64GB ceiling.
	limit := NewMemoryLimit(maxReasonableMemoryLimit)
	assert.Equal(t, MemoryStatusOK, limit.CheckMemoryUsage())
}

func TestMemoryLimitCreateMemoryErrorMentionsOperation(t *testing.T) {
	t.Parallel()

	limit := NewMemoryLimit(512)
	err := limit.CreateMemoryError("chunk read")
	assert.ErrorContains(t, err, "chunk read")
	assert.ErrorContains(t, err, "512 MB")
}

func TestMemoryStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK", MemoryStatusOK.String())
	assert.Equal(t, "WARNING", MemoryStatusWarning.String())
	assert.Equal(t, "EXCEEDED", MemoryStatusExceeded.String())
}
