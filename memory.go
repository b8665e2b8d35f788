package datatable

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// Memory management constants, grounded in the teacher's memory.go
// constants, trimmed to the pool/limit surface the reader actually
// exercises.
const (
	defaultStringSliceCapacity = 10

	defaultMemoryPoolSize   = 1024 * 1024 // 1MB
	defaultMemoryLimit      = 512         // 512MB
	maxReasonableMemoryLimit = 64 * 1024  // 64GB - reasonable upper bound for most systems
	averageStringSizeFactor = 32          // Used to calculate string slice size limits

	defaultWarningThreshold = 0.8 // 80%

	bytesPerMB = 1024 * 1024
)

// pooledStringSlice wraps []string for pooling.
type pooledStringSlice struct {
	data []string
}

// MemoryPool recycles the []string field slices a DelimitedParseContext
// allocates per record. One DelimitedParseContext is reused across every
// chunk a worker claims over its lifetime (ReadChunk resets its buffers
// rather than reallocating the context itself), so the per-record field
// slices are the only allocation worth pooling in that hot path.
//
// Thread Safety: safe for concurrent use by multiple goroutines, though
// in this reader each DelimitedParseContext owns its own pool, so no
// contention actually occurs.
type MemoryPool struct {
	stringPool sync.Pool
	maxSize    int // Maximum slice capacity to pool
}

// NewMemoryPool creates a new memory pool with configurable max slice
// capacity.
func NewMemoryPool(maxSize int) *MemoryPool {
	if maxSize <= 0 {
		maxSize = defaultMemoryPoolSize
	}

	return &MemoryPool{
		maxSize: maxSize,
		stringPool: sync.Pool{
			New: func() any {
				return &pooledStringSlice{
					data: make([]string, 0, defaultStringSliceCapacity),
				}
			},
		},
	}
}

// GetStringSlice gets a record's field slice from the pool.
func (mp *MemoryPool) GetStringSlice() []string {
	pooled, ok := mp.stringPool.Get().(*pooledStringSlice)
	if !ok {
		// This should never happen with our pool setup, but provide fallback
		return make([]string, 0, defaultStringSliceCapacity)
	}
	pooled.data = pooled.data[:0] // Reset length but keep capacity
	return pooled.data
}

// PutStringSlice returns a record's field slice to the pool if it's not
// too large.
func (mp *MemoryPool) PutStringSlice(slice []string) {
	if cap(slice) <= mp.maxSize/averageStringSizeFactor {
		mp.stringPool.Put(&pooledStringSlice{data: slice})
	}
}

// MemoryLimit checks process heap usage against a configured ceiling, so
// ParallelDriver can abort a read under memory pressure instead of
// letting the process run out of memory mid-chunk.
//
// Performance Note: CheckMemoryUsage calls runtime.ReadMemStats, which
// can pause for milliseconds; the driver only calls it once per claimed
// chunk, never per row.
//
// Thread Safety: all methods are safe for concurrent use by multiple
// goroutines.
type MemoryLimit struct {
	maxMemoryMB      int64   // Maximum memory limit in MB
	warningThreshold float64 // Warning threshold as percentage (0.0-1.0)
}

// NewMemoryLimit creates a new memory limit configuration.
func NewMemoryLimit(maxMemoryMB int64) *MemoryLimit {
	// Validate lower bound
	if maxMemoryMB <= 0 {
		maxMemoryMB = defaultMemoryLimit
	}

	// Validate upper bound to prevent unreasonable memory limits
	if maxMemoryMB > maxReasonableMemoryLimit {
		maxMemoryMB = maxReasonableMemoryLimit
	}

	return &MemoryLimit{
		maxMemoryMB:      maxMemoryMB,
		warningThreshold: defaultWarningThreshold,
	}
}

// CheckMemoryUsage checks current memory usage against the limit.
func (ml *MemoryLimit) CheckMemoryUsage() MemoryStatus {
	currentMB := currentHeapMB()
	maxMB := ml.maxMemoryMB

	if currentMB >= maxMB {
		return MemoryStatusExceeded
	}

	usage := float64(currentMB) / float64(maxMB)
	if usage >= ml.warningThreshold {
		return MemoryStatusWarning
	}

	return MemoryStatusOK
}

// CreateMemoryError creates a memory limit error naming the operation
// that observed the exceeded limit, with current and maximum heap MB.
func (ml *MemoryLimit) CreateMemoryError(operation string) error {
	currentMB := currentHeapMB()
	return fmt.Errorf(
		"memory limit exceeded during %s: using %d MB / %d MB, "+
			"consider reducing chunk size or increasing the memory limit",
		operation, currentMB, ml.maxMemoryMB,
	)
}

// currentHeapMB reads the current heap allocation in MB, safely clamped
// against uint64->int64 overflow (unreachable in practice, but cheap to
// guard).
func currentHeapMB() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapAllocMB := memStats.HeapAlloc / bytesPerMB
	if heapAllocMB > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(heapAllocMB)
}

// MemoryStatus represents the current memory status.
type MemoryStatus int

// Memory status constants
const (
	// MemoryStatusOK indicates memory usage is within acceptable limits
	MemoryStatusOK MemoryStatus = iota
	// MemoryStatusWarning indicates memory usage is approaching the limit
	MemoryStatusWarning
	// MemoryStatusExceeded indicates memory usage has exceeded the limit
	MemoryStatusExceeded
)

// String returns string representation of memory status
func (ms MemoryStatus) String() string {
	switch ms {
	case MemoryStatusOK:
		return "OK"
	case MemoryStatusWarning:
		return "WARNING"
	case MemoryStatusExceeded:
		return "EXCEEDED"
	default:
		return "UNKNOWN"
	}
}
