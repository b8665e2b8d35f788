package datatable

import "sync"

// growthFloor and growthFactor implement chunks.cc's realloc_output_columns
// verbatim: on the last chunk, grow to exactly what's needed; otherwise
// project forward assuming every remaining chunk needs about as many rows
// as this one did, floored at current+1024 so tiny early chunks don't
// force a reallocation every time.
const (
	growthFactor = 1.2
	growthFloor  = 1024
)

// ReallocLock guards ColumnStore.SetNRows growth against concurrent
// appends, grounded in gastrolog's orchestrator.mu sync.RWMutex pattern.
// The Committer always runs Commit (read, grow, and push) under its own
// single mutex (see committer.go), so in this reader every append is
// already serialized with every grow by construction; ReallocLock's
// exclusive lock is the guard a ColumnStore implementation's own
// concurrent writers (if any exist outside the Committer) must take
// before growing, per spec I3/§4.4. There is deliberately no shared
// "append" lock here: this reader never appends outside the Committer's
// exclusive section, so a separate read-lock path would be unexercised.
type ReallocLock struct {
	mu sync.Mutex
}

// GrowGuard runs fn while holding the lock, for the Committer growing a
// ColumnStore's capacity.
func (r *ReallocLock) GrowGuard(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// nextCapacity computes the next allocated row count when chunk
// chunkIndex (of chunkCount total, 0-based) needs newAlloc rows total but
// the store's current allocation is less than that, mirroring
// realloc_output_columns: the last chunk gets exactly newAlloc; every
// other chunk gets a forward-projected allocation so later chunks don't
// each trigger their own reallocation.
func nextCapacity(chunkIndex, chunkCount int, currentAlloc, newAlloc, nrowsMax int64) int64 {
	if chunkIndex != chunkCount-1 {
		expNrows := growthFactor * float64(newAlloc) * float64(chunkCount) / float64(chunkIndex+1)
		newAlloc = max(int64(expNrows), growthFloor+currentAlloc)
	}
	if nrowsMax > 0 && newAlloc > nrowsMax {
		newAlloc = nrowsMax
	}
	return newAlloc
}

// GrowColumnStore resizes store to at least needed rows for the given
// chunk position, growing geometrically (except on the final chunk, which
// grows to exactly what's needed) rather than growing exactly to `needed`
// on every call. currentAlloc is the caller's own tracked reserved
// capacity (chunks.cc's nrows_allocated) — the Committer, not the store,
// owns this number, since a ColumnStore's GetNRows only reports rows
// actually appended, not capacity reserved ahead of them. Returns the new
// capacity and whether it was clipped short of needed by nrowsMax (a cap
// <= 0 means unbounded).
func GrowColumnStore(lock *ReallocLock, store ColumnStore, chunkIndex, chunkCount int, currentAlloc, needed, nrowsMax int64) (newCap int64, clipped bool, err error) {
	err = lock.GrowGuard(func() error {
		if currentAlloc >= needed {
			newCap = currentAlloc
			return nil
		}
		newCap = nextCapacity(chunkIndex, chunkCount, currentAlloc, needed, nrowsMax)
		clipped = newCap < needed
		return store.SetNRows(newCap)
	})
	return newCap, clipped, err
}
