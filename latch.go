package datatable

import "sync"

// ExceptionLatch is a first-writer-wins error slot shared across worker
// goroutines, grounded in chunks.cc's OmpExceptionManager: once any worker
// reports a failure, every other worker should observe it and stop
// starting new chunks, but only the first error is kept.
type ExceptionLatch struct {
	mu  sync.Mutex
	err error
}

// Set records err if this is the first error reported. Subsequent calls
// (including with a different error) are no-ops.
func (l *ExceptionLatch) Set(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil {
		l.err = err
	}
}

// Err returns the first error recorded, or nil if none has been.
func (l *ExceptionLatch) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Tripped reports whether any error has been recorded yet, without
// allocating or exposing the error itself. Workers poll this between
// chunks to decide whether to keep going.
func (l *ExceptionLatch) Tripped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err != nil
}
