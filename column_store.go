package datatable

// ColumnStore is the column-major destination the core commits rows into.
// It is an external collaborator per spec §1/§6: the core only depends on
// this narrow resize/append interface, never on storage internals.
//
// Growth and truncation must be safe to call concurrently with readers
// that are appending into already-sized columns (see ReallocLock): the
// core makes every growing SetNRows call while holding ReallocLock; the
// final trim in ParallelDriver.Run runs after all workers have exited,
// without the lock.
type ColumnStore interface {
	// SetNRows grows or shrinks capacity to n rows. Growing never
	// disturbs already-appended values; shrinking only trims unused
	// reserved capacity below the store's current committed length, never
	// committed rows themselves.
	SetNRows(n int64) error

	// GetNRows returns the store's current committed row count.
	GetNRows() int64

	// Writer returns the typed append handle for column i, used by a
	// ParseContext's PushBuffers.
	Writer(i int) ColumnWriter
}

// ColumnWriter is the typed per-column append handle a ColumnStore hands
// out so PushBuffers can append a value without a type switch on every
// call. AppendString takes the value's textual form and returns an error
// when it cannot be converted to the column's Kind; AppendNull appends a
// missing value. There are no typed Append* methods.
type ColumnWriter interface {
	Kind() Kind
	AppendString(v string) error
	AppendNull() error
}
