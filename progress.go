package datatable

import "time"

// Status is the lifecycle state reported alongside a progress update,
// mirrored on g.progress(amount, status) in chunks.cc's read_all.
type Status int

const (
	StatusRunning Status = iota
	StatusDone
	StatusErrored
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusErrored:
		return "errored"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ProgressFunc receives fractional completion (0.0-1.0) and the current
// status. The driver calls it from inside its commit gate, by whichever
// worker is committing at the time, and once more after all workers have
// exited; no single worker is designated to own it. Calls are never
// concurrent, so implementations don't need their own locking.
type ProgressFunc func(amount float64, status Status)

// progressGate decides when to start calling back into ProgressFunc,
// grounded in chunks.cc's tShowAlways/tShowWhen: progress is reported
// immediately for inputs bigger than 256MiB, otherwise only after the
// read has been running for progressDelay, so small/fast reads never pay
// for a progress callback at all.
type progressGate struct {
	fn       ProgressFunc
	always   bool
	showWhen time.Time
	armed    bool
}

const (
	progressDelay        = 750 * time.Millisecond
	progressAlwaysBytes  = 1 << 28 // 256 MiB
)

func newProgressGate(fn ProgressFunc, inputSize int64, now time.Time) *progressGate {
	if fn == nil {
		return &progressGate{fn: nil}
	}
	g := &progressGate{fn: fn, armed: true}
	g.always = inputSize > progressAlwaysBytes
	g.showWhen = now.Add(progressDelay)
	return g
}

func (g *progressGate) maybeReport(amount float64, now time.Time) {
	if g == nil || g.fn == nil {
		return
	}
	if g.always || now.After(g.showWhen) {
		g.always = true
		g.fn(amount, StatusRunning)
	}
}

func (g *progressGate) reportFinal(amount float64, status Status) {
	if g == nil || g.fn == nil {
		return
	}
	if g.always {
		g.fn(amount, status)
	}
}
