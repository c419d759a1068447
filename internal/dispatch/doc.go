// Package dispatch drains the shared analysis queue into a fixed worker
// pool, gated by a GPU memory admission check.
//
// A single dispatch loop pulls tasks in FIFO order, waits until the
// configured device has headroom, and hands the task to the pool. Tasks
// are handled at most once: a failed transcription or insert is logged
// and counted, never retried, and the audio excerpt is always removed
// when the worker is done with it.
package dispatch
