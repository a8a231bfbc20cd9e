// Package governor keeps one dump inside its time, memory and nesting budgets.
//
// A [Governor] is created at the start of a dump and discarded at its end. The
// router calls [Governor.EnterLevel] and [Governor.LeaveLevel] around every
// composite dispatch and polls [Governor.CheckContinue] before every dispatch.
// When CheckContinue returns false the router replaces the subtree with a
// "limit reached" placeholder and moves on to the next sibling; the verdict is
// recomputed on every call and never latched.
//
// The governor never returns errors. Probes that fail report conservative
// values instead, because its only job is keeping the host process alive.
//
// # Budgets
//
//   - MaxDepth: composite nesting below the root (root is level 0).
//     Negative disables the check.
//   - MaxDuration: wall-clock time since the dump started.
//   - MaxMemory: heap growth allowed since the dump started.
//   - MinHeadroom: free memory that must remain available, taken as the
//     smaller of the host's free system memory and the distance to the Go
//     runtime's soft memory limit.
//
// Memory is sampled every SampleEvery checks through runtime/metrics, which
// does not stop the world.
package governor
