// Package pathlock guards a critical section identified
// by a filesystem path.
//
// A lock is held on two layers at once. The advisory
// lock of the operating system excludes other
// processes, and the in-process registry excludes other
// goroutines of the same process, which the advisory
// lock alone does not reliably do. Create bundles the
// whole protocol:
//
//	n, err := pathlock.Create("/var/run/job.lock", nil,
//		func(h *pathlock.Handle) (int, error) {
//			return doWork()
//		})
//	if errors.Is(err, pathlock.ErrLocked) {
//		// Someone else is running the job.
//	}
//
// Acquisition polls both layers every PollInterval until
// MaxWait has elapsed. A MaxWait of zero makes exactly
// one attempt. No ordering among waiters is guaranteed.
//
// # Lock files
//
// The lock file is created if missing and never
// truncated. It stays on disk after release and its
// existence says nothing about whether the lock is held.
// Since the operating system drops the lock once every
// descriptor referring to it has been closed, a process
// that dies while holding the lock never leaves a stale
// lock behind.
//
// # Transfer
//
// A holder may hand the lock to a child process with
// Handle.Transfer. The child shares the locked
// descriptor, recovers it with Inherit and keeps holding
// the lock after the parent unlocks or exits, until the
// child releases it or terminates. Transfer is not
// available on windows.
package pathlock
