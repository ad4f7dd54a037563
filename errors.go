package pathlock

import (
	"github.com/pkg/errors"

	"github.com/go-pathlock/pathlock/osflock"
)

var (
	// ErrLocked is returned when the lock could not be
	// acquired before the deadline.
	ErrLocked = errors.New("timed out waiting for lock")

	// ErrNoWorkload is returned by Create when no
	// workload is supplied.
	ErrNoWorkload = errors.New("no workload supplied")

	// ErrHandleUsed is returned when locking a handle
	// that has been locked before. Handles are single
	// use.
	ErrHandleUsed = errors.New("lock handle already used")

	// ErrNotHeld is returned when transferring a lock
	// that the handle does not hold.
	ErrNotHeld = errors.New("lock not held by handle")

	// ErrNotInherited is returned by Inherit when the
	// process was not handed a lock.
	ErrNotInherited = errors.New("no inherited lock")

	// ErrTransferUnsupported is returned when the
	// platform cannot hand a lock to a child process.
	ErrTransferUnsupported = osflock.ErrUnsupported
)
