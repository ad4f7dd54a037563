//go:build windows

package osflock

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Inheritable reports whether a held lock can be handed
// to a child process.
const Inheritable = false

// LockFileEx needs generic write access, which an
// append-only handle lacks.
const openFlags = os.O_CREATE | os.O_RDWR

func tryLock(f *os.File) error {
	var ol windows.Overlapped
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, &ol,
	)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrBusy
	}
	return err
}

func adopt(fd uintptr, name string) (*os.File, error) {
	return nil, errors.Wrapf(ErrUnsupported, "adopt descriptor %d of %q", fd, name)
}
