//go:build unix

package osflock

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Inheritable reports whether a held lock can be handed
// to a child process.
const Inheritable = true

const openFlags = os.O_CREATE | os.O_WRONLY | os.O_APPEND

func tryLock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
		return ErrBusy
	}
	return err
}

func adopt(fd uintptr, name string) (*os.File, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(fd), &st); err != nil {
		return nil, errors.Wrapf(err, "stat inherited descriptor %d", fd)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return nil, errors.Errorf("inherited descriptor %d is not a regular file", fd)
	}
	f := os.NewFile(fd, name)
	// Re-locking through a description that already
	// holds the lock is a no-op, so this only fails when
	// the lock has been lost to someone else.
	if err := tryLock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrBusy) {
			return nil, ErrBusy
		}
		return nil, errors.Wrapf(err, "lock inherited descriptor %d", fd)
	}
	return f, nil
}
