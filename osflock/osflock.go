package osflock

import (
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrBusy is returned when the lock is held through
	// another open file description. It is retryable.
	ErrBusy = errors.New("lock file is busy")

	// ErrUnsupported is returned by operations that
	// the platform cannot perform.
	ErrUnsupported = errors.New("operation not supported on this platform")
)

// File is an open lock file whose advisory lock is
// held through its descriptor.
type File struct {
	f *os.File
}

// Acquire opens or creates the lock file at path and
// attempts an exclusive lock without blocking.
//
// ErrBusy is returned when someone else holds the lock.
// Every other failure is fatal to the caller and is
// returned wrapped.
func Acquire(path string) (*File, error) {
	f, err := os.OpenFile(path, openFlags, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open lock file %q", path)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrBusy) {
			return nil, ErrBusy
		}
		return nil, errors.Wrapf(err, "lock file %q", path)
	}
	return &File{f: f}, nil
}

// Adopt takes over a descriptor that was inherited
// from a parent process and makes sure its lock is
// still held through it.
func Adopt(fd uintptr, name string) (*File, error) {
	f, err := adopt(fd, name)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (f *File) Name() string {
	return f.f.Name()
}

func (f *File) Fd() uintptr {
	return f.f.Fd()
}

// File exposes the underlying descriptor, so that it
// can be passed to a child process.
func (f *File) File() *os.File {
	return f.f
}

// Close releases this copy of the descriptor.
//
// No explicit unlock request is issued: that would drop
// the lock for every descriptor sharing it, including
// the ones inherited by child processes.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}
