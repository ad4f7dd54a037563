package pathlock

import (
	"github.com/pkg/errors"
)

// Create runs workload while holding the lock at path.
//
// It fails with ErrLocked when the lock cannot be taken
// within opts.MaxWait, and with ErrNoWorkload when
// workload is nil. Whatever the workload returns is
// passed through untouched. The lock is released before
// Create returns, also when the workload panics.
func Create[T any](path string, opts *Options, workload func(*Handle) (T, error)) (T, error) {
	var zero T
	if workload == nil {
		return zero, ErrNoWorkload
	}
	h := New(path, opts)
	locked, err := h.Lock()
	if err != nil {
		return zero, err
	}
	if !locked {
		return zero, errors.Wrapf(ErrLocked, "lock %q", path)
	}
	defer h.Unlock()
	return workload(h)
}

// Do is Create for workloads without a result.
func Do(path string, opts *Options, workload func(*Handle) error) error {
	if workload == nil {
		return ErrNoWorkload
	}
	_, err := Create(path, opts, func(h *Handle) (struct{}, error) {
		return struct{}{}, workload(h)
	})
	return err
}
