package pathlock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/go-pathlock/pathlock/log"
	"github.com/go-pathlock/pathlock/osflock"
	"github.com/go-pathlock/pathlock/registry"
)

// Owner identifies the holder of a lock: the process
// and the handle inside it.
type Owner = registry.Owner

var ownerCounter uint64

func newOwner() Owner {
	return Owner{
		Pid: os.Getpid(),
		ID:  atomic.AddUint64(&ownerCounter, 1),
	}
}

// Handle is a single attempt to hold a path lock.
//
// A handle goes from unlocked to locked once, and
// unlocking it is final. Create a new handle for every
// critical section.
type Handle struct {
	path     string
	key      string
	owner    Owner
	maxWait  time.Duration
	poll     time.Duration
	registry *registry.Registry
	log      log.Log

	mtx        sync.Mutex
	used       bool
	released   bool
	file       *osflock.File
	registered bool
}

// New prepares a handle for the lock at path. Nothing
// is acquired until Lock is called.
//
// A relative path is resolved against the working
// directory at this point, later changes of the working
// directory do not affect the handle.
func New(path string, opts *Options) *Handle {
	o := opts.normalize()
	return &Handle{
		path:     path,
		key:      registry.Clean(path),
		owner:    newOwner(),
		maxWait:  o.MaxWait,
		poll:     o.PollInterval,
		registry: o.Registry,
		log:      o.Log,
	}
}

func (h *Handle) Path() string {
	return h.path
}

// Pid returns the process that owns the handle.
func (h *Handle) Pid() int {
	return h.owner.Pid
}

// Owner returns the identity recorded for the handle.
func (h *Handle) Owner() Owner {
	return h.owner
}

// Locked reports whether the handle currently holds
// the lock on disk.
func (h *Handle) Locked() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.file != nil
}

// Lock acquires the lock, retrying until MaxWait has
// elapsed. It returns false when the lock is still held
// by someone else at the deadline.
//
// Errors other than contention, like a lock file that
// cannot be created, are returned at once and never
// retried.
func (h *Handle) Lock() (bool, error) {
	return h.LockContext(context.Background())
}

// LockContext is Lock that additionally gives up when
// ctx is done, returning the context's error.
//
// An Unlock from another goroutine while waiting makes
// it give up and return false.
func (h *Handle) LockContext(ctx context.Context) (locked bool, err error) {
	if h.log.Enabled(log.TopicCall) {
		cookie := h.log.Call("Lock", log.M{
			"path":     h.path,
			"owner":    h.owner.String(),
			"max_wait": h.maxWait.String(),
		})
		defer func() {
			h.log.Return("Lock", cookie, log.M{
				"locked": locked,
				"err":    err,
			})
		}()
	}

	h.mtx.Lock()
	used := h.used
	h.used = true
	h.mtx.Unlock()
	if used {
		return false, ErrHandleUsed
	}

	deadline := time.Now().Add(h.maxWait)
	for {
		acquired, waitCh, err := h.attempt()
		if errors.Is(err, errReleased) {
			h.log.Logf(log.TopicVerdict, "unlocked while waiting for %q", h.path)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if acquired {
			h.log.Logf(log.TopicVerdict, "acquired %q as %s", h.path, h.owner)
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			h.log.Logf(log.TopicVerdict, "timed out waiting for %q", h.path)
			return false, nil
		}
		delay := h.poll
		if delay > remaining {
			delay = remaining
		}
		h.log.Logf(log.TopicTrace, "waiting %s for %q", delay, h.path)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-waitCh:
			// Released inside this process, retry now.
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		}
	}
}

// errReleased stops the acquisition of a handle that
// was unlocked in the meantime.
var errReleased = errors.New("handle unlocked while waiting")

// attempt tries both layers once. The in-process mutex
// is never kept without the lock on disk.
func (h *Handle) attempt() (bool, <-chan struct{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.released {
		return false, nil, errReleased
	}
	ok, waitCh := h.registry.TryAcquire(h.key, h.owner)
	if !ok {
		h.log.Logf(log.TopicVerdict, "%q busy in process", h.path)
		return false, waitCh, nil
	}
	f, err := osflock.Acquire(h.key)
	if err != nil {
		h.registry.Release(h.key, h.owner)
		if errors.Is(err, osflock.ErrBusy) {
			h.log.Logf(log.TopicVerdict, "%q busy on disk", h.path)
			return false, nil, nil
		}
		return false, nil, err
	}
	h.file = f
	h.registered = true
	return true, nil, nil
}

// Unlock releases the lock. It may be called any number
// of times, also on a handle that never acquired.
//
// Only this handle's descriptor is closed: copies handed
// to child processes keep the lock held. The in-process
// mutex is released only when called from the process
// that acquired it.
func (h *Handle) Unlock() {
	if h.log.Enabled(log.TopicCall) {
		cookie := h.log.Call("Unlock", log.M{
			"path":  h.path,
			"owner": h.owner.String(),
		})
		defer h.log.Return("Unlock", cookie, nil)
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.used = true
	h.released = true
	if h.file != nil {
		if err := h.file.Close(); err != nil {
			h.log.Logf(log.TopicError, "close lock file %q: %v", h.path, err)
		}
		h.file = nil
	}
	if h.registered && os.Getpid() == h.owner.Pid {
		h.registry.Release(h.key, h.owner)
		h.registered = false
	}
	h.log.Logf(log.TopicTrace, "unlocked %q as %s", h.path, h.owner)
}
