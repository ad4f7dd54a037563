package registry

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Owner identifies the holder of a path.
//
// Pid is the process that captured the token, and ID
// distinguishes holders within that process. Goroutines
// have no public identity, so the ID is allocated per
// lock handle instead.
type Owner struct {
	Pid int
	ID  uint64
}

func (o Owner) String() string {
	return fmt.Sprintf("%d/%d", o.Pid, o.ID)
}

// entry is the binary mutex of a single path.
//
// Every operation of the entry **must** hold the
// mutex of the registry.
type entry struct {
	held   bool
	owner  Owner
	waitCh chan struct{}
}

func (e *entry) tryLock(owner Owner, wait bool) bool {
	if e.held {
		if wait && e.waitCh == nil {
			e.waitCh = make(chan struct{})
		}
		return false
	}
	e.held = true
	e.owner = owner
	return true
}

func (e *entry) unlock() {
	if !e.held {
		panic("invalid entry state to unlock")
	}
	e.held = false
	e.owner = Owner{}
	e.wakeWaiters()
}

func (e *entry) wakeWaiters() {
	if e.waitCh != nil {
		close(e.waitCh)
		e.waitCh = nil
	}
}

type Registry struct {
	mtx     sync.Mutex
	entries map[string]*entry
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Default is the process-wide registry shared by every
// lock handle that does not bring its own.
var Default = New()

// Clean unifies a file path into the key of the
// registry.
//
// Relative paths are made absolute against the current
// working directory, so that "a/../b" and "b" refer to
// the same entry. If the working directory cannot be
// resolved, the cleaned relative path is used as is.
func Clean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// allocClean gets or allocates the entry of the
// cleaned path.
func (r *Registry) allocClean(p string) *entry {
	e, ok := r.entries[p]
	if !ok {
		e = &entry{}
		r.entries[p] = e
	}
	return e
}

// free removes the entry if no one is holding it.
func (r *Registry) free(p string, e *entry) {
	if e.held {
		return
	}
	if r.entries[p] == e {
		delete(r.entries, p)
	}
}

// TryAcquire attempts to take the mutex of path for the
// owner without blocking.
//
// When the path is held by someone else, the returned
// channel is closed as soon as the current holder
// releases it. Callers may wait on it instead of
// sleeping blindly, but must retry TryAcquire since
// another contender may win in the meantime.
//
// The mutex is not re-entrant: acquiring a path twice
// with the same owner fails the second time.
func (r *Registry) TryAcquire(p string, owner Owner) (bool, <-chan struct{}) {
	key := Clean(p)
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e := r.allocClean(key)
	if e.tryLock(owner, true) {
		return true, nil
	}
	return false, e.waitCh
}

// Release gives up the mutex of path held by owner and
// deletes its entry.
//
// A release by anyone other than the recorded owner is
// ignored, so it never disturbs the actual holder. The
// result reports whether the mutex was released.
func (r *Registry) Release(p string, owner Owner) bool {
	key := Clean(p)
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e, ok := r.entries[key]
	if !ok || !e.held || e.owner != owner {
		return false
	}
	e.unlock()
	r.free(key, e)
	return true
}

// Holder returns the current owner of path, if any.
func (r *Registry) Holder(p string) (Owner, bool) {
	key := Clean(p)
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e, ok := r.entries[key]
	if !ok || !e.held {
		return Owner{}, false
	}
	return e.owner, true
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.entries)
}
