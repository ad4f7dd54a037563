package pathlock

import (
	"os"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"

	"github.com/go-pathlock/pathlock/log"
	"github.com/go-pathlock/pathlock/osflock"
)

const (
	// EnvFD names the descriptor of an inherited lock in
	// the environment of a child process.
	EnvFD = "PATHLOCK_FD"

	// EnvPath names the path of an inherited lock.
	EnvPath = "PATHLOCK_PATH"
)

// Transfer prepares cmd so that the child process
// shares the lock held by h. It must be called before
// cmd is started.
//
// The child keeps holding the lock after h is unlocked
// or this process exits, until it calls Unlock on the
// handle returned by Inherit or terminates.
func (h *Handle) Transfer(cmd *exec.Cmd) error {
	if !osflock.Inheritable {
		return errors.Wrapf(ErrTransferUnsupported, "transfer lock %q", h.path)
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.file == nil {
		return errors.Wrapf(ErrNotHeld, "transfer lock %q", h.path)
	}
	fd := 3 + len(cmd.ExtraFiles)
	cmd.ExtraFiles = append(cmd.ExtraFiles, h.file.File())
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env,
		EnvFD+"="+strconv.Itoa(fd),
		EnvPath+"="+h.key,
	)
	return nil
}

// Inherit recovers the lock transferred by the parent
// process. It fails with ErrNotInherited if there is
// none.
//
// The returned handle holds the lock and is registered
// in this process, so goroutines here are excluded as
// well. If the path is already held inside this
// process, the descriptor is closed and ErrLocked is
// returned.
//
// The inherited descriptor is not close-on-exec: every
// process started afterwards, until Unlock, shares the
// lock too, mirroring a descriptor inherited across
// fork and exec. The variables naming the lock are
// removed from the environment, so such processes hold
// it without being able to Inherit it.
func Inherit(opts *Options) (*Handle, error) {
	fdText, ok := os.LookupEnv(EnvFD)
	if !ok {
		return nil, ErrNotInherited
	}
	path := os.Getenv(EnvPath)
	fd, err := strconv.ParseUint(fdText, 10, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s=%q", EnvFD, fdText)
	}
	f, err := osflock.Adopt(uintptr(fd), path)
	if err != nil {
		return nil, errors.Wrapf(err, "inherit lock %q", path)
	}
	_ = os.Unsetenv(EnvFD)
	_ = os.Unsetenv(EnvPath)

	h := New(path, opts)
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.used = true
	if ok, _ := h.registry.TryAcquire(h.key, h.owner); !ok {
		if err := f.Close(); err != nil {
			h.log.Logf(log.TopicError, "close inherited lock file %q: %v", path, err)
		}
		return nil, errors.Wrapf(ErrLocked, "inherit lock %q", path)
	}
	h.file = f
	h.registered = true
	return h, nil
}
