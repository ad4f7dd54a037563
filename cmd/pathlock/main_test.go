package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathlock/pathlock"
)

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestExitCode(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0, exitCode(nil))
	assert.Equal(1, exitCode(errHeld))
	assert.Equal(exitLocked, exitCode(errors.Wrap(pathlock.ErrLocked, "lock")))
	assert.Equal(1, exitCode(errors.New("other")))
}

func TestProbe(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "probe.lock")

	assert.NoError(execute("probe", path))

	h := pathlock.New(path, pathlock.NonBlocking())
	locked, err := h.Lock()
	require.NoError(t, err)
	require.True(t, locked)
	assert.ErrorIs(execute("probe", path), errHeld)

	h.Unlock()
	assert.NoError(execute("probe", path))
}

func TestHold(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "hold.lock")

	assert.NoError(execute("hold", "--for", "10ms", path))

	h := pathlock.New(path, pathlock.NonBlocking())
	locked, err := h.Lock()
	require.NoError(t, err)
	require.True(t, locked)
	defer h.Unlock()

	err = execute("hold", "--wait", "0s", "--for", "10ms", path)
	assert.ErrorIs(err, pathlock.ErrLocked)
	assert.Equal(exitLocked, exitCode(err))
}

func TestRun(t *testing.T) {
	assert := assert.New(t)
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}
	falsePath, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	path := filepath.Join(t.TempDir(), "run.lock")

	assert.NoError(execute("run", "--wait", "1s", path, "--", truePath))

	err = execute("run", "--wait", "1s", path, "--", falsePath)
	assert.Equal(1, exitCode(err))

	// Released after the command finished.
	assert.NoError(execute("probe", path))
}
