// Package osflock wraps the advisory file lock of the
// operating system.
//
// A lock file is opened for appending and created when
// missing, it is never truncated and its content is
// irrelevant. The lock is bound to the open file
// description, so every duplicate of the descriptor,
// including the copies handed to a child process,
// shares it. The lock is released only once every such
// descriptor has been closed, or its process has died.
//
// Go opens descriptors close-on-exec and never forks,
// so a lock is inherited only when it is passed on
// explicitly, e.g. through exec.Cmd.ExtraFiles. On
// windows, descriptors cannot be handed over this way
// and Inheritable is false.
package osflock
