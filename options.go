package pathlock

import (
	"time"

	"github.com/go-pathlock/pathlock/log"
	"github.com/go-pathlock/pathlock/registry"
)

const (
	// DefaultMaxWait is how long Create waits for the
	// lock when no options are given.
	DefaultMaxWait = 5 * time.Second

	// DefaultPollInterval is the pause between two
	// acquisition attempts. It bounds how late a waiter
	// notices that another process released the lock.
	// Waiters inside the same process are woken as soon
	// as the lock is released.
	DefaultPollInterval = 100 * time.Millisecond
)

// Options tune a lock handle. A nil *Options means
// DefaultOptions.
type Options struct {
	// MaxWait bounds how long Lock retries. Zero makes a
	// single non-blocking attempt.
	MaxWait time.Duration

	// PollInterval is the pause between attempts,
	// DefaultPollInterval when zero.
	PollInterval time.Duration

	// Log receives lock events, log.NoLog when nil.
	Log log.Log

	// Registry is the in-process registry to coordinate
	// with, registry.Default when nil.
	Registry *registry.Registry
}

// DefaultOptions waits up to DefaultMaxWait, polling
// every DefaultPollInterval.
func DefaultOptions() *Options {
	return &Options{MaxWait: DefaultMaxWait}
}

// NonBlocking returns options for a single attempt
// without waiting.
func NonBlocking() *Options {
	return &Options{MaxWait: 0}
}

func (o *Options) normalize() Options {
	if o == nil {
		o = DefaultOptions()
	}
	result := *o
	if result.MaxWait < 0 {
		result.MaxWait = 0
	}
	if result.PollInterval <= 0 {
		result.PollInterval = DefaultPollInterval
	}
	if result.Log == nil {
		result.Log = log.NoLog{}
	}
	if result.Registry == nil {
		result.Registry = registry.Default
	}
	return result
}
