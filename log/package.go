// Package log defines the logging interface for pathlock.
//
// The lock itself is silent by default. Callers that want
// to see why an acquisition waited or failed plug in a
// logger of their choice by adapting it to this interface,
// see the logrus subpackage for an example.
//
// Logging is organised by topics rather than levels, so
// that users can pick what they are interested in, e.g.
// only the verdicts of lock attempts.
package log

// Topics specify the masks of the logger topic.
//
// The logger will query and see if the current logging
// topic has been enabled, so that it won't spend time on
// generating log calls that is not required.
type Topics int

const (
	// TopicCall records the arguments and result of a
	// lock or unlock call.
	//
	// This affects `Log.Call` and `Log.Return` interface.
	// They won't be called if TopicCall is not enabled.
	TopicCall Topics = 1 << iota

	// TopicVerdict records the outcome of each attempt:
	// acquired, busy in process, busy on disk, timed out.
	TopicVerdict

	// TopicTrace records the waits between attempts.
	TopicTrace

	// TopicError records failures that are swallowed,
	// such as an error closing a released lock file.
	TopicError
)

const (
	AllTopics = Topics(0) |
		TopicCall |
		TopicVerdict |
		TopicTrace |
		TopicError
)

// ParseTopic maps a topic name to its mask, returning
// zero for unknown names.
func ParseTopic(name string) Topics {
	switch name {
	case "call":
		return TopicCall
	case "verdict":
		return TopicVerdict
	case "trace":
		return TopicTrace
	case "error":
		return TopicError
	case "all":
		return AllTopics
	}
	return 0
}

// M is the shorthand for `map[string]any`.
type M = map[string]any

// Log is the logger interface.
type Log interface {
	// Check if any of the topic is enabled.
	Enabled(Topics) bool

	// Call records the calling arguments of a function.
	//
	// The returned cookie associates the call with its
	// result.
	Call(name string, args M) string

	// Return records the calling result of a function.
	//
	// The previously generated cookie for call will be used.
	Return(name, cookie string, rets M)

	// Log with the specified topics.
	Log(topics Topics, msg string)

	// Logf with the specified topics.
	Logf(topics Topics, msg string, args ...any)
}

// NoLog is the null implementation of the Log.
type NoLog struct{}

func (NoLog) Enabled(Topics) bool                         { return false }
func (NoLog) Call(string, M) string                       { return "" }
func (NoLog) Log(topics Topics, msg string)               {}
func (NoLog) Logf(topics Topics, msg string, args ...any) {}
func (NoLog) Return(name, cookie string, rets M)          {}

var _ Log = (*NoLog)(nil)
