// Package registry is the in-process half of a path
// lock.
//
// Advisory file locks are owned by processes, so two
// goroutines of the same process cannot rely on them
// to exclude each other. The registry adds a binary
// mutex per path, kept in one process-wide map guarded
// by a single coordination mutex.
//
// Entries are created the first time a path is
// acquired and deleted as soon as the holder releases
// it, so the map never outgrows the set of paths that
// are currently held.
package registry
