// Package lazyline serves random and seed-deterministic lines from very
// large line-oriented text files without holding their content in memory.
//
// A one-pass scanner records the byte offset and length of every
// meaningful line (non-blank once a '#' comment is stripped). The
// resulting index is persisted to a small binary cache keyed by the
// source's size and modification time, so later processes skip the scan
// entirely. Lines are then read back on demand with a single positioned
// read. Small files are materialized once and served from memory; large
// files stay on disk.
//
// A Store owns the indexes of every file in a Catalog and guarantees that
// at most one scan per file runs at a time, however many callers ask for
// it concurrently.
package lazyline

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// tell a missing wildcard (ErrNotFound) from a missing source file
// (ErrSourceMissing). ErrCorruptCache never escapes a Store; it is only
// returned by the low-level cache functions.
var (
	ErrClosed           = errors.New("store is closed")
	ErrNotFound         = errors.New("wildcard not found")
	ErrSourceMissing    = errors.New("source file missing or unreadable")
	ErrCorruptCache     = errors.New("corrupt index cache")
	ErrLineTooLong      = errors.New("line exceeds maximum length")
	ErrInvalidThreshold = errors.New("large file threshold must be at least 1 MB")
	ErrInvalidPattern   = errors.New("invalid glob pattern")
)
