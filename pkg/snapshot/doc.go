// Package snapshot persists the last tree sent for each session, so a
// reconnecting client can be patched from where it left off instead of
// being sent its whole tree again.
//
// Trees are stored in the pkg/protocol binary encoding. Three backends are
// provided: MemoryStore for a single process, BoltStore for a local bbolt
// file and S3Store for an S3-compatible bucket. Open picks one from a
// Config.
package snapshot
