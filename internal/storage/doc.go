// Package storage persists encoded sequences and watches them for external
// edits.
//
// FileStore writes atomically: data goes to a temporary file in the target
// directory which is then renamed over the destination, so readers never see
// a partially written document. Watcher observes a single file through its
// parent directory and reports coalesced changes, which survives editors and
// tools that replace the file instead of rewriting it.
package storage
