// Package output defines the synthetic-input sink that playback drives and
// provides the implementations keyloop ships with.
//
// Virtual keeps an in-memory pointer and records every call; it backs
// dry runs and tests. Trace wraps another sink and logs each side effect.
package output
