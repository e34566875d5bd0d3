// Package input defines how raw device activity reaches keyloop.
//
// A Source delivers Notifications (pointer moves, clicks, scrolls and key
// transitions) by calling an emit function, the same shape whether the
// source is an OS hook, a terminal, or a test fixture. Queue decouples a
// Source's delivery cadence from the consumer: notifications are pushed
// into a bounded channel and drained by a single consumer goroutine.
//
// Subpackages:
//
//   - key: named-key / virtual-key-code identity and chord parsing
//   - mouse: pointer buttons and positions
//   - hotkey: press-then-release chord recognition
//   - terminal: a tcell-backed Source
package input
