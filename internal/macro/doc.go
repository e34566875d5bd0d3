// Package macro implements the record/replay core of keyloop.
//
// # Events
//
// An Event is one captured user-input action: a key press or release, a
// pointer move, a pointer button press or release, or a scroll step. Every
// event carries a Timestamp, the capture-clock reading at the moment it was
// observed. Only the differences between timestamps are meaningful.
//
// # Recording
//
// A Recorder is the capture sink. While recording it tags each incoming
// notification with the current clock reading and appends it to an
// in-progress buffer. Stop appends the modifier release sequence and
// returns the finished, immutable Sequence.
//
//	rec := macro.NewRecorder()
//	_ = rec.Start()
//	// ... rec.Handle(n) for every input notification ...
//	seq, _ := rec.Stop()
//
// # Playback
//
// A Player replays a Sequence through an output sink, preserving the
// recorded inter-event timing, and loops until its context is canceled.
// Events that fall due while the scheduler was delayed are fired back to
// back before the next wait, so nothing is dropped.
//
// # Persistence
//
// Encode and Decode convert a Sequence to and from its JSON document form,
// an array of records with microsecond timestamps relative to the first
// event.
//
// # Thread Safety
//
// Recorder and Player are safe for concurrent use. Sequence values are
// immutable once built.
package macro
