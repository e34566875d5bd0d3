package macro

import (
	"errors"
	"fmt"
)

// Macro errors.
var (
	// ErrFormat indicates a malformed sequence document.
	ErrFormat = errors.New("malformed sequence")

	// ErrUnordered indicates a timestamp lower than its predecessor.
	ErrUnordered = errors.New("timestamp decreases")

	// ErrEmptySequence indicates a sequence with no events.
	ErrEmptySequence = errors.New("empty sequence")

	// ErrPlayback indicates playback could not start.
	ErrPlayback = errors.New("playback failed")

	// ErrUnknownEventType indicates an event whose kind the player cannot replay.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrAlreadyRecording indicates Start was called during a recording.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrNotRecording indicates Stop was called without a recording.
	ErrNotRecording = errors.New("not recording")

	// ErrAlreadyPlaying indicates Play was called during playback.
	ErrAlreadyPlaying = errors.New("already playing")
)

// FormatError describes why a sequence document was rejected.
type FormatError struct {
	Index  int    // Record index, or -1 for document-level problems
	Field  string // Offending field, if any
	Reason string // Human-readable cause
	Err    error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}

	msg := ErrFormat.Error()
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: record %d", msg, e.Index)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrFormat and the wrapped error.
func (e *FormatError) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == ErrFormat || errors.Is(e.Err, target)
}

// PlaybackError reports why playback could not start.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return ErrPlayback.Error()
	}
	return fmt.Sprintf("%s: %v", ErrPlayback, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrPlayback and the wrapped error.
func (e *PlaybackError) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == ErrPlayback || errors.Is(e.Err, target)
}

// UnknownEventTypeError aborts a playback pass at the offending event.
type UnknownEventTypeError struct {
	Kind  Kind
	Index int
}

func (e *UnknownEventTypeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %d at event %d", ErrUnknownEventType, uint8(e.Kind), e.Index)
}

// Is matches ErrUnknownEventType.
func (e *UnknownEventTypeError) Is(target error) bool {
	return e != nil && target == ErrUnknownEventType
}
