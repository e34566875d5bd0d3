package config

import "fmt"

// ValidationError reports one invalid setting.
type ValidationError struct {
	Key   string // dotted config key, e.g. "playback.poll_interval"
	Value any
	Code  ValidationErrorCode
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s = %v: %s", e.Key, e.Value, e.Msg)
}

// ValidationErrorCode classifies a ValidationError.
type ValidationErrorCode uint8

const (
	ErrCodeOutOfRange ValidationErrorCode = iota
	ErrCodeInvalidEnum
	ErrCodePatternMismatch // hotkey chord does not parse
	ErrCodeRequiredMissing
	ErrCodeConflict // start and stop chords are the same
)

var codeNames = [...]string{
	ErrCodeOutOfRange:      "out_of_range",
	ErrCodeInvalidEnum:     "invalid_enum",
	ErrCodePatternMismatch: "pattern_mismatch",
	ErrCodeRequiredMissing: "required_missing",
	ErrCodeConflict:        "conflict",
}

func (c ValidationErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}
