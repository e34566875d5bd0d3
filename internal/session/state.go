package session

import (
	"fmt"

	"github.com/dshills/keyloop/internal/input/hotkey"
)

// State is the session state.
type State int

const (
	Idle State = iota
	Recording
	Playing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode is what the start signal does while Idle.
type Mode int

const (
	// ModeNone ignores the start signal.
	ModeNone Mode = iota
	// ModeRecord starts a new recording.
	ModeRecord
	// ModePlay replays the loaded sequence.
	ModePlay
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRecord:
		return "record"
	case ModePlay:
		return "play"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// IdleStopPolicy decides what a stop signal does while Idle.
type IdleStopPolicy int

const (
	// IdleStopIgnore drops the signal.
	IdleStopIgnore IdleStopPolicy = iota
	// IdleStopExit closes the controller's Exit channel.
	IdleStopExit
	// IdleStopDisarm clears the armed mode and reports an Idle to Idle
	// transition so the caller can leave the session.
	IdleStopDisarm
)

// String returns the policy name used in configuration.
func (p IdleStopPolicy) String() string {
	switch p {
	case IdleStopIgnore:
		return "ignore"
	case IdleStopExit:
		return "exit"
	case IdleStopDisarm:
		return "disarm"
	default:
		return fmt.Sprintf("IdleStopPolicy(%d)", int(p))
	}
}

// ParseIdleStopPolicy parses "ignore", "exit" or "disarm".
func ParseIdleStopPolicy(s string) (IdleStopPolicy, bool) {
	switch s {
	case "ignore":
		return IdleStopIgnore, true
	case "exit":
		return IdleStopExit, true
	case "disarm":
		return IdleStopDisarm, true
	default:
		return IdleStopIgnore, false
	}
}

// Hotkey triggers bound by the controller.
const (
	TriggerStart hotkey.Trigger = "start"
	TriggerStop  hotkey.Trigger = "stop"
)

// Transition describes a state change.
type Transition struct {
	From State
	To   State

	// Mode is the mode the run was started in.
	Mode Mode

	// SessionID identifies the Recording or Playing run the transition
	// starts or ends.
	SessionID string

	// Err is set when playback ended on its own because of an error.
	Err error
}

// TransitionCallback is called after every state change, outside the
// controller lock.
type TransitionCallback func(Transition)
