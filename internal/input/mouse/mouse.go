package mouse

import "fmt"

// Button represents a pointer button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) button.
	ButtonLeft
	// ButtonMiddle is the middle button (wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) button.
	ButtonRight
	// ButtonX1 is the first extra button (usually "back").
	ButtonX1
	// ButtonX2 is the second extra button (usually "forward").
	ButtonX2
	// ButtonUnknown is a physical button the platform could not identify.
	ButtonUnknown

	buttonCount
)

var buttonNames = [buttonCount]string{
	ButtonNone:    "none",
	ButtonLeft:    "left",
	ButtonMiddle:  "middle",
	ButtonRight:   "right",
	ButtonX1:      "x1",
	ButtonX2:      "x2",
	ButtonUnknown: "unknown",
}

// String returns the serialized name of the button.
func (b Button) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", b)
}

// Valid returns true for every member of the enumeration except ButtonNone.
func (b Button) Valid() bool {
	return b > ButtonNone && b < buttonCount
}

// ButtonFromString returns the button for a serialized name.
// "none" is not accepted; a recorded press always names a real button.
func ButtonFromString(name string) (Button, bool) {
	for b := ButtonLeft; b < buttonCount; b++ {
		if buttonNames[b] == name {
			return b, true
		}
	}
	return ButtonNone, false
}

// Position represents a screen coordinate.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Delta returns the relative move from p to target.
func (p Position) Delta(target Position) (dx, dy int) {
	return target.X - p.X, target.Y - p.Y
}

// Transition is a single press or release produced by State.Update.
type Transition struct {
	Button  Button
	Pressed bool
}

// State tracks which buttons are currently held.
// It is not safe for concurrent use; sources own one each.
type State struct {
	held [buttonCount]bool
}

// IsHeld returns true if b is currently held.
func (s *State) IsHeld(b Button) bool {
	return b < buttonCount && s.held[b]
}

// Update replaces the held set with the given buttons and returns the
// transitions needed to get there. Releases are reported before presses,
// each group in enumeration order.
func (s *State) Update(held ...Button) []Transition {
	var next [buttonCount]bool
	for _, b := range held {
		if b.Valid() {
			next[b] = true
		}
	}

	var out []Transition
	for b := ButtonLeft; b < buttonCount; b++ {
		if s.held[b] && !next[b] {
			out = append(out, Transition{Button: b, Pressed: false})
		}
	}
	for b := ButtonLeft; b < buttonCount; b++ {
		if !s.held[b] && next[b] {
			out = append(out, Transition{Button: b, Pressed: true})
		}
	}
	s.held = next
	return out
}
