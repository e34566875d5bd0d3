package key

import (
	"fmt"
	"strings"
)

// Named identifies a control key from the fixed symbolic set.
type Named uint8

const (
	// NamedNone represents no named key.
	NamedNone Named = iota

	// Modifiers
	Alt
	AltL
	AltR
	AltGr
	Cmd
	CmdL
	CmdR
	Ctrl
	CtrlL
	CtrlR
	Shift
	ShiftL
	ShiftR

	// Editing and whitespace
	Backspace
	Delete
	Enter
	Esc
	Insert
	Space
	Tab

	// Navigation
	Up
	Down
	Left
	Right
	Home
	End
	PageUp
	PageDown

	// Locks and system keys
	CapsLock
	NumLock
	ScrollLock
	Menu
	Pause
	PrintScreen

	// Function keys
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24

	// Media keys
	MediaPlayPause
	MediaVolumeMute
	MediaVolumeDown
	MediaVolumeUp
	MediaPrevious
	MediaNext

	namedCount
)

// namedNames holds the serialized identifier of every named key.
var namedNames = [namedCount]string{
	NamedNone:       "",
	Alt:             "alt",
	AltL:            "alt_l",
	AltR:            "alt_r",
	AltGr:           "alt_gr",
	Cmd:             "cmd",
	CmdL:            "cmd_l",
	CmdR:            "cmd_r",
	Ctrl:            "ctrl",
	CtrlL:           "ctrl_l",
	CtrlR:           "ctrl_r",
	Shift:           "shift",
	ShiftL:          "shift_l",
	ShiftR:          "shift_r",
	Backspace:       "backspace",
	Delete:          "delete",
	Enter:           "enter",
	Esc:             "esc",
	Insert:          "insert",
	Space:           "space",
	Tab:             "tab",
	Up:              "up",
	Down:            "down",
	Left:            "left",
	Right:           "right",
	Home:            "home",
	End:             "end",
	PageUp:          "page_up",
	PageDown:        "page_down",
	CapsLock:        "caps_lock",
	NumLock:         "num_lock",
	ScrollLock:      "scroll_lock",
	Menu:            "menu",
	Pause:           "pause",
	PrintScreen:     "print_screen",
	F1:              "f1",
	F2:              "f2",
	F3:              "f3",
	F4:              "f4",
	F5:              "f5",
	F6:              "f6",
	F7:              "f7",
	F8:              "f8",
	F9:              "f9",
	F10:             "f10",
	F11:             "f11",
	F12:             "f12",
	F13:             "f13",
	F14:             "f14",
	F15:             "f15",
	F16:             "f16",
	F17:             "f17",
	F18:             "f18",
	F19:             "f19",
	F20:             "f20",
	F21:             "f21",
	F22:             "f22",
	F23:             "f23",
	F24:             "f24",
	MediaPlayPause:  "media_play_pause",
	MediaVolumeMute: "media_volume_mute",
	MediaVolumeDown: "media_volume_down",
	MediaVolumeUp:   "media_volume_up",
	MediaPrevious:   "media_previous",
	MediaNext:       "media_next",
}

// nameMap maps serialized identifiers back to named keys.
var nameMap = func() map[string]Named {
	m := make(map[string]Named, namedCount)
	for n := Alt; n < namedCount; n++ {
		m[namedNames[n]] = n
	}
	return m
}()

// String returns the serialized identifier of the named key.
func (n Named) String() string {
	if n < namedCount {
		return namedNames[n]
	}
	return fmt.Sprintf("Named(%d)", n)
}

// Valid reports whether n is a member of the named key set.
func (n Named) Valid() bool {
	return n > NamedNone && n < namedCount
}

// IsModifier returns true for alt, altgr, cmd, ctrl and shift in any variant.
func (n Named) IsModifier() bool {
	return n >= Alt && n <= ShiftR
}

// IsFunctionKey returns true if this is a function key (F1-F24).
func (n Named) IsFunctionKey() bool {
	return n >= F1 && n <= F24
}

// NamedFromString returns the named key for a serialized identifier.
// Matching is exact; identifiers are always lowercase.
func NamedFromString(name string) (Named, bool) {
	n, ok := nameMap[name]
	return n, ok
}

// Key is either a named control key or a raw virtual-key code, never both.
type Key struct {
	named Named
	code  int
	raw   bool
}

// Of returns the Key for a named control key.
func Of(n Named) Key {
	return Key{named: n}
}

// Code returns the Key for a raw virtual-key code.
func Code(vk int) Key {
	return Key{code: vk, raw: true}
}

// Named returns the named key and true if k is a named key.
func (k Key) Named() (Named, bool) {
	if k.raw || k.named == NamedNone {
		return NamedNone, false
	}
	return k.named, true
}

// Code returns the virtual-key code and true if k is a raw code.
func (k Key) Code() (int, bool) {
	if !k.raw {
		return 0, false
	}
	return k.code, true
}

// IsNamed returns true if k holds a named key.
func (k Key) IsNamed() bool {
	return !k.raw && k.named != NamedNone
}

// IsCode returns true if k holds a raw virtual-key code.
func (k Key) IsCode() bool {
	return k.raw
}

// IsZero returns true for the zero Key.
func (k Key) IsZero() bool {
	return !k.raw && k.named == NamedNone
}

// String returns "<name>" for named keys and "vk:N" for raw codes.
func (k Key) String() string {
	switch {
	case k.raw:
		return fmt.Sprintf("vk:%d", k.code)
	case k.named != NamedNone:
		return "<" + k.named.String() + ">"
	default:
		return "none"
	}
}

// canonicalModifiers folds side-specific modifiers onto the generic one.
var canonicalModifiers = map[Named]Named{
	AltL:   Alt,
	AltR:   Alt,
	AltGr:  Alt,
	CmdL:   Cmd,
	CmdR:   Cmd,
	CtrlL:  Ctrl,
	CtrlR:  Ctrl,
	ShiftL: Shift,
	ShiftR: Shift,
}

// Canonical returns the form of k used for chord matching.
// Left/right modifier variants map to the generic modifier; everything
// else is returned unchanged.
func Canonical(k Key) Key {
	if n, ok := k.Named(); ok {
		if c, found := canonicalModifiers[n]; found {
			return Of(c)
		}
	}
	return k
}

// Virtual-key code ranges for characters that have a direct code.
const (
	vkDigit0  = 0x30
	vkLetterA = 0x41
)

// FromChar returns the raw-code key for a letter or digit.
// Letters are case-insensitive.
func FromChar(r rune) (Key, bool) {
	switch {
	case r >= '0' && r <= '9':
		return Code(vkDigit0 + int(r-'0')), true
	case r >= 'a' && r <= 'z':
		return Code(vkLetterA + int(r-'a')), true
	case r >= 'A' && r <= 'Z':
		return Code(vkLetterA + int(r-'A')), true
	default:
		return Key{}, false
	}
}

// FromName resolves a named key identifier, tolerating case and
// surrounding space. Used for user-written specifications.
func FromName(name string) (Key, bool) {
	n, ok := NamedFromString(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return Key{}, false
	}
	return Of(n), true
}
