// Package key provides the keyboard key identity used throughout keyloop.
//
// A Key is a tagged variant holding exactly one of two representations:
//
//   - Named: a control key from a fixed symbolic set (alt, ctrl, shift,
//     cmd, function keys, navigation keys, ...). Named keys serialize as
//     their lowercase identifier, for example "alt_gr" or "page_down".
//   - Code: a raw virtual-key code for everything else (letters, digits,
//     punctuation, OEM keys). Codes serialize as integers.
//
// The zero Key is neither and represents "no key".
//
// # Chords
//
// Hotkey chords are written as a '+' separated list where named keys are
// wrapped in angle brackets and single characters stand for their
// virtual-key code:
//
//	<ctrl>+<alt>+b
//	<shift>+<f5>
//
// Left/right modifier variants are folded onto the generic modifier by
// Canonical, so "<ctrl>" is satisfied by either control key.
package key
