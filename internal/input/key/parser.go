package key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// aliases maps common alternative spellings onto named key identifiers.
var aliases = map[string]Named{
	"control":  Ctrl,
	"option":   Alt,
	"opt":      Alt,
	"altgr":    AltGr,
	"command":  Cmd,
	"meta":     Cmd,
	"super":    Cmd,
	"win":      Cmd,
	"escape":   Esc,
	"cr":       Enter,
	"return":   Enter,
	"bs":       Backspace,
	"del":      Delete,
	"ins":      Insert,
	"pgup":     PageUp,
	"pageup":   PageUp,
	"pgdn":     PageDown,
	"pagedown": PageDown,
}

// Parse parses a single key specification.
//
// Supported formats:
//   - Named key in brackets: "<ctrl>", "<alt_gr>", "<f5>", "<esc>"
//   - Raw virtual-key code in brackets: "<vk:186>"
//   - Single letter or digit: "b", "B", "7" (raw virtual-key code)
func Parse(spec string) (Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Key{}, ErrEmptySpec
	}

	open := strings.HasPrefix(spec, "<")
	closed := strings.HasSuffix(spec, ">")
	if open != closed {
		return Key{}, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
	}
	if open {
		return parseNamed(spec[1 : len(spec)-1])
	}

	runes := []rune(spec)
	if len(runes) == 1 {
		if k, ok := FromChar(runes[0]); ok {
			return k, nil
		}
	}

	return Key{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
}

// parseNamed resolves the inside of a bracketed key name.
func parseNamed(inner string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(inner))
	if name == "" {
		return Key{}, ErrInvalidSpec
	}
	if strings.HasPrefix(name, "vk:") {
		vk, err := strconv.Atoi(name[len("vk:"):])
		if err != nil || vk < 0 {
			return Key{}, fmt.Errorf("%w: bad virtual-key code %q", ErrInvalidSpec, inner)
		}
		return Code(vk), nil
	}
	if n, ok := aliases[name]; ok {
		return Of(n), nil
	}
	if k, ok := FromName(name); ok {
		return k, nil
	}
	return Key{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, inner)
}

// ParseChord parses a '+' separated chord like "<ctrl>+<alt>+b".
// The returned keys are canonical and deduplicated, in spec order.
func ParseChord(spec string) ([]Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	parts := strings.Split(spec, "+")
	result := make([]Key, 0, len(parts))
	seen := make(map[Key]bool, len(parts))
	for _, part := range parts {
		k, err := Parse(part)
		if err != nil {
			return nil, fmt.Errorf("chord %q: %w", spec, err)
		}
		k = Canonical(k)
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, k)
	}
	return result, nil
}

// MustParseChord parses a chord and panics on error.
// Use only for known-valid specs in initialization code.
func MustParseChord(spec string) []Key {
	keys, err := ParseChord(spec)
	if err != nil {
		panic("invalid chord specification: " + spec + ": " + err.Error())
	}
	return keys
}

// FormatChord formats keys back into chord notation.
func FormatChord(keys []Key) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if n, ok := k.Named(); ok {
			parts = append(parts, "<"+n.String()+">")
			continue
		}
		if vk, ok := k.Code(); ok {
			parts = append(parts, formatCode(vk))
		}
	}
	return strings.Join(parts, "+")
}

// formatCode renders letter and digit codes as their character.
func formatCode(vk int) string {
	switch {
	case vk >= vkLetterA && vk < vkLetterA+26:
		return string(rune('a' + vk - vkLetterA))
	case vk >= vkDigit0 && vk < vkDigit0+10:
		return string(rune('0' + vk - vkDigit0))
	default:
		return fmt.Sprintf("<vk:%d>", vk)
	}
}
