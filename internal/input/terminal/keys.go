package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/key"
)

var namedKeys = map[tcell.Key]key.Named{
	tcell.KeyEnter:      key.Enter,
	tcell.KeyTab:        key.Tab,
	tcell.KeyBacktab:    key.Tab,
	tcell.KeyEscape:     key.Esc,
	tcell.KeyBackspace:  key.Backspace,
	tcell.KeyBackspace2: key.Backspace,
	tcell.KeyDelete:     key.Delete,
	tcell.KeyInsert:     key.Insert,
	tcell.KeyHome:       key.Home,
	tcell.KeyEnd:        key.End,
	tcell.KeyPgUp:       key.PageUp,
	tcell.KeyPgDn:       key.PageDown,
	tcell.KeyUp:         key.Up,
	tcell.KeyDown:       key.Down,
	tcell.KeyLeft:       key.Left,
	tcell.KeyRight:      key.Right,
	tcell.KeyPause:      key.Pause,
	tcell.KeyPrint:      key.PrintScreen,
}

// Function keys F1-F24 are contiguous in both enumerations.
const functionKeys = 24

// keyNotifications expands a terminal key event into the press and release
// notifications a keyboard hook would have reported: modifiers down, the
// key down and up, modifiers up in reverse order.
func keyNotifications(e *tcell.EventKey) []input.Notification {
	k, mods, ok := convertKey(e)
	if !ok {
		return nil
	}

	out := make([]input.Notification, 0, 2+2*len(mods))
	for _, m := range mods {
		out = append(out, input.KeyDown(key.Of(m)))
	}
	out = append(out, input.KeyDown(k), input.KeyUp(k))
	for i := len(mods) - 1; i >= 0; i-- {
		out = append(out, input.KeyUp(key.Of(mods[i])))
	}
	return out
}

// convertKey maps a tcell key event to a key and the modifiers held with it.
func convertKey(e *tcell.EventKey) (key.Key, []key.Named, bool) {
	tk := e.Key()
	mask := e.Modifiers()

	var k key.Key
	switch {
	case tk >= tcell.KeyCtrlA && tk <= tcell.KeyCtrlZ:
		k, _ = key.FromChar(rune('a' + int(tk-tcell.KeyCtrlA)))
		mask |= tcell.ModCtrl
	case tk >= tcell.KeySOH && tk <= tcell.KeySUB && (mask&tcell.ModCtrl != 0 || !hasNamed(tk)):
		// Raw control bytes; Tab, Enter and Backspace share these codes.
		k, _ = key.FromChar(rune('a' + int(tk-tcell.KeySOH)))
		mask |= tcell.ModCtrl
	case tk == tcell.KeyRune:
		r := e.Rune()
		if r == ' ' {
			k = key.Of(key.Space)
			break
		}
		if c, ok := key.FromChar(r); ok {
			k = c
			if unicode.IsUpper(r) {
				mask |= tcell.ModShift
			}
			break
		}
		k = key.Code(int(r))
	case tk >= tcell.KeyF1 && tk < tcell.KeyF1+functionKeys:
		k = key.Of(key.F1 + key.Named(tk-tcell.KeyF1))
	default:
		n, ok := namedKeys[tk]
		if !ok {
			return key.Key{}, nil, false
		}
		k = key.Of(n)
		if tk == tcell.KeyBacktab {
			mask |= tcell.ModShift
		}
	}

	return k, modifiers(mask), true
}

func hasNamed(tk tcell.Key) bool {
	_, ok := namedKeys[tk]
	return ok
}

// modifiers lists the held modifiers in press order.
func modifiers(mask tcell.ModMask) []key.Named {
	var mods []key.Named
	if mask&tcell.ModCtrl != 0 {
		mods = append(mods, key.Ctrl)
	}
	if mask&tcell.ModAlt != 0 {
		mods = append(mods, key.Alt)
	}
	if mask&tcell.ModShift != 0 {
		mods = append(mods, key.Shift)
	}
	if mask&tcell.ModMeta != 0 {
		mods = append(mods, key.Cmd)
	}
	return mods
}
