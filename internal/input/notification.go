package input

import (
	"fmt"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// NotificationKind identifies what a raw device notification reports.
type NotificationKind uint8

const (
	// NotifyMove reports a new absolute pointer position.
	NotifyMove NotificationKind = iota
	// NotifyClick reports a button press or release at a position.
	NotifyClick
	// NotifyScroll reports wheel deltas at a position.
	NotifyScroll
	// NotifyKey reports a key press or release.
	NotifyKey
)

// String returns a string representation of the kind.
func (k NotificationKind) String() string {
	switch k {
	case NotifyMove:
		return "move"
	case NotifyClick:
		return "click"
	case NotifyScroll:
		return "scroll"
	case NotifyKey:
		return "key"
	default:
		return fmt.Sprintf("NotificationKind(%d)", k)
	}
}

// Notification is one raw event as delivered by a Source.
type Notification struct {
	Kind NotificationKind

	// X and Y are the absolute pointer position for pointer notifications.
	X, Y int

	// DX and DY are the wheel deltas for NotifyScroll.
	DX, DY int

	// Key is the key for NotifyKey.
	Key key.Key

	// Button is the button for NotifyClick.
	Button mouse.Button

	// Pressed distinguishes press from release for NotifyClick and NotifyKey.
	Pressed bool
}

// Move creates a pointer move notification.
func Move(x, y int) Notification {
	return Notification{Kind: NotifyMove, X: x, Y: y}
}

// Click creates a button press or release notification.
func Click(x, y int, b mouse.Button, pressed bool) Notification {
	return Notification{Kind: NotifyClick, X: x, Y: y, Button: b, Pressed: pressed}
}

// Scroll creates a wheel notification.
func Scroll(x, y, dx, dy int) Notification {
	return Notification{Kind: NotifyScroll, X: x, Y: y, DX: dx, DY: dy}
}

// KeyDown creates a key press notification.
func KeyDown(k key.Key) Notification {
	return Notification{Kind: NotifyKey, Key: k, Pressed: true}
}

// KeyUp creates a key release notification.
func KeyUp(k key.Key) Notification {
	return Notification{Kind: NotifyKey, Key: k, Pressed: false}
}

// String returns a compact description for logs.
func (n Notification) String() string {
	state := "up"
	if n.Pressed {
		state = "down"
	}
	switch n.Kind {
	case NotifyMove:
		return fmt.Sprintf("move(%d,%d)", n.X, n.Y)
	case NotifyClick:
		return fmt.Sprintf("click(%d,%d,%s,%s)", n.X, n.Y, n.Button, state)
	case NotifyScroll:
		return fmt.Sprintf("scroll(%d,%d,%+d,%+d)", n.X, n.Y, n.DX, n.DY)
	case NotifyKey:
		return fmt.Sprintf("key(%s,%s)", n.Key, state)
	default:
		return n.Kind.String()
	}
}
