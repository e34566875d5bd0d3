package terminal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/hotkey"
	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

func letter(r rune) key.Key {
	k, _ := key.FromChar(r)
	return k
}

func TestKeyNotifications(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want []input.Notification
	}{
		{
			name: "plain letter",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
			want: []input.Notification{input.KeyDown(letter('x')), input.KeyUp(letter('x'))},
		},
		{
			name: "upper case adds shift",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModNone),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Shift)),
				input.KeyDown(letter('x')), input.KeyUp(letter('x')),
				input.KeyUp(key.Of(key.Shift)),
			},
		},
		{
			name: "space",
			ev:   tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Of(key.Space)), input.KeyUp(key.Of(key.Space))},
		},
		{
			name: "punctuation uses its code point",
			ev:   tcell.NewEventKey(tcell.KeyRune, '@', tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Code('@')), input.KeyUp(key.Code('@'))},
		},
		{
			name: "ctrl alt b",
			ev:   tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl|tcell.ModAlt),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Ctrl)),
				input.KeyDown(key.Of(key.Alt)),
				input.KeyDown(letter('b')), input.KeyUp(letter('b')),
				input.KeyUp(key.Of(key.Alt)),
				input.KeyUp(key.Of(key.Ctrl)),
			},
		},
		{
			name: "ctrl h is not backspace",
			ev:   tcell.NewEventKey(tcell.KeyCtrlH, 0, tcell.ModCtrl|tcell.ModAlt),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Ctrl)),
				input.KeyDown(key.Of(key.Alt)),
				input.KeyDown(letter('h')), input.KeyUp(letter('h')),
				input.KeyUp(key.Of(key.Alt)),
				input.KeyUp(key.Of(key.Ctrl)),
			},
		},
		{
			name: "raw control byte with alt",
			ev:   tcell.NewEventKey(tcell.KeySTX, 0, tcell.ModAlt),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Ctrl)),
				input.KeyDown(key.Of(key.Alt)),
				input.KeyDown(letter('b')), input.KeyUp(letter('b')),
				input.KeyUp(key.Of(key.Alt)),
				input.KeyUp(key.Of(key.Ctrl)),
			},
		},
		{
			name: "ctrl backspace byte",
			ev:   tcell.NewEventKey(tcell.KeyBS, 0, tcell.ModCtrl),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Ctrl)),
				input.KeyDown(letter('h')), input.KeyUp(letter('h')),
				input.KeyUp(key.Of(key.Ctrl)),
			},
		},
		{
			name: "backspace",
			ev:   tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Of(key.Backspace)), input.KeyUp(key.Of(key.Backspace))},
		},
		{
			name: "enter",
			ev:   tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Of(key.Enter)), input.KeyUp(key.Of(key.Enter))},
		},
		{
			name: "function key",
			ev:   tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Of(key.F5)), input.KeyUp(key.Of(key.F5))},
		},
		{
			name: "last function key",
			ev:   tcell.NewEventKey(tcell.KeyF24, 0, tcell.ModNone),
			want: []input.Notification{input.KeyDown(key.Of(key.F24)), input.KeyUp(key.Of(key.F24))},
		},
		{
			name: "function key beyond f24",
			ev:   tcell.NewEventKey(tcell.KeyF25, 0, tcell.ModNone),
			want: nil,
		},
		{
			name: "backtab",
			ev:   tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone),
			want: []input.Notification{
				input.KeyDown(key.Of(key.Shift)),
				input.KeyDown(key.Of(key.Tab)), input.KeyUp(key.Of(key.Tab)),
				input.KeyUp(key.Of(key.Shift)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keyNotifications(tt.ev)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("notification %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeyNotificationsTriggerHotkeys(t *testing.T) {
	l := hotkey.NewListener()
	for _, spec := range []string{"<ctrl>+<alt>+b", "<ctrl>+<alt>+h"} {
		h, err := hotkey.Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", spec, err)
		}
		trig := hotkey.Trigger("start")
		if spec == "<ctrl>+<alt>+h" {
			trig = "stop"
		}
		l.Bind(trig, h)
	}

	var fired []hotkey.Trigger
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl|tcell.ModAlt),
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlH, 0, tcell.ModCtrl|tcell.ModAlt),
	} {
		for _, n := range keyNotifications(ev) {
			fired = append(fired, l.Handle(n.Key, n.Pressed)...)
		}
	}

	if len(fired) != 2 || fired[0] != "start" || fired[1] != "stop" {
		t.Errorf("fired = %v, want [start stop]", fired)
	}
}

func TestPointerTracker(t *testing.T) {
	var tr pointerTracker

	got := tr.convert(tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone))
	want := []input.Notification{input.Move(3, 4)}
	assertNotifications(t, "first report", got, want)

	got = tr.convert(tcell.NewEventMouse(3, 4, tcell.ButtonPrimary, tcell.ModNone))
	want = []input.Notification{input.Click(3, 4, mouse.ButtonLeft, true)}
	assertNotifications(t, "press", got, want)

	got = tr.convert(tcell.NewEventMouse(5, 4, tcell.ButtonPrimary, tcell.ModNone))
	want = []input.Notification{input.Move(5, 4)}
	assertNotifications(t, "drag", got, want)

	got = tr.convert(tcell.NewEventMouse(5, 4, tcell.ButtonSecondary, tcell.ModNone))
	want = []input.Notification{
		input.Click(5, 4, mouse.ButtonLeft, false),
		input.Click(5, 4, mouse.ButtonRight, true),
	}
	assertNotifications(t, "switch buttons", got, want)

	got = tr.convert(tcell.NewEventMouse(5, 4, tcell.WheelUp, tcell.ModNone))
	want = []input.Notification{
		input.Click(5, 4, mouse.ButtonRight, false),
		input.Scroll(5, 4, 0, 1),
	}
	assertNotifications(t, "wheel", got, want)

	got = tr.convert(tcell.NewEventMouse(5, 4, tcell.WheelLeft, tcell.ModNone))
	want = []input.Notification{input.Scroll(5, 4, -1, 0)}
	assertNotifications(t, "horizontal wheel", got, want)
}

func assertNotifications(t *testing.T, step string, got, want []input.Notification) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", step, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: notification %d = %v, want %v", step, i, got[i], want[i])
		}
	}
}

func TestIsInterrupt(t *testing.T) {
	if !isInterrupt(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)) {
		t.Error("Ctrl+C should interrupt")
	}
	if isInterrupt(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl|tcell.ModAlt)) {
		t.Error("Ctrl+Alt+C should not interrupt")
	}
	if isInterrupt(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone)) {
		t.Error("plain c should not interrupt")
	}
}

func TestStreamSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	src, err := New(WithScreen(screen), WithTitle("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := make(chan input.Notification, 16)
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(context.Background(), func(n input.Notification) error {
			got <- n
			return nil
		})
	}()

	waitRunning(t, src)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	for _, want := range []input.Notification{input.KeyDown(letter('q')), input.KeyUp(letter('q'))} {
		select {
		case n := <-got:
			if n != want {
				t.Errorf("notification = %v, want %v", n, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a notification")
		}
	}

	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("Stream() error = %v, want ErrInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream() did not return after Ctrl+C")
	}
}

func TestStreamCanceled(t *testing.T) {
	src, err := New(WithScreen(tcell.NewSimulationScreen("UTF-8")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, func(input.Notification) error { return nil })
	}()

	waitRunning(t, src)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Stream() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream() did not return after cancel")
	}
}

func TestWriteKeepsRecentLines(t *testing.T) {
	src, err := New(WithScreen(tcell.NewSimulationScreen("UTF-8")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range maxLogLines + 3 {
		line := fmt.Sprintf("line %d\n", i)
		if n, err := src.Write([]byte(line)); err != nil || n != len(line) {
			t.Fatalf("Write() = %d, %v", n, err)
		}
	}

	src.mu.Lock()
	logs := append([]string(nil), src.logs...)
	src.mu.Unlock()

	if len(logs) != maxLogLines {
		t.Fatalf("kept %d lines, want %d", len(logs), maxLogLines)
	}
	if logs[0] != "line 3" || logs[maxLogLines-1] != fmt.Sprintf("line %d", maxLogLines+2) {
		t.Errorf("logs = %q", logs)
	}
}

func waitRunning(t *testing.T, src *Source) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		src.mu.Lock()
		running := src.running
		src.mu.Unlock()
		if running {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("source never started")
}
