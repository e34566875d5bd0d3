// Package terminal implements an input Source backed by a tcell screen.
//
// The terminal only reports the keys and pointer activity it receives
// while it has focus, so it suits recording and driving sessions from the
// terminal keyloop runs in. Modifier state arrives as flags on each key
// event; the source turns those into explicit press and release
// notifications around the key so that chords such as <ctrl>+<alt>+b are
// recognized by the hotkey listener.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// ErrInterrupted is returned by Stream when the user presses Ctrl+C.
var ErrInterrupted = errors.New("interrupted")

// Source reads notifications from a terminal screen.
type Source struct {
	mu      sync.Mutex
	screen  tcell.Screen
	owned   bool
	title   string
	status  string
	logs    []string
	running bool

	tracker pointerTracker
}

// Option configures a Source.
type Option func(*Source)

// WithScreen uses s instead of the controlling terminal.
func WithScreen(s tcell.Screen) Option {
	return func(src *Source) {
		src.screen = s
	}
}

// WithTitle sets the header line shown while streaming.
func WithTitle(title string) Option {
	return func(src *Source) {
		src.title = title
	}
}

// New creates a terminal source.
func New(opts ...Option) (*Source, error) {
	src := &Source{title: "keyloop"}
	for _, opt := range opts {
		opt(src)
	}
	if src.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("terminal: %w", err)
		}
		src.screen = screen
		src.owned = true
	}
	return src, nil
}

// acquire returns the screen for the next Stream. A finalized screen
// cannot be initialized again, so an owned screen is replaced each time.
func (s *Source) acquire() (tcell.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("terminal: %w", err)
		}
		s.screen = screen
	}
	return s.screen, nil
}

// release marks the screen finalized.
func (s *Source) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.owned {
		s.screen = nil
	}
}

// post wakes the event loop if Stream is running.
func (s *Source) post(data any) {
	s.mu.Lock()
	screen, running := s.screen, s.running
	s.mu.Unlock()
	if running {
		_ = screen.PostEvent(tcell.NewEventInterrupt(data))
	}
}

// redraw is posted to the event loop to repaint the status line.
type redraw struct{}

// SetStatus replaces the status line.
func (s *Source) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
	s.post(redraw{})
}

// maxLogLines is how many log lines stay on screen.
const maxLogLines = 8

// Write shows log output below the status line. It lets a logger write
// to the screen while Stream owns the terminal.
func (s *Source) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimRight(string(p), "\n"), "\n")

	s.mu.Lock()
	s.logs = append(s.logs, lines...)
	if n := len(s.logs); n > maxLogLines {
		s.logs = append([]string(nil), s.logs[n-maxLogLines:]...)
	}
	s.mu.Unlock()
	s.post(redraw{})
	return len(p), nil
}

// Stream takes over the terminal and emits notifications until ctx is
// done, the user presses Ctrl+C, or emit fails. The terminal is restored
// before Stream returns.
func (s *Source) Stream(ctx context.Context, emit func(input.Notification) error) error {
	screen, err := s.acquire()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()
	defer s.release()

	screen.EnableMouse()
	screen.HideCursor()

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.draw(screen)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return ctx.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var batch []input.Notification
		switch e := ev.(type) {
		case *tcell.EventKey:
			if isInterrupt(e) {
				return ErrInterrupted
			}
			batch = keyNotifications(e)
		case *tcell.EventMouse:
			batch = s.tracker.convert(e)
		case *tcell.EventResize:
			screen.Sync()
			s.draw(screen)
		case *tcell.EventInterrupt:
			if _, ok := e.Data().(redraw); ok {
				s.draw(screen)
			}
		}

		for _, n := range batch {
			if err := emit(n); err != nil {
				return err
			}
		}
	}
}

func isInterrupt(e *tcell.EventKey) bool {
	k := e.Key()
	return (k == tcell.KeyCtrlC || k == tcell.KeyETX) && e.Modifiers()&(tcell.ModAlt|tcell.ModShift|tcell.ModMeta) == 0
}

// draw paints the header and status lines.
func (s *Source) draw(screen tcell.Screen) {
	s.mu.Lock()
	title, status := s.title, s.status
	logs := append([]string(nil), s.logs...)
	s.mu.Unlock()

	screen.Clear()
	putLine(screen, 0, title, tcell.StyleDefault.Bold(true))
	putLine(screen, 1, status, tcell.StyleDefault)
	putLine(screen, 3, "Ctrl+C quits", tcell.StyleDefault.Dim(true))
	for i, line := range logs {
		putLine(screen, 5+i, line, tcell.StyleDefault.Dim(true))
	}
	screen.Show()
}

func putLine(screen tcell.Screen, y int, text string, style tcell.Style) {
	width, _ := screen.Size()
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// pointerTracker turns tcell's level-triggered mouse reports into move,
// press, release and scroll notifications.
type pointerTracker struct {
	pos     mouse.Position
	seen    bool
	buttons mouse.State
}

// buttonMap pairs tcell button bits with pointer buttons.
var buttonMap = []struct {
	mask   tcell.ButtonMask
	button mouse.Button
}{
	{tcell.ButtonPrimary, mouse.ButtonLeft},
	{tcell.ButtonMiddle, mouse.ButtonMiddle},
	{tcell.ButtonSecondary, mouse.ButtonRight},
	{tcell.Button4, mouse.ButtonX1},
	{tcell.Button5, mouse.ButtonX2},
}

func (t *pointerTracker) convert(e *tcell.EventMouse) []input.Notification {
	x, y := e.Position()
	pos := mouse.Position{X: x, Y: y}
	mask := e.Buttons()

	var out []input.Notification
	if !t.seen || !t.pos.Equal(pos) {
		out = append(out, input.Move(x, y))
		t.pos = pos
		t.seen = true
	}

	var held []mouse.Button
	for _, b := range buttonMap {
		if mask&b.mask != 0 {
			held = append(held, b.button)
		}
	}
	for _, tr := range t.buttons.Update(held...) {
		out = append(out, input.Click(x, y, tr.Button, tr.Pressed))
	}

	var dx, dy int
	if mask&tcell.WheelUp != 0 {
		dy++
	}
	if mask&tcell.WheelDown != 0 {
		dy--
	}
	if mask&tcell.WheelRight != 0 {
		dx++
	}
	if mask&tcell.WheelLeft != 0 {
		dx--
	}
	if dx != 0 || dy != 0 {
		out = append(out, input.Scroll(x, y, dx, dy))
	}
	return out
}
