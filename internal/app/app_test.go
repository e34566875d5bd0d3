package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/keyloop/internal/config"
	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/output"
	"github.com/dshills/keyloop/internal/session"
)

const waitTimeout = 3 * time.Second

var (
	ctrl = key.Of(key.CtrlL)
	alt  = key.Of(key.AltL)
	keyB = key.Code(0x42)
	keyH = key.Code(0x48)
)

func chord(keys ...key.Key) []input.Notification {
	var out []input.Notification
	for _, k := range keys {
		out = append(out, input.KeyDown(k))
	}
	for i := len(keys) - 1; i >= 0; i-- {
		out = append(out, input.KeyUp(keys[i]))
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Record.Path = filepath.Join(t.TempDir(), "data.json")
	cfg.Playback.RestartDelay = time.Hour
	cfg.Output.Sink = "virtual"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, ch chan input.Notification) (*App, *output.Virtual) {
	t.Helper()
	sink := output.NewVirtual(0, 0)
	a, err := New(cfg, Options{
		Source:    input.ChanSource(ch),
		Sink:      sink,
		LogOutput: io.Discard,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown() })
	return a, sink
}

func runSession(t *testing.T, a *App, mode session.Mode, startNow bool) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := a.RunSession(context.Background(), mode, startNow)
		done <- err
	}()
	return done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRecordSaveAndReplay(t *testing.T) {
	cfg := testConfig(t)

	rec := make(chan input.Notification, 64)
	for _, n := range chord(ctrl, alt, keyB) {
		rec <- n
	}
	rec <- input.Move(10, 20)
	rec <- input.Click(10, 20, mouse.ButtonLeft, true)
	rec <- input.Click(10, 20, mouse.ButtonLeft, false)
	for _, n := range chord(ctrl, alt, keyH) {
		rec <- n
	}

	recorder, _ := newTestApp(t, cfg, rec)
	tr, err := recorder.RunSession(context.Background(), session.ModeRecord, false)
	if err != nil {
		t.Fatalf("RunSession(record) error = %v", err)
	}
	if tr.From != session.Recording || tr.To != session.Idle {
		t.Errorf("ending transition = %+v", tr)
	}
	recorded := recorder.Sequence()
	if recorded.IsEmpty() {
		t.Fatal("nothing recorded")
	}
	if err := recorder.SaveRecord(); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}
	if _, err := os.Stat(cfg.Record.Path); err != nil {
		t.Fatalf("record file missing: %v", err)
	}

	play := make(chan input.Notification, 64)
	player, sink := newTestApp(t, cfg, play)
	if err := player.LoadRecord(); err != nil {
		t.Fatalf("LoadRecord() error = %v", err)
	}
	if got := player.Sequence().Len(); got != recorded.Len() {
		t.Fatalf("loaded %d events, want %d", got, recorded.Len())
	}

	done := runSession(t, player, session.ModePlay, true)
	waitFor(t, "the first pass", func() bool {
		for _, c := range sink.Calls() {
			if c.Op == output.OpKeyUp && c.Key == key.Of(key.Ctrl) {
				return true
			}
		}
		return false
	})
	if x, y := sink.Position(); x != 10 || y != 20 {
		t.Errorf("pointer at (%d, %d), want (10, 20)", x, y)
	}
	if sink.IsButtonHeld(mouse.ButtonLeft) {
		t.Error("left button left held after the pass")
	}

	for _, n := range chord(ctrl, alt, keyH) {
		play <- n
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunSession(play) error = %v", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("playback did not stop on the stop hotkey")
	}
	if player.Controller().State() != session.Idle {
		t.Errorf("State() = %v, want idle", player.Controller().State())
	}
}

func TestRunSessionQuitsOnIdleStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.IdleStop = "exit"

	ch := make(chan input.Notification, 16)
	for _, n := range chord(ctrl, alt, keyH) {
		ch <- n
	}
	a, _ := newTestApp(t, cfg, ch)

	_, err := a.RunSession(context.Background(), session.ModeRecord, false)
	if !errors.Is(err, ErrQuit) {
		t.Errorf("RunSession() error = %v, want ErrQuit", err)
	}
}

func TestRunSessionReturnsOnDisarm(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.IdleStop = "disarm"

	ch := make(chan input.Notification, 16)
	for _, n := range chord(ctrl, alt, keyH) {
		ch <- n
	}
	a, _ := newTestApp(t, cfg, ch)

	type result struct {
		tr  session.Transition
		err error
	}
	done := make(chan result, 1)
	go func() {
		tr, err := a.RunSession(context.Background(), session.ModeRecord, false)
		done <- result{tr, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(waitTimeout):
		t.Fatal("RunSession() did not return after stop while armed")
	}
	if res.err != nil {
		t.Fatalf("RunSession() error = %v, want nil", res.err)
	}
	want := session.Transition{From: session.Idle, To: session.Idle, Mode: session.ModeRecord}
	if res.tr != want {
		t.Errorf("transition = %+v, want %+v", res.tr, want)
	}
	if a.Controller().Mode() != session.ModeNone {
		t.Errorf("Mode() = %v, want none", a.Controller().Mode())
	}
	select {
	case <-a.Controller().Exit():
		t.Error("disarm closed the exit channel")
	default:
	}
}

func TestRunSessionPlayRequiresRecord(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t), make(chan input.Notification))

	_, err := a.RunSession(context.Background(), session.ModePlay, false)
	if !errors.Is(err, macro.ErrEmptySequence) {
		t.Errorf("RunSession() error = %v, want ErrEmptySequence", err)
	}
}

func TestRunSessionCanceled(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t), make(chan input.Notification))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := a.RunSession(ctx, session.ModeRecord, false)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunSession() error = %v, want context.Canceled", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("RunSession() did not return after cancel")
	}
	if a.Controller().Mode() != session.ModeNone {
		t.Errorf("Mode() = %v, want none", a.Controller().Mode())
	}
}

func TestRecordNeedsInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Source = "none"
	a, err := New(cfg, Options{LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown()

	if _, err := a.RunSession(context.Background(), session.ModeRecord, false); !errors.Is(err, ErrNoInput) {
		t.Errorf("RunSession() error = %v, want ErrNoInput", err)
	}
}

func TestNewRejectsBadHotkey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hotkeys.Start = "<hyper>+b"

	_, err := New(cfg, Options{Source: input.Idle, LogOutput: io.Discard})
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "session" {
		t.Errorf("New() error = %v, want session InitError", err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t), make(chan input.Notification))
	if err := a.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := a.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if _, err := a.RunSession(context.Background(), session.ModeRecord, false); !errors.Is(err, ErrClosed) {
		t.Errorf("RunSession() after Shutdown error = %v, want ErrClosed", err)
	}
}

func TestWatcherReloadsRecord(t *testing.T) {
	cfg := testConfig(t)
	cfg.Record.Watch = true
	a, _ := newTestApp(t, cfg, make(chan input.Notification))

	doc := `[{"type":2,"ts":0,"x":1,"y":1},{"type":2,"ts":1000,"x":2,"y":2}]`
	if err := os.WriteFile(cfg.Record.Path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "the record to reload", func() bool {
		return a.Sequence().Len() == 2
	})
}

func TestRecordingUpdatesMetrics(t *testing.T) {
	ch := make(chan input.Notification, 32)
	for _, n := range chord(ctrl, alt, keyB) {
		ch <- n
	}
	ch <- input.Move(1, 1)
	for _, n := range chord(ctrl, alt, keyH) {
		ch <- n
	}
	a, _ := newTestApp(t, testConfig(t), ch)

	if _, err := a.RunSession(context.Background(), session.ModeRecord, false); err != nil {
		t.Fatalf("RunSession() error = %v", err)
	}

	families, err := a.Metrics().Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var captured float64
	for _, f := range families {
		if f.GetName() != "keyloop_events_captured_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			captured += m.GetCounter().GetValue()
		}
	}
	if want := float64(a.Sequence().Len() - 4); captured != want {
		t.Errorf("captured = %v, want %v", captured, want)
	}
}
