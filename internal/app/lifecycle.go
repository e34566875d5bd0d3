package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/keyloop/internal/input/terminal"
	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/session"
	"github.com/dshills/keyloop/internal/storage"
)

// statusSetter is implemented by sources that can display a status line.
type statusSetter interface {
	SetStatus(text string)
}

// RunSession arms the controller for mode and feeds it input until the
// session finishes, then returns the transition that ended it.
//
// With startNow the start signal is given immediately instead of waiting
// for the start hotkey. A stop signal while Idle under the exit policy, or
// an interrupt from the terminal, returns ErrQuit. Under the disarm policy
// the same stop returns the Idle to Idle transition with a nil error.
func (a *App) RunSession(ctx context.Context, mode session.Mode, startNow bool) (session.Transition, error) {
	if a.closed.Load() {
		return session.Transition{}, ErrClosed
	}
	if mode == session.ModeRecord && a.cfg.Input.Source == "none" && a.opts.Source == nil {
		return session.Transition{}, ErrNoInput
	}
	if err := a.controller.Arm(mode); err != nil {
		return session.Transition{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ended := make(chan session.Transition, 1)
	a.mu.Lock()
	a.ended = ended
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.ended = nil
		a.mu.Unlock()
	}()

	if w, ok := a.source.(io.Writer); ok {
		prev := a.logOut.swap(w)
		defer a.logOut.swap(prev)
	}
	a.setStatus(a.armedStatus(mode))

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.controller.Run(ctx, a.source, a.cfg.Input.QueueSize)
	}()

	if startNow {
		if err := a.controller.Start(); err != nil {
			cancel()
			<-runErr
			_ = a.controller.Arm(session.ModeNone)
			return session.Transition{}, err
		}
	}

	select {
	case tr := <-ended:
		cancel()
		<-runErr
		return tr, nil

	case err := <-runErr:
		_ = a.controller.Close()
		_ = a.controller.Arm(session.ModeNone)

		select {
		case <-a.controller.Exit():
			return session.Transition{}, ErrQuit
		default:
		}
		if errors.Is(err, terminal.ErrInterrupted) {
			return session.Transition{}, ErrQuit
		}
		if err == nil {
			err = ctx.Err()
		}
		return session.Transition{}, err
	}
}

func (a *App) armedStatus(mode session.Mode) string {
	start := a.controller.Hotkey(session.TriggerStart)
	stop := a.controller.Hotkey(session.TriggerStop)
	switch mode {
	case session.ModeRecord:
		return fmt.Sprintf("Ready to record: %s starts, %s stops", start, stop)
	case session.ModePlay:
		return fmt.Sprintf("Ready to play %d events: %s starts, %s stops", a.controller.Sequence().Len(), start, stop)
	default:
		return ""
	}
}

func (a *App) setStatus(text string) {
	if s, ok := a.source.(statusSetter); ok {
		s.SetStatus(text)
	}
}

// onTransition updates metrics and the status line, and ends the running
// session when the controller returns to Idle.
func (a *App) onTransition(tr session.Transition) {
	a.metrics.SetState(int(tr.To))

	switch tr.To {
	case session.Recording:
		a.setStatus("Recording...")
	case session.Playing:
		a.setStatus("Playing...")
	case session.Idle:
		a.setStatus("Stopped")
		a.mu.Lock()
		ended := a.ended
		a.mu.Unlock()
		if ended != nil {
			select {
			case ended <- tr:
			default:
			}
		}
	}
}

// LoadRecord loads the configured record file.
func (a *App) LoadRecord() error {
	return a.controller.LoadFile(a.cfg.Record.Path)
}

// SaveRecord writes the last recording to the configured record file.
func (a *App) SaveRecord() error {
	return a.controller.SaveFile(a.cfg.Record.Path)
}

// Sequence returns the stored sequence.
func (a *App) Sequence() macro.Sequence {
	return a.controller.Sequence()
}

// watchLoop reloads the record file when it changes on disk. Changes that
// arrive during a session are picked up by the next change while Idle.
func (a *App) watchLoop(w *storage.Watcher) {
	defer a.wg.Done()
	logger := a.logger.WithComponent("watcher").WithField("path", w.Path())

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-w.Changes():
			if a.controller.State() != session.Idle {
				logger.Debug("Record changed during a session, not reloading")
				continue
			}
			if err := a.LoadRecord(); err != nil {
				logger.WithError(&ComponentError{Component: "watcher", Action: "reload", Err: err}).Warn("Reload failed")
			}
		case err := <-w.Errors():
			logger.WithError(err).Warn("Watch error")
		}
	}
}
