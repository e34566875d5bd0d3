package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/hotkey"
	"github.com/dshills/keyloop/internal/input/terminal"
	"github.com/dshills/keyloop/internal/logging"
	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/metrics"
	"github.com/dshills/keyloop/internal/output"
	"github.com/dshills/keyloop/internal/session"
	"github.com/dshills/keyloop/internal/storage"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *App
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *App) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogging,
		b.initMetrics,
		b.initOutput,
		b.initMacro,
		b.initStorage,
		b.initSession,
		b.initInput,
		b.initWatcher,
		b.initMetricsServer,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLogging() error {
	cfg := b.app.cfg.Log

	level, ok := logging.ParseLevel(cfg.Level)
	if !ok {
		return &InitError{Component: "logging", Err: fmt.Errorf("invalid level %q", cfg.Level)}
	}
	format, ok := logging.ParseFormat(cfg.Format)
	if !ok {
		return &InitError{Component: "logging", Err: fmt.Errorf("invalid format %q", cfg.Format)}
	}

	out := b.app.opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	b.app.logOut = &redirect{w: out}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = b.app.logOut
	b.app.logger = logging.New(lc)
	b.initOrder = append(b.initOrder, "logging")
	return nil
}

func (b *bootstrapper) initMetrics() error {
	b.app.metrics = metrics.New()
	b.initOrder = append(b.initOrder, "metrics")
	return nil
}

func (b *bootstrapper) initOutput() error {
	if b.app.opts.Sink != nil {
		b.app.sink = b.app.opts.Sink
	} else {
		switch b.app.cfg.Output.Sink {
		case "virtual":
			b.app.sink = output.NewVirtual(0, 0)
		case "trace":
			b.app.sink = output.NewTrace(output.NewVirtual(0, 0), b.app.logger)
		default:
			return &InitError{Component: "output", Err: fmt.Errorf("unknown sink %q", b.app.cfg.Output.Sink)}
		}
	}
	b.initOrder = append(b.initOrder, "output")
	return nil
}

func (b *bootstrapper) initMacro() error {
	pc := b.app.cfg.Playback

	b.app.recorder = macro.NewRecorder(macro.WithRecorderObserver(b.app.metrics))
	b.app.player = macro.NewPlayer(b.app.sink,
		macro.WithPollInterval(pc.PollInterval),
		macro.WithRestartDelay(pc.RestartDelay),
		macro.WithMaxDuration(pc.MaxDuration),
		macro.WithLogger(b.app.logger.WithComponent("player")),
		macro.WithObserver(b.app.metrics),
	)
	b.initOrder = append(b.initOrder, "macro")
	return nil
}

func (b *bootstrapper) initStorage() error {
	b.app.store = storage.NewFileStore()
	b.initOrder = append(b.initOrder, "storage")
	return nil
}

func (b *bootstrapper) initSession() error {
	hk := b.app.cfg.Hotkeys
	start, err := hotkey.Parse(hk.Start)
	if err != nil {
		return &InitError{Component: "session", Err: fmt.Errorf("start hotkey: %w", err)}
	}
	stop, err := hotkey.Parse(hk.Stop)
	if err != nil {
		return &InitError{Component: "session", Err: fmt.Errorf("stop hotkey: %w", err)}
	}
	policy, ok := session.ParseIdleStopPolicy(b.app.cfg.Session.IdleStop)
	if !ok {
		return &InitError{Component: "session", Err: fmt.Errorf("invalid idle stop policy %q", b.app.cfg.Session.IdleStop)}
	}

	c, err := session.New(
		session.Config{Start: start, Stop: stop, IdleStop: policy},
		b.app.recorder, b.app.player,
		session.WithLogger(b.app.logger),
		session.WithStore(b.app.store),
	)
	if err != nil {
		return &InitError{Component: "session", Err: err}
	}
	c.Subscribe(b.app.onTransition)
	b.app.controller = c
	b.initOrder = append(b.initOrder, "session")
	return nil
}

func (b *bootstrapper) initInput() error {
	if b.app.opts.Source != nil {
		b.app.source = b.app.opts.Source
	} else {
		switch b.app.cfg.Input.Source {
		case "terminal":
			src, err := terminal.New(terminal.WithTitle("keyloop"))
			if err != nil {
				return &InitError{Component: "input", Err: err}
			}
			b.app.source = src
		case "none":
			b.app.source = input.Idle
		default:
			return &InitError{Component: "input", Err: fmt.Errorf("unknown source %q", b.app.cfg.Input.Source)}
		}
	}
	b.initOrder = append(b.initOrder, "input")
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.app.cfg.Record.Watch {
		return nil
	}
	w, err := storage.NewWatcher(b.app.cfg.Record.Path)
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	b.app.watcher = w
	b.app.wg.Add(1)
	go b.app.watchLoop(w)
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

func (b *bootstrapper) initMetricsServer() error {
	addr := b.app.cfg.Metrics.Listen
	if addr == "" {
		return nil
	}
	logger := b.app.logger.WithComponent("metrics")
	b.app.wg.Add(1)
	go func() {
		defer b.app.wg.Done()
		if err := b.app.metrics.Serve(b.app.ctx, addr, logger); err != nil {
			logger.WithError(&ComponentError{Component: "metrics", Action: "serve", Err: err}).Error("Metrics server stopped")
		}
	}()
	b.initOrder = append(b.initOrder, "metricsServer")
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
	b.app.cancel()
	b.app.wg.Wait()
}

func (b *bootstrapper) cleanupComponent(component string) {
	switch component {
	case "watcher":
		if b.app.watcher != nil {
			_ = b.app.watcher.Close()
			b.app.watcher = nil
		}
	case "session":
		if b.app.controller != nil {
			if err := b.app.controller.Close(); err != nil && !errors.Is(err, macro.ErrNotRecording) {
				b.app.logger.WithError(err).Warn("Session cleanup")
			}
			b.app.controller = nil
		}
	}
}
