// Package app wires keyloop's components together: configuration, logging,
// metrics, the recorder and player, storage, the session controller and
// the input source. The CLI drives an App one session at a time.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dshills/keyloop/internal/config"
	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/logging"
	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/metrics"
	"github.com/dshills/keyloop/internal/output"
	"github.com/dshills/keyloop/internal/session"
	"github.com/dshills/keyloop/internal/storage"
)

// App is the central coordinator for all keyloop components.
type App struct {
	cfg  *config.Config
	opts Options

	// Infrastructure
	logger  *logging.Logger
	logOut  *redirect
	metrics *metrics.Metrics

	// Core
	sink       output.Sink
	store      storage.Store
	recorder   *macro.Recorder
	player     *macro.Player
	controller *session.Controller
	source     input.Source
	watcher    *storage.Watcher

	// Background goroutines run until Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	ended chan session.Transition

	closed atomic.Bool
}

// Options configures the application.
type Options struct {
	// Source replaces the configured input source.
	Source input.Source

	// Sink replaces the configured output sink.
	Sink output.Sink

	// LogOutput is where logs are written outside terminal sessions.
	// Defaults to os.Stderr.
	LogOutput io.Writer
}

// New creates an App from a validated configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}

	b := newBootstrapper(a)
	if err := b.bootstrap(); err != nil {
		cancel()
		return nil, err
	}
	return a, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the root logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// Metrics returns the metrics collectors.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Controller returns the session controller.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// Sink returns the output sink playback drives.
func (a *App) Sink() output.Sink {
	return a.sink
}

// Shutdown stops background work and ends any active session.
// It is safe to call more than once.
func (a *App) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if a.controller != nil {
		err = a.controller.Close()
	}
	if a.watcher != nil {
		if werr := a.watcher.Close(); werr != nil && err == nil {
			err = werr
		}
	}
	a.cancel()
	a.wg.Wait()
	return err
}

// redirect is a log writer whose target can be swapped while loggers
// derived from the root logger keep writing to it.
type redirect struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *redirect) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Write(p)
}

// swap sets the target and returns the previous one.
func (r *redirect) swap(w io.Writer) io.Writer {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.w
	r.w = w
	return prev
}
