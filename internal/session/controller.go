package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/keyloop/internal/input"
	"github.com/dshills/keyloop/internal/input/hotkey"
	"github.com/dshills/keyloop/internal/logging"
	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/storage"
)

// Config holds the controller's chords and idle policy.
type Config struct {
	Start    *hotkey.Hotkey
	Stop     *hotkey.Hotkey
	IdleStop IdleStopPolicy
}

// Controller is the session state machine.
type Controller struct {
	mu sync.Mutex

	state State
	mode  Mode
	seq   macro.Sequence

	// run is the active Recording or Playing run, nil while Idle.
	run *run

	// draining is closed once a stopped player has returned.
	draining chan struct{}

	recorder *macro.Recorder
	player   *macro.Player
	hotkeys  *hotkey.Listener
	idleStop IdleStopPolicy
	store    storage.Store
	logger   *logging.Logger

	callbacks []TransitionCallback

	exit     chan struct{}
	exitOnce sync.Once
}

type run struct {
	id     string
	mode   Mode
	logger *logging.Logger

	// Set for playback runs. started is closed once the start transition
	// has been delivered.
	cancel  context.CancelFunc
	done    chan struct{}
	started chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStore sets the storage used by LoadFile and SaveFile.
func WithStore(s storage.Store) Option {
	return func(c *Controller) {
		c.store = s
	}
}

// New creates an idle, unarmed controller.
func New(cfg Config, rec *macro.Recorder, player *macro.Player, opts ...Option) (*Controller, error) {
	if cfg.Start == nil || cfg.Stop == nil {
		return nil, ErrNoHotkey
	}

	hk := hotkey.NewListener()
	hk.Bind(TriggerStart, cfg.Start)
	hk.Bind(TriggerStop, cfg.Stop)

	c := &Controller{
		recorder: rec,
		player:   player,
		hotkeys:  hk,
		idleStop: cfg.IdleStop,
		logger:   logging.Nop(),
		exit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("session")
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the armed mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SessionID returns the ID of the active run, or "" while Idle.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return ""
	}
	return c.run.id
}

// Sequence returns the stored sequence.
func (c *Controller) Sequence() macro.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Hotkey returns the chord bound to t.
func (c *Controller) Hotkey(t hotkey.Trigger) *hotkey.Hotkey {
	return c.hotkeys.Hotkey(t)
}

// Exit is closed when a stop signal arrives while Idle under IdleStopExit.
func (c *Controller) Exit() <-chan struct{} {
	return c.exit
}

// Subscribe registers cb for every state change.
func (c *Controller) Subscribe(cb TransitionCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, cb)
}

// Arm selects what the next start signal does. Arming is only allowed
// while Idle. Arming for Play requires a non-empty sequence.
func (c *Controller) Arm(m Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return ErrNotIdle
	}
	if m == ModePlay && c.seq.IsEmpty() {
		c.logger.Warn("Can't load empty record")
		return &macro.PlaybackError{Err: macro.ErrEmptySequence}
	}
	c.mode = m
	return nil
}

// Start handles the start signal. It is ignored while a run is active and
// while unarmed. Armed for Play with nothing to play, it returns a
// *macro.PlaybackError and leaves the state unchanged.
func (c *Controller) Start() error {
	c.mu.Lock()

	if c.state != Idle || c.draining != nil {
		c.mu.Unlock()
		return nil
	}

	r := &run{id: uuid.NewString(), mode: c.mode}
	r.logger = c.logger.WithField("session_id", r.id)

	switch c.mode {
	case ModeRecord:
		if err := c.recorder.Start(); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("start recording: %w", err)
		}
		c.state = Recording
		r.logger.Info("Recording started")

	case ModePlay:
		if c.seq.IsEmpty() {
			c.mu.Unlock()
			return &macro.PlaybackError{Err: macro.ErrEmptySequence}
		}
		ctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		r.done = make(chan struct{})
		r.started = make(chan struct{})
		c.state = Playing
		r.logger.Info("Playback started")
		go c.play(ctx, r, c.seq)

	default:
		c.mu.Unlock()
		return nil
	}

	c.run = r
	tr := Transition{From: Idle, To: c.state, Mode: r.mode, SessionID: r.id}
	cbs := c.callbacks
	c.mu.Unlock()

	notify(cbs, tr)
	if r.started != nil {
		close(r.started)
	}
	return nil
}

// play runs the player and returns the controller to Idle if playback ends
// on its own.
func (c *Controller) play(ctx context.Context, r *run, seq macro.Sequence) {
	defer close(r.done)

	err := c.player.Play(ctx, seq)

	c.mu.Lock()
	if c.run != r {
		// Stop already moved us to Idle.
		c.mu.Unlock()
		return
	}
	c.run = nil
	c.state = Idle
	c.mode = ModeNone
	cbs := c.callbacks
	c.mu.Unlock()
	r.cancel()

	if err != nil {
		r.logger.WithError(err).Error("Playback aborted")
	} else {
		r.logger.Info("Playback finished")
	}
	<-r.started
	notify(cbs, Transition{From: Playing, To: Idle, Mode: r.mode, SessionID: r.id, Err: err})
}

// Stop handles the stop signal. A recording is finished and its sequence
// stored; playback is canceled and Stop waits for the player to return.
// While Idle the IdleStopPolicy applies.
func (c *Controller) Stop() error {
	return c.stop(true)
}

// Close ends any active run without applying the idle policy.
func (c *Controller) Close() error {
	return c.stop(false)
}

func (c *Controller) stop(idlePolicy bool) error {
	c.mu.Lock()

	switch c.state {
	case Recording:
		seq, err := c.recorder.Stop()
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("stop recording: %w", err)
		}
		r := c.run
		c.seq = seq
		c.run = nil
		c.state = Idle
		c.mode = ModeNone
		cbs := c.callbacks
		c.mu.Unlock()

		r.logger.WithField("events", seq.Len()).Info("Recording stopped")
		notify(cbs, Transition{From: Recording, To: Idle, Mode: r.mode, SessionID: r.id})
		return nil

	case Playing:
		r := c.run
		c.run = nil
		c.state = Idle
		c.mode = ModeNone
		c.draining = r.done
		cbs := c.callbacks
		c.mu.Unlock()

		r.cancel()
		<-r.done

		c.mu.Lock()
		c.draining = nil
		c.mu.Unlock()
		r.logger.Info("Playback stopped")
		notify(cbs, Transition{From: Playing, To: Idle, Mode: r.mode, SessionID: r.id})
		return nil

	default:
		if !idlePolicy || c.idleStop == IdleStopIgnore {
			c.mu.Unlock()
			return nil
		}
		if c.idleStop == IdleStopDisarm {
			armed := c.mode
			c.mode = ModeNone
			cbs := c.callbacks
			c.mu.Unlock()
			if armed == ModeNone {
				return nil
			}
			c.logger.WithField("mode", armed).Info("Stop while idle, disarmed")
			notify(cbs, Transition{From: Idle, To: Idle, Mode: armed})
			return nil
		}
		c.mode = ModeNone
		c.mu.Unlock()

		c.exitOnce.Do(func() {
			c.logger.Info("Stop while idle, exiting")
			close(c.exit)
		})
		return nil
	}
}

// HandleNotification records n if a recording is active and then applies
// any hotkey it completes. It must not be called concurrently.
func (c *Controller) HandleNotification(n input.Notification) {
	c.recorder.Handle(n)

	if n.Kind != input.NotifyKey {
		return
	}
	for _, t := range c.hotkeys.Handle(n.Key, n.Pressed) {
		var err error
		switch t {
		case TriggerStart:
			err = c.Start()
		case TriggerStop:
			err = c.Stop()
		}
		if err != nil {
			c.logger.WithError(err).Warn("Hotkey %s", t)
		}
	}
}

// Run drains src through a bounded queue into HandleNotification until ctx
// is done, the source ends, or the controller exits.
func (c *Controller) Run(ctx context.Context, src input.Source, queueSize int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := input.NewQueue(ctx, src, queueSize)
	for {
		select {
		case <-ctx.Done():
			<-q.Done()
			return ctx.Err()
		case <-c.exit:
			cancel()
			<-q.Done()
			return nil
		case n, ok := <-q.C():
			if !ok {
				return q.Err()
			}
			c.HandleNotification(n)
		}
	}
}

// LoadSequence replaces the stored sequence. It is only allowed while Idle.
func (c *Controller) LoadSequence(seq macro.Sequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return ErrNotIdle
	}
	c.seq = seq
	return nil
}

// LoadBytes decodes a sequence document and stores it. On any error the
// stored sequence is left untouched.
func (c *Controller) LoadBytes(data []byte) error {
	if c.State() != Idle {
		return ErrNotIdle
	}
	seq, err := macro.Decode(data)
	if err != nil {
		return err
	}
	return c.LoadSequence(seq)
}

// LoadFile reads and decodes path from the configured store. Storage
// errors are returned as-is and leave the stored sequence untouched.
func (c *Controller) LoadFile(path string) error {
	if c.store == nil {
		return ErrNoStore
	}
	if c.State() != Idle {
		return ErrNotIdle
	}
	data, err := c.store.Load(path)
	if err != nil {
		return err
	}
	if err := c.LoadBytes(data); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	c.logger.WithField("path", path).Info("Loaded record (%d events)", c.Sequence().Len())
	return nil
}

// SaveFile encodes the stored sequence and writes it to path.
func (c *Controller) SaveFile(path string) error {
	if c.store == nil {
		return ErrNoStore
	}
	seq := c.Sequence()
	if seq.IsEmpty() {
		return fmt.Errorf("save %s: %w", path, macro.ErrEmptySequence)
	}
	data, err := macro.Encode(seq)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := c.store.Save(path, data); err != nil {
		return err
	}
	c.logger.WithField("path", path).Info("Saved record (%d events)", seq.Len())
	return nil
}

func notify(cbs []TransitionCallback, tr Transition) {
	for _, cb := range cbs {
		if cb != nil {
			cb(tr)
		}
	}
}
