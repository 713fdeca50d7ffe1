package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/source"
	"github.com/rileyhilliard/sensormon/internal/wire"
)

const noticeBuffer = 16

// Archiver receives a copy of every accepted reading. Failures are the
// archiver's business; the session never stops because of them.
type Archiver interface {
	Begin(source, preset string, started time.Time) error
	Record(r sensor.Reading)
}

// Options are the optional collaborators of a Controller.
type Options struct {
	Log     logger.Logger
	Archive Archiver
	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Controller runs sessions against a single source. Start and Stop may be
// called from any goroutine; the history is safe to snapshot concurrently.
type Controller struct {
	cfg     *config.Config
	src     source.Source
	parser  wire.Parser
	hist    *history.Buffer
	log     logger.Logger
	archive Archiver
	now     func() time.Time
	notices chan Notice

	discarded atomic.Uint64

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	linkMu sync.Mutex
	lock   *lock.Lock
}

// New creates a controller for src using the channels and format in cfg.
func New(cfg *config.Config, src source.Source, opts Options) *Controller {
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		cfg:     cfg,
		src:     src,
		parser:  source.ParserFor(cfg),
		hist:    history.New(len(cfg.Channels), cfg.History.Size),
		log:     log,
		archive: opts.Archive,
		now:     now,
		notices: make(chan Notice, noticeBuffer),
	}
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Started returns when the current (or last) session started.
func (c *Controller) Started() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Source returns the source the controller reads from.
func (c *Controller) Source() source.Source { return c.src }

// Snapshot copies the history.
func (c *Controller) Snapshot() history.Snapshot { return c.hist.Snapshot() }

// Discarded counts malformed lines and feed entries dropped since creation.
func (c *Controller) Discarded() uint64 { return c.discarded.Load() }

// Notices delivers link and poll notices. The channel is never closed.
func (c *Controller) Notices() <-chan Notice { return c.notices }

// Start opens the link if needed, sends the start token, clears the history
// and starts the reader. It fails with ErrBusy unless the controller is
// Disconnected. On failure the history is left untouched.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = Connecting
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		c.setState(Disconnected)
		return err
	}

	c.hist.Reset()
	started := c.now()
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.state = Running
	c.cancel = cancel
	c.done = done
	c.started = started
	c.mu.Unlock()

	if c.archive != nil {
		if err := c.archive.Begin(c.src.Name(), c.cfg.Preset, started); err != nil {
			c.log.Warn("archive unavailable: %v", err)
			c.notify(NoticeWarn, "Archive unavailable: "+smerrors.Summary(err), err)
		}
	}

	c.log.Info("session started on %s", c.src.Name())
	go c.run(runCtx, done, started)
	return nil
}

func (c *Controller) connect(ctx context.Context) error {
	if err := c.acquireLock(); err != nil {
		return err
	}
	if err := c.src.Open(ctx); err != nil {
		c.closeLink()
		var se *smerrors.Error
		if errors.As(err, &se) || errors.Is(err, context.Canceled) {
			return err
		}
		return smerrors.WrapWithCode(err, smerrors.ErrConnect,
			"Cannot connect to "+c.src.Name(),
			"Check the source settings in your config")
	}

	ls, ok := c.src.(source.LineSource)
	token := c.cfg.Source.Serial.StartToken
	if ok && token != "" {
		if err := ls.Send(token); err != nil {
			c.closeLink()
			return smerrors.WrapWithCode(err, smerrors.ErrConnect,
				"Connected to "+c.src.Name()+" but could not start it",
				"Check the device firmware listens for "+token)
		}
	}
	return nil
}

// Stop ends the running session. The stop token is sent best-effort. The
// link stays open for the next Start unless close_on_stop is set.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.state = Stopping
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.sendStop()

	joined := wait(done, c.cfg.JoinTimeout())
	if !joined {
		c.log.Warn("reader did not stop within %s, closing link", c.cfg.JoinTimeout())
	}
	if !joined || c.cfg.Source.Serial.CloseOnStop {
		c.closeLink()
	}

	c.setState(Disconnected)
	c.log.Info("session stopped after %d readings", c.hist.Total())
	return nil
}

// Close stops any running session, waits a bounded time for the reader and
// always releases the link.
func (c *Controller) Close() error {
	if err := c.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		c.log.Warn("stop on close: %v", err)
	}

	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil && !wait(done, c.cfg.JoinTimeout()) {
		c.log.Warn("reader still running at exit")
	}
	return c.closeLink()
}

func (c *Controller) sendStop() {
	ls, ok := c.src.(source.LineSource)
	token := c.cfg.Source.Serial.StopToken
	if !ok || token == "" || !c.src.IsOpen() {
		return
	}
	if err := ls.Send(token); err != nil {
		c.log.Warn("send %s: %v", token, err)
	}
}

func (c *Controller) acquireLock() error {
	if c.cfg.Source.Kind != config.SourceSerial || !c.cfg.Lock.Enabled {
		return nil
	}
	c.linkMu.Lock()
	defer c.linkMu.Unlock()
	if c.lock != nil {
		return nil
	}
	l, err := lock.TryAcquire(c.cfg.Lock.Dir, c.src.Name())
	if err != nil {
		return err
	}
	c.lock = l
	return nil
}

// closeLink closes the source and drops the port lock.
func (c *Controller) closeLink() error {
	c.linkMu.Lock()
	defer c.linkMu.Unlock()

	err := c.src.Close()
	if rerr := c.lock.Release(); rerr != nil {
		c.log.Warn("release lock: %v", rerr)
	}
	c.lock = nil
	return err
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// notify never blocks; a full channel drops the notice.
func (c *Controller) notify(level NoticeLevel, msg string, err error) {
	n := Notice{Level: level, Message: msg, Err: err, At: c.now()}
	select {
	case c.notices <- n:
	default:
		c.log.Debug("notice dropped: %s", msg)
	}
}

func wait(done <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

// linkLost ends the session from the reader side.
func (c *Controller) linkLost(err error) {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	c.state = Stopping
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	// The link must be closed before Start can see Disconnected, or a new
	// session would pick up the handle that is about to be closed.
	c.log.Error("link to %s lost: %v", c.src.Name(), err)
	c.closeLink()
	c.setState(Disconnected)
	c.notify(NoticeError, fmt.Sprintf("Connection to %s lost: %s", c.src.Name(), smerrors.Summary(err)), err)
}
