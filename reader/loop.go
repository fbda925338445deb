package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/luhtfiimanal/go-serial-lines/framer"
	"github.com/luhtfiimanal/go-serial-lines/serial"
)

// State is the lifecycle phase of a Loop.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	// ErrDeviceLost is the terminal error after reconnect attempts are
	// exhausted.
	ErrDeviceLost = errors.New("reader: device lost")

	// ErrAlreadyStarted is returned by Start on a loop that is not Idle.
	// A Loop runs once; a new stream needs a new Loop.
	ErrAlreadyStarted = errors.New("reader: loop already started")
)

var errStopRequested = errors.New("reader: stop requested")

// Loop drives one byte source through a line framer and delivers events to
// a single consumer. Create with New, drain Events, release with Stop.
type Loop struct {
	id     string
	dial   DialFunc
	cfg    Config
	fr     *framer.Framer
	logger *slog.Logger

	events     chan Event
	closeOnce  sync.Once
	stop       chan struct{}
	stopOnce   sync.Once
	state      atomic.Int32
	group      errgroup.Group
	readBufLen int

	mu      sync.Mutex
	src     Source
	termErr error
}

// New creates a Loop in the Idle state. No device is opened until Start.
func New(dial DialFunc, opts ...Option) *Loop {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Loop{
		id:         id,
		dial:       dial,
		cfg:        cfg,
		fr:         framer.New(framer.WithDelimiter(cfg.Delimiter), framer.WithMaxLineBytes(cfg.MaxLineBytes)),
		logger:     logger.With("reader", id),
		events:     make(chan Event, cfg.QueueSize),
		stop:       make(chan struct{}),
		readBufLen: 4096,
	}
}

// ID returns the loop's unique identity, also present in its log fields.
func (l *Loop) ID() string {
	return l.id
}

// State returns the current lifecycle phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Err returns the terminal error once the loop has ended: nil after a
// clean stop, an ErrDeviceLost-wrapping error after a failed one, or the
// open error if Start itself failed.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.termErr
}

// Events returns the delivery channel. Events arrive in production order;
// the channel is closed exactly once, after the loop has ended and the
// device handle is released. The channel is bounded: a slow consumer
// blocks the loop rather than losing lines.
func (l *Loop) Events() <-chan Event {
	return l.events
}

// Start opens the device and transitions Idle → Running. Open faults
// (device unavailable, invalid configuration) are returned immediately
// without retry, leaving the loop Failed with its event channel closed.
func (l *Loop) Start() error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	src, err := l.dial()
	if err != nil {
		l.state.Store(int32(StateFailed))
		l.setTermErr(err)
		l.closeEvents()
		return err
	}
	l.setSrc(src)
	l.logger.Info("reader started")
	l.group.Go(l.run)
	return nil
}

// Stop transitions Running → Stopped. It is cooperative: the port is
// closed first so a blocked read wakes immediately, then Stop waits for
// the loop goroutine to finish. The device handle is guaranteed closed
// before Stop returns. Safe to call multiple times and after failure.
func (l *Loop) Stop() error {
	if l.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		l.closeEvents()
		return nil
	}
	l.stopOnce.Do(func() { close(l.stop) })
	l.closeSrc()
	l.group.Wait()
	if l.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		l.logger.Info("reader stopped")
	}
	return nil
}

// Wait blocks until the loop goroutine has ended and returns its terminal
// error, nil for a clean stop.
func (l *Loop) Wait() error {
	return l.group.Wait()
}

func (l *Loop) run() error {
	defer l.closeEvents()
	defer l.closeSrc()

	buf := make([]byte, l.readBufLen)
	consecutiveTimeouts := 0
	for {
		select {
		case <-l.stop:
			return nil
		default:
		}

		src := l.currentSrc()
		if src == nil {
			return nil
		}

		n, err := src.Read(buf)
		switch {
		case err == nil:
			consecutiveTimeouts = 0
			for _, fr := range l.fr.Feed(buf[:n]) {
				if fr.Err != nil {
					l.logger.Warn("line fault", "error", fr.Err)
				}
				if !l.emit(frameEvent(fr)) {
					return nil
				}
			}

		case errors.Is(err, serial.ErrTimeout):
			consecutiveTimeouts++
			l.observerReadTimeout(consecutiveTimeouts)
			if l.cfg.LivenessThreshold > 0 && consecutiveTimeouts%l.cfg.LivenessThreshold == 0 {
				l.logger.Warn("no data from device", "consecutive_timeouts", consecutiveTimeouts)
			}

		case errors.Is(err, serial.ErrClosed):
			// Stop closed the port under us.
			return nil

		default:
			// Disconnect, or an unknown transport error treated as one.
			l.logger.Warn("device disconnected", "error", err)
			rerr := l.reconnect(err)
			if rerr == nil {
				consecutiveTimeouts = 0
				l.fr.Reset()
				continue
			}
			if errors.Is(rerr, errStopRequested) {
				return nil
			}
			if !l.emit(DeviceLostEvent{Err: rerr, Attempts: l.cfg.MaxReconnectAttempts}) {
				// Stop intervened; the clean stop wins.
				return nil
			}
			term := fmt.Errorf("%w: %v", ErrDeviceLost, rerr)
			l.setTermErr(term)
			l.state.Store(int32(StateFailed))
			l.logger.Error("reader failed", "error", term)
			return term
		}
	}
}

// reconnect closes the dead source and redials with exponential backoff.
// It returns nil on success, errStopRequested if Stop intervened, or the
// last dial error once attempts are exhausted.
func (l *Loop) reconnect(cause error) error {
	l.closeSrc()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.cfg.BackoffBase
	bo.MaxInterval = l.cfg.BackoffMax
	bo.Reset()

	lastErr := cause
	for attempt := 1; attempt <= l.cfg.MaxReconnectAttempts; attempt++ {
		delay := bo.NextBackOff()
		l.observerReconnecting(attempt, delay)
		l.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-l.stop:
			timer.Stop()
			return errStopRequested
		case <-timer.C:
		}

		src, err := l.dial()
		if err != nil {
			lastErr = err
			l.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
			continue
		}
		l.setSrc(src)
		l.observerReconnected(attempt)
		l.logger.Info("reconnected", "attempt", attempt)
		return nil
	}
	return lastErr
}

// emit delivers one event, blocking while the queue is full. It reports
// false if Stop was requested before the event could be delivered.
func (l *Loop) emit(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	case <-l.stop:
		return false
	}
}

func (l *Loop) closeEvents() {
	l.closeOnce.Do(func() { close(l.events) })
}

func (l *Loop) currentSrc() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src
}

func (l *Loop) setSrc(s Source) {
	l.mu.Lock()
	l.src = s
	l.mu.Unlock()
}

func (l *Loop) closeSrc() {
	l.mu.Lock()
	if l.src != nil {
		l.src.Close()
		l.src = nil
	}
	l.mu.Unlock()
}

func (l *Loop) setTermErr(err error) {
	l.mu.Lock()
	l.termErr = err
	l.mu.Unlock()
}

func (l *Loop) observerReadTimeout(n int) {
	if l.cfg.Observer != nil {
		l.cfg.Observer.ReadTimeout(n)
	}
}

func (l *Loop) observerReconnecting(attempt int, delay time.Duration) {
	if l.cfg.Observer != nil {
		l.cfg.Observer.Reconnecting(attempt, delay)
	}
}

func (l *Loop) observerReconnected(attempt int) {
	if l.cfg.Observer != nil {
		l.cfg.Observer.Reconnected(attempt)
	}
}
