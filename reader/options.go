package reader

import (
	"log/slog"
	"time"

	"github.com/luhtfiimanal/go-serial-lines/framer"
)

// Config holds the loop configuration.
type Config struct {
	// Delimiter terminates a line (default '\n').
	Delimiter byte

	// MaxLineBytes bounds an unterminated buffered line.
	MaxLineBytes int

	// QueueSize is the capacity of the event channel. When it is full the
	// loop blocks rather than dropping lines.
	QueueSize int

	// MaxReconnectAttempts bounds reconnects after a disconnect before the
	// loop fails with ErrDeviceLost.
	MaxReconnectAttempts int

	// BackoffBase and BackoffMax shape the exponential reconnect delays.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// LivenessThreshold is the number of consecutive read timeouts per
	// liveness warning. Zero disables the warning.
	LivenessThreshold int

	// Observer receives liveness and reconnect notifications (optional).
	Observer Observer

	// Logger is used for loop lifecycle logging (optional; defaults to
	// slog.Default).
	Logger *slog.Logger
}

func defaultConfig() Config {
	return Config{
		Delimiter:            framer.DefaultDelimiter,
		MaxLineBytes:         framer.DefaultMaxLineBytes,
		QueueSize:            64,
		MaxReconnectAttempts: 5,
		BackoffBase:          250 * time.Millisecond,
		BackoffMax:           5 * time.Second,
		LivenessThreshold:    30,
	}
}

// Option is a functional option for configuring a Loop.
type Option func(*Config)

// WithDelimiter sets the line delimiter byte.
func WithDelimiter(d byte) Option {
	return func(c *Config) {
		c.Delimiter = d
	}
}

// WithMaxLineBytes sets the maximum buffered bytes for an unterminated
// line.
func WithMaxLineBytes(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxLineBytes = n
		}
	}
}

// WithQueueSize sets the event channel capacity.
//
// Example:
//
//	loop := reader.New(dial, reader.WithQueueSize(256))
func WithQueueSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.QueueSize = n
		}
	}
}

// WithMaxReconnectAttempts sets how many reconnects are tried after a
// disconnect before the loop gives up.
func WithMaxReconnectAttempts(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxReconnectAttempts = n
		}
	}
}

// WithBackoff sets the base and cap of the exponential reconnect delay.
//
// Example:
//
//	loop := reader.New(dial, reader.WithBackoff(100*time.Millisecond, 2*time.Second))
func WithBackoff(base, max time.Duration) Option {
	return func(c *Config) {
		if base > 0 {
			c.BackoffBase = base
		}
		if max >= base {
			c.BackoffMax = max
		}
	}
}

// WithLivenessThreshold sets how many consecutive read timeouts trigger one
// liveness warning. Zero disables the warning.
func WithLivenessThreshold(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.LivenessThreshold = n
		}
	}
}

// WithObserver sets an observability collaborator for liveness and
// reconnect events.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithLogger sets the logger for loop lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
