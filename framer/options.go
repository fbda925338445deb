package framer

// DefaultMaxLineBytes bounds the buffered partial line before the Framer
// declares the stream overlong and resynchronizes.
const DefaultMaxLineBytes = 64 * 1024

// DefaultDelimiter terminates a line. A '\r' immediately before it is
// stripped, so both LF and CRLF devices frame identically.
const DefaultDelimiter byte = '\n'

type config struct {
	Delimiter    byte
	MaxLineBytes int
}

func defaultConfig() config {
	return config{
		Delimiter:    DefaultDelimiter,
		MaxLineBytes: DefaultMaxLineBytes,
	}
}

// Option is a functional option for configuring a Framer.
type Option func(*config)

// WithDelimiter sets the line delimiter byte.
//
// Example:
//
//	f := framer.New(framer.WithDelimiter(';'))
func WithDelimiter(d byte) Option {
	return func(c *config) {
		c.Delimiter = d
	}
}

// WithMaxLineBytes sets the maximum buffered bytes for an unterminated
// line. Values below 1 are ignored.
//
// Example:
//
//	f := framer.New(framer.WithMaxLineBytes(1024))
func WithMaxLineBytes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxLineBytes = n
		}
	}
}
