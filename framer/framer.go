package framer

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformedEncoding marks a frame whose line was not valid UTF-8. The
// frame's Raw field holds the undecoded bytes.
var ErrMalformedEncoding = errors.New("framer: malformed encoding")

// LineTooLongError reports that the buffer reached the configured maximum
// without seeing a delimiter. The buffered bytes were discarded and the
// Framer will resynchronize on the next delimiter.
type LineTooLongError struct {
	Limit   int // configured MaxLineBytes
	Dropped int // bytes discarded
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("framer: line exceeds %d bytes (%d dropped)", e.Limit, e.Dropped)
}

// Frame is one framing result: either a decoded line (Err nil, Text set),
// a line that failed UTF-8 decoding (Err is ErrMalformedEncoding, Raw set),
// or an overflow fault (Err is a *LineTooLongError).
type Frame struct {
	Text string
	Raw  []byte
	Err  error
}

// Framer accumulates raw bytes and emits complete delimiter-terminated
// lines. It is not safe for concurrent use; each byte stream gets its own
// Framer.
type Framer struct {
	buf     []byte
	delim   byte
	maxLine int
	discard bool // dropping bytes until the next delimiter after an overflow
}

// New returns a Framer with an empty buffer. The default delimiter is '\n'
// and the default line limit is DefaultMaxLineBytes.
func New(opts ...Option) *Framer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Framer{
		delim:   cfg.Delimiter,
		maxLine: cfg.MaxLineBytes,
	}
}

// Feed appends p to the internal buffer and returns every complete line it
// now contains, in input order. A '\r' immediately before the delimiter is
// stripped. The unterminated remainder stays buffered for the next call;
// feeding zero bytes returns nil and does not alter buffered state.
//
// The returned slice is finite and reflects only lines completed by this
// call. Ownership of the frames transfers to the caller; they do not alias
// the internal buffer.
func (f *Framer) Feed(p []byte) []Frame {
	if len(p) == 0 {
		return nil
	}
	f.buf = append(f.buf, p...)

	var out []Frame
	for {
		idx := bytes.IndexByte(f.buf, f.delim)
		if idx < 0 {
			break
		}
		if f.discard {
			// Overflow recovery: everything up to and including this
			// delimiter belongs to the oversized line already reported.
			f.buf = f.buf[idx+1:]
			f.discard = false
			continue
		}
		line := f.buf[:idx]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if utf8.Valid(line) {
			out = append(out, Frame{Text: string(line)})
		} else {
			out = append(out, Frame{Raw: bytes.Clone(line), Err: ErrMalformedEncoding})
		}
		f.buf = f.buf[idx+1:]
	}

	if f.discard {
		// Still inside the oversized line; nothing here is recoverable.
		f.buf = f.buf[:0]
	} else if len(f.buf) >= f.maxLine {
		out = append(out, Frame{Err: &LineTooLongError{Limit: f.maxLine, Dropped: len(f.buf)}})
		f.buf = f.buf[:0]
		f.discard = true
	}

	if len(f.buf) == 0 {
		// Release the backing array instead of pinning a large chunk.
		f.buf = nil
	}
	return out
}

// Reset discards any buffered partial line and clears overflow recovery
// state. Used when the underlying transport reconnects: bytes from the old
// link session must not be glued onto the new one.
func (f *Framer) Reset() {
	f.buf = nil
	f.discard = false
}

// Buffered reports how many bytes of unterminated line are currently held.
func (f *Framer) Buffered() int {
	return len(f.buf)
}
