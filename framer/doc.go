// Package framer converts a raw byte stream into delimiter-terminated
// lines, handling delimiters split across read boundaries, invalid UTF-8,
// and unterminated input that would otherwise grow without bound.
//
// A Framer keeps any trailing partial line buffered between Feed calls, so
// the chunking of the input never changes which lines come out: feeding
// "hel" then "lo\n" produces the same single line as feeding "hello\n".
//
// Lines with invalid UTF-8 are not silently dropped; the frame carries the
// raw bytes and ErrMalformedEncoding so the consumer decides whether to
// discard or repair. If the buffer reaches the configured maximum without a
// delimiter (a misconfigured baud rate producing garbage is the usual
// cause), the Framer reports LineTooLongError, drops the buffered bytes,
// and resynchronizes on the next delimiter seen.
package framer
