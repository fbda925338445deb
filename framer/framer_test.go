package framer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func texts(frames []Frame) []string {
	out := make([]string, 0, len(frames))
	for _, fr := range frames {
		out = append(out, fr.Text)
	}
	return out
}

func TestFeed_SingleLine(t *testing.T) {
	f := New()
	frames := f.Feed([]byte("hello\n"))
	require.Len(t, frames, 1)
	require.NoError(t, frames[0].Err)
	require.Equal(t, "hello", frames[0].Text)
	require.Equal(t, 0, f.Buffered())
}

func TestFeed_SplitAcrossCalls(t *testing.T) {
	f := New()
	require.Empty(t, f.Feed([]byte("hel")))
	require.Equal(t, 3, f.Buffered())

	frames := f.Feed([]byte("lo\n"))
	require.Len(t, frames, 1)
	require.Equal(t, "hello", frames[0].Text)
	require.Equal(t, 0, f.Buffered())
}

func TestFeed_StripsCarriageReturn(t *testing.T) {
	f := New()
	frames := f.Feed([]byte("a\r\nb\n"))
	require.Len(t, frames, 2)
	require.Equal(t, []string{"a", "b"}, texts(frames))
}

func TestFeed_CarriageReturnSplitFromDelimiter(t *testing.T) {
	f := New()
	require.Empty(t, f.Feed([]byte("a\r")))
	frames := f.Feed([]byte("\nb\n"))
	require.Len(t, frames, 2)
	require.Equal(t, []string{"a", "b"}, texts(frames))
}

func TestFeed_EmptyInputIsIdempotent(t *testing.T) {
	f := New()
	f.Feed([]byte("partial"))
	require.Empty(t, f.Feed(nil))
	require.Empty(t, f.Feed([]byte{}))
	require.Equal(t, 7, f.Buffered())

	frames := f.Feed([]byte("\n"))
	require.Len(t, frames, 1)
	require.Equal(t, "partial", frames[0].Text)
}

func TestFeed_EmptyLines(t *testing.T) {
	f := New()
	frames := f.Feed([]byte("\n\r\n"))
	require.Len(t, frames, 2)
	require.Equal(t, []string{"", ""}, texts(frames))
}

func TestFeed_MalformedEncoding(t *testing.T) {
	f := New()
	frames := f.Feed([]byte("ok\n\xff\xfe\nalso ok\n"))
	require.Len(t, frames, 3)

	require.NoError(t, frames[0].Err)
	require.Equal(t, "ok", frames[0].Text)

	require.ErrorIs(t, frames[1].Err, ErrMalformedEncoding)
	require.Equal(t, []byte{0xff, 0xfe}, frames[1].Raw)
	require.Empty(t, frames[1].Text)

	require.NoError(t, frames[2].Err)
	require.Equal(t, "also ok", frames[2].Text)
}

func TestFeed_CustomDelimiter(t *testing.T) {
	f := New(WithDelimiter(';'))
	frames := f.Feed([]byte("a;b;c"))
	require.Equal(t, []string{"a", "b"}, texts(frames))
	require.Equal(t, 1, f.Buffered())
}

func TestFeed_LineTooLongBoundary(t *testing.T) {
	f := New(WithMaxLineBytes(16))

	// One byte short of the limit: still buffering, no fault.
	require.Empty(t, f.Feed([]byte(strings.Repeat("x", 15))))
	require.Equal(t, 15, f.Buffered())

	// Reaching the limit exactly triggers the fault and clears the buffer.
	frames := f.Feed([]byte("x"))
	require.Len(t, frames, 1)
	var tooLong *LineTooLongError
	require.ErrorAs(t, frames[0].Err, &tooLong)
	require.Equal(t, 16, tooLong.Limit)
	require.Equal(t, 16, tooLong.Dropped)
	require.Equal(t, 0, f.Buffered())
}

func TestFeed_ResyncAfterOverflow(t *testing.T) {
	f := New(WithMaxLineBytes(8))

	frames := f.Feed([]byte(strings.Repeat("g", 20)))
	require.Len(t, frames, 1)
	var tooLong *LineTooLongError
	require.ErrorAs(t, frames[0].Err, &tooLong)
	require.Equal(t, 20, tooLong.Dropped)

	// Tail of the oversized line is still dropped, then framing resumes at
	// the first delimiter.
	frames = f.Feed([]byte("tail\nok\n"))
	require.Len(t, frames, 1)
	require.NoError(t, frames[0].Err)
	require.Equal(t, "ok", frames[0].Text)
}

func TestFeed_OverflowThenImmediateDelimiter(t *testing.T) {
	f := New(WithMaxLineBytes(4))

	frames := f.Feed([]byte("abcdef"))
	require.Len(t, frames, 1)
	require.Error(t, frames[0].Err)

	// The very next byte is the resync delimiter; the following line frames
	// normally.
	frames = f.Feed([]byte("\nhello\n"))
	require.Len(t, frames, 1)
	require.Equal(t, "hello", frames[0].Text)
}

func TestFeed_RoundTrip(t *testing.T) {
	original := []byte("alpha\nbeta\ngamma\n")

	f := New()
	frames := f.Feed(original)
	require.Len(t, frames, 3)

	var rebuilt []byte
	for _, fr := range frames {
		require.NoError(t, fr.Err)
		rebuilt = append(rebuilt, fr.Text...)
		rebuilt = append(rebuilt, '\n')
	}
	require.Equal(t, original, rebuilt)
}

func TestReset_DropsPartialAndDiscardState(t *testing.T) {
	f := New(WithMaxLineBytes(4))

	f.Feed([]byte("toolong"))
	f.Reset()

	// Without Reset the next delimiter would be eaten by resync; after
	// Reset the stream frames from a clean slate.
	frames := f.Feed([]byte("ok\n"))
	require.Len(t, frames, 1)
	require.Equal(t, "ok", frames[0].Text)

	f.Feed([]byte("part"))
	f.Reset()
	require.Equal(t, 0, f.Buffered())
}
