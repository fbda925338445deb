package framer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Chunk-boundary invariance: however the byte stream is split across Feed
// calls, the same lines come out in the same order.
func TestFeed_ChunkBoundaryInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(
			rapid.StringMatching(`[ -~]{0,32}`), // printable ASCII: no delimiter, no '\r'
			0, 8,
		).Draw(t, "lines")

		var stream []byte
		for _, line := range lines {
			stream = append(stream, line...)
			stream = append(stream, '\n')
		}

		f := New()
		got := []string{}
		rest := stream
		for len(rest) > 0 {
			n := rapid.IntRange(1, len(rest)).Draw(t, "chunk")
			for _, fr := range f.Feed(rest[:n]) {
				require.NoError(t, fr.Err)
				got = append(got, fr.Text)
			}
			rest = rest[n:]
		}

		want := append([]string{}, lines...)
		require.Equal(t, want, got)
		require.Equal(t, 0, f.Buffered())
	})
}
