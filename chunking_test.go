package docqa_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strconv.Itoa(i)
	}
	return strings.Join(parts, " ")
}

func TestSplitChunks(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields no chunks", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, docqa.SplitChunks(""))
		assert.Nil(t, docqa.SplitChunks("   \n\t "))
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		t.Parallel()

		chunks := docqa.SplitChunks("a small document")
		require.Len(t, chunks, 1)
		assert.Equal(t, "a small document", chunks[0])
	})

	t.Run("long text overlaps across boundaries", func(t *testing.T) {
		t.Parallel()

		chunks := docqa.SplitChunks(words(1000))
		require.Len(t, chunks, 2)

		// The second chunk starts 600 words in, so the last 200 words of
		// chunk one reappear at the start of chunk two.
		first := strings.Fields(chunks[0])
		second := strings.Fields(chunks[1])
		require.Len(t, first, 800)
		assert.Equal(t, first[600:], second[:200])
		assert.Equal(t, "w999", second[len(second)-1])
	})

	t.Run("every word appears in some chunk", func(t *testing.T) {
		t.Parallel()

		chunks := docqa.SplitChunks(words(2500))
		all := strings.Join(chunks, " ")
		for _, w := range []string{"w0", "w799", "w800", "w1600", "w2499"} {
			assert.Contains(t, strings.Fields(all), w)
		}
	})
}
