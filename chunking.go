package docqa

import "strings"

// Chunking parameters: windows of chunkWords words, each overlapping the
// previous by overlapWords. The overlap exists so that a sentence spanning
// a chunk boundary is retrievable from at least one chunk.
const (
	chunkWords   = 800
	overlapWords = 200
)

// SplitChunks splits text into overlapping word-window chunks.
// Returns nil for empty or whitespace-only input.
func SplitChunks(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += chunkWords - overlapWords {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
