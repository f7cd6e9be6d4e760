package docqa

import (
	"regexp"
	"strconv"
)

// Citation links a [n] marker in a generated answer back to the retrieved
// chunk that marker referred to in the prompt.
type Citation struct {
	Marker     int    `json:"marker"`
	ChunkID    int64  `json:"chunkId"`
	DocumentID int64  `json:"documentId"`
	FileName   string `json:"fileName"`
}

var citationMarkerRe = regexp.MustCompile(`\[(\d+)\]`)

// ExtractCitations finds [n] markers in the answer and resolves them
// against the chunks that were in the prompt. Markers with no matching
// chunk are ignored; each marker appears at most once, in first-use
// order.
func ExtractCitations(answer string, chunks []RetrievedChunk) []Citation {
	if len(chunks) == 0 {
		return nil
	}

	byOrdinal := make(map[int]RetrievedChunk, len(chunks))
	for _, c := range chunks {
		byOrdinal[c.Ordinal] = c
	}

	var citations []Citation
	seen := make(map[int]bool)
	for _, match := range citationMarkerRe.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || seen[n] {
			continue
		}
		chunk, ok := byOrdinal[n]
		if !ok {
			continue
		}
		seen[n] = true
		citations = append(citations, Citation{
			Marker:     n,
			ChunkID:    chunk.ChunkID,
			DocumentID: chunk.DocumentID,
			FileName:   chunk.FileName,
		})
	}
	return citations
}
