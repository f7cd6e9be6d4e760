package docqa

// VectorMatch is a single nearest-neighbor result.
type VectorMatch struct {
	ChunkID int64   `json:"chunkId"`
	Score   float64 `json:"score"`
}

// VectorIndex is a nearest-neighbor index over chunk embeddings.
//
// Query returns matches in descending cosine similarity order; equal
// scores break toward the earlier inserted chunk so that rankings are
// deterministic. Removal is immediate: a removed chunk is never returned
// by a later query, for any k.
type VectorIndex interface {
	Insert(chunkID int64, embedding []float32) error
	Remove(chunkID int64)
	Query(embedding []float32, k int) []VectorMatch
	Len() int
}

// RetrievedChunk is a chunk hydrated with its document context, as handed
// to prompt assembly and citation extraction. Ordinal is the 1-based
// citation marker position within the prompt.
type RetrievedChunk struct {
	ChunkID    int64   `json:"chunkId"`
	DocumentID int64   `json:"documentId"`
	FileName   string  `json:"fileName"`
	Ordinal    int     `json:"ordinal"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}
