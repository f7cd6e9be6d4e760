// Package memory provides an in-memory nearest-neighbor index over chunk
// embeddings. The corpus is rebuilt from storage at startup and kept in
// sync by ingestion and deletion.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	chunkID   int64
	embedding []float32
}

// VectorIndex is a linear-scan cosine similarity index. Exact search is
// fine at this scale; a corpus of tens of thousands of chunks scans in
// well under a millisecond.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []entry
	byID    map[int64]int
	dim     int
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{byID: make(map[int64]int)}
}

// Load rebuilds the index from every stored embedding.
func (idx *VectorIndex) Load(ctx context.Context, chunks docqa.ChunkService) error {
	return chunks.ForEachEmbedding(ctx, func(chunkID int64, embedding []float32) error {
		return idx.Insert(chunkID, embedding)
	})
}

// Insert adds an embedding. Inserting an existing chunk ID replaces its
// vector in place, keeping its original rank position.
func (idx *VectorIndex) Insert(chunkID int64, embedding []float32) error {
	if len(embedding) == 0 {
		return docqa.Errorf(docqa.EINVALID, "embedding required")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dim == 0 {
		idx.dim = len(embedding)
	} else if len(embedding) != idx.dim {
		return docqa.Errorf(docqa.EINVALID, "embedding has %d dimensions, index has %d", len(embedding), idx.dim)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	if i, ok := idx.byID[chunkID]; ok {
		idx.entries[i].embedding = vec
		return nil
	}

	idx.byID[chunkID] = len(idx.entries)
	idx.entries = append(idx.entries, entry{chunkID: chunkID, embedding: vec})
	return nil
}

// Remove deletes a chunk from the index. Removing an absent chunk is a
// no-op.
func (idx *VectorIndex) Remove(chunkID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	i, ok := idx.byID[chunkID]
	if !ok {
		return
	}
	delete(idx.byID, chunkID)

	// Preserve insertion order so tie-breaking stays deterministic.
	idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
	for j := i; j < len(idx.entries); j++ {
		idx.byID[idx.entries[j].chunkID] = j
	}
}

// Query returns the k nearest chunks in descending cosine similarity.
// Equal scores break toward the earlier inserted chunk.
func (idx *VectorIndex) Query(embedding []float32, k int) []docqa.VectorMatch {
	if k <= 0 || len(embedding) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		pos   int
		match docqa.VectorMatch
	}

	results := make([]scored, 0, len(idx.entries))
	for i, e := range idx.entries {
		if len(e.embedding) != len(embedding) {
			continue
		}
		results = append(results, scored{
			pos: i,
			match: docqa.VectorMatch{
				ChunkID: e.chunkID,
				Score:   cosineSimilarity(embedding, e.embedding),
			},
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].match.Score != results[b].match.Score {
			return results[a].match.Score > results[b].match.Score
		}
		return results[a].pos < results[b].pos
	})

	if k > len(results) {
		k = len(results)
	}
	matches := make([]docqa.VectorMatch, k)
	for i := range matches {
		matches[i] = results[i].match
	}
	return matches
}

// Len returns the number of indexed chunks.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
