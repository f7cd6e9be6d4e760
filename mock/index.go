package mock

import "github.com/tverano/docqa"

var _ docqa.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of docqa.VectorIndex.
type VectorIndex struct {
	InsertFn func(chunkID int64, embedding []float32) error
	RemoveFn func(chunkID int64)
	QueryFn  func(embedding []float32, k int) []docqa.VectorMatch
	LenFn    func() int
}

func (i *VectorIndex) Insert(chunkID int64, embedding []float32) error {
	return i.InsertFn(chunkID, embedding)
}

func (i *VectorIndex) Remove(chunkID int64) { i.RemoveFn(chunkID) }

func (i *VectorIndex) Query(embedding []float32, k int) []docqa.VectorMatch {
	return i.QueryFn(embedding, k)
}

func (i *VectorIndex) Len() int { return i.LenFn() }
