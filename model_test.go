package docqa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
)

const gib = 1024 * 1024 * 1024

func profileWithRAM(ramBytes uint64) *docqa.HardwareProfile {
	return &docqa.HardwareProfile{
		CoreCount:     8,
		ThreadCount:   16,
		TotalRAMBytes: ramBytes,
		GPUVendor:     docqa.GPUNone,
	}
}

func TestRecommendModel(t *testing.T) {
	t.Parallel()

	t.Run("respects safety margin", func(t *testing.T) {
		t.Parallel()

		ram := uint64(8 * gib)
		model := docqa.RecommendModel(profileWithRAM(ram))
		budget := uint64(float64(ram) * docqa.RAMSafetyMargin)
		assert.LessOrEqual(t, model.MinRAMBytes, budget)
	})

	t.Run("monotonic in RAM", func(t *testing.T) {
		t.Parallel()

		small := docqa.RecommendModel(profileWithRAM(8 * gib))
		large := docqa.RecommendModel(profileWithRAM(32 * gib))
		assert.Greater(t, large.QualityTier, small.QualityTier)
	})

	t.Run("falls back to smallest model on tiny machines", func(t *testing.T) {
		t.Parallel()

		model := docqa.RecommendModel(profileWithRAM(2 * gib))
		assert.Equal(t, 1, model.QualityTier)
	})

	t.Run("picks highest tier that fits", func(t *testing.T) {
		t.Parallel()

		model := docqa.RecommendModel(profileWithRAM(64 * gib))
		assert.Equal(t, 5, model.QualityTier)
	})
}

func TestDeriveExecutionParams(t *testing.T) {
	t.Parallel()

	model, err := docqa.FindModel("Qwen 2.5 7B Instruct (Q3)")
	require.NoError(t, err)

	t.Run("no GPU keeps all layers on CPU", func(t *testing.T) {
		t.Parallel()

		params := docqa.DeriveExecutionParams(profileWithRAM(32*gib), model)
		assert.Equal(t, 0, params.GPULayers)
		assert.Equal(t, 8, params.ThreadCount)
	})

	t.Run("offload grows with RAM", func(t *testing.T) {
		t.Parallel()

		low := profileWithRAM(8 * gib)
		low.GPUVendor = docqa.GPUApple
		high := profileWithRAM(64 * gib)
		high.GPUVendor = docqa.GPUApple

		lowParams := docqa.DeriveExecutionParams(low, model)
		highParams := docqa.DeriveExecutionParams(high, model)

		assert.Greater(t, lowParams.GPULayers, 0)
		assert.Greater(t, highParams.GPULayers, lowParams.GPULayers)
		assert.Equal(t, model.LayerCount, highParams.GPULayers, "64GB offloads everything")
	})

	t.Run("context window capped", func(t *testing.T) {
		t.Parallel()

		params := docqa.DeriveExecutionParams(profileWithRAM(16*gib), model)
		assert.Equal(t, 8192, params.ContextWindow)
	})

	t.Run("thread count never below one", func(t *testing.T) {
		t.Parallel()

		profile := &docqa.HardwareProfile{TotalRAMBytes: 4 * gib}
		params := docqa.DeriveExecutionParams(profile, model)
		assert.Equal(t, 1, params.ThreadCount)
	})
}

func TestFindModel(t *testing.T) {
	t.Parallel()

	t.Run("finds by name and file name", func(t *testing.T) {
		t.Parallel()

		byName, err := docqa.FindModel("Qwen 2.5 3B Instruct (Q4)")
		require.NoError(t, err)
		byFile, err := docqa.FindModel(byName.FileName)
		require.NoError(t, err)
		assert.Equal(t, byName, byFile)
	})

	t.Run("returns ENOTFOUND for unknown model", func(t *testing.T) {
		t.Parallel()

		_, err := docqa.FindModel("no-such-model")
		require.Error(t, err)
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})
}
