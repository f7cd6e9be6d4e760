package docqa

import "context"

// GPU vendors reported by the hardware profiler.
const (
	GPUNone   = "none"
	GPUApple  = "apple"
	GPUNVIDIA = "nvidia"
	GPUAMD    = "amd"
	GPUIntel  = "intel"
)

// HardwareProfile is an immutable snapshot of the machine's capabilities,
// computed once per process lifetime.
type HardwareProfile struct {
	CoreCount     int    `json:"coreCount"`
	ThreadCount   int    `json:"threadCount"`
	TotalRAMBytes uint64 `json:"totalRamBytes"`
	GPUVendor     string `json:"gpuVendor"`
	GPUVRAMBytes  uint64 `json:"gpuVramBytes,omitempty"`
}

// HasGPU reports whether any usable GPU was detected.
func (p *HardwareProfile) HasGPU() bool {
	return p.GPUVendor != "" && p.GPUVendor != GPUNone
}

// Profiler inspects the host machine and emits a capability profile.
// Detect never fails: on partial detection failure, fields fall back to
// conservative defaults.
type Profiler interface {
	Detect(ctx context.Context) *HardwareProfile
}

// ModelDescriptor is a static catalog entry describing a known model.
type ModelDescriptor struct {
	Name          string `json:"name"`
	FileName      string `json:"fileName"`
	DownloadURL   string `json:"downloadUrl"`
	SizeBytes     int64  `json:"sizeBytes"`
	MinRAMBytes   uint64 `json:"minRamBytes"`
	QualityTier   int    `json:"qualityTier"`
	ContextLength int    `json:"contextLength"`
	LayerCount    int    `json:"layerCount"`
}

// ExecutionParams are inference engine settings derived from hardware and
// model characteristics.
type ExecutionParams struct {
	GPULayers     int `json:"gpuLayers"`
	ContextWindow int `json:"contextWindow"`
	ThreadCount   int `json:"threadCount"`
}

const gib = 1024 * 1024 * 1024

// RAMSafetyMargin is the fraction of total RAM a model may claim,
// reserving headroom for the OS and the embedding engine.
const RAMSafetyMargin = 0.7

// maxContextWindow caps the inference context regardless of what the
// model supports, keeping KV cache memory bounded.
const maxContextWindow = 8192

// Catalog returns the static model catalog, ordered by ascending quality
// tier.
func Catalog() []ModelDescriptor {
	return []ModelDescriptor{
		{
			Name:          "Qwen 2.5 1.5B Instruct (Q4)",
			FileName:      "qwen2.5-1.5b-instruct-q4_k_m.gguf",
			DownloadURL:   "https://huggingface.co/Qwen/Qwen2.5-1.5B-Instruct-GGUF/resolve/main/qwen2.5-1.5b-instruct-q4_k_m.gguf",
			SizeBytes:     1_117_320_736,
			MinRAMBytes:   4 * gib,
			QualityTier:   1,
			ContextLength: 32768,
			LayerCount:    28,
		},
		{
			Name:          "Qwen 2.5 3B Instruct (Q4)",
			FileName:      "qwen2.5-3b-instruct-q4_k_m.gguf",
			DownloadURL:   "https://huggingface.co/Qwen/Qwen2.5-3B-Instruct-GGUF/resolve/main/qwen2.5-3b-instruct-q4_k_m.gguf",
			SizeBytes:     2_104_932_768,
			MinRAMBytes:   6 * gib,
			QualityTier:   2,
			ContextLength: 32768,
			LayerCount:    36,
		},
		{
			Name:          "Qwen 2.5 7B Instruct (Q3)",
			FileName:      "qwen2.5-7b-instruct-q3_k_m.gguf",
			DownloadURL:   "https://huggingface.co/Qwen/Qwen2.5-7B-Instruct-GGUF/resolve/main/qwen2.5-7b-instruct-q3_k_m.gguf",
			SizeBytes:     3_808_388_768,
			MinRAMBytes:   8 * gib,
			QualityTier:   3,
			ContextLength: 32768,
			LayerCount:    28,
		},
		{
			Name:          "Qwen 2.5 14B Instruct (Q4)",
			FileName:      "qwen2.5-14b-instruct-q4_k_m.gguf",
			DownloadURL:   "https://huggingface.co/Qwen/Qwen2.5-14B-Instruct-GGUF/resolve/main/qwen2.5-14b-instruct-q4_k_m.gguf",
			SizeBytes:     8_988_110_368,
			MinRAMBytes:   16 * gib,
			QualityTier:   4,
			ContextLength: 32768,
			LayerCount:    48,
		},
		{
			Name:          "Qwen 2.5 32B Instruct (Q4)",
			FileName:      "qwen2.5-32b-instruct-q4_k_m.gguf",
			DownloadURL:   "https://huggingface.co/Qwen/Qwen2.5-32B-Instruct-GGUF/resolve/main/qwen2.5-32b-instruct-q4_k_m.gguf",
			SizeBytes:     19_851_335_712,
			MinRAMBytes:   32 * gib,
			QualityTier:   5,
			ContextLength: 32768,
			LayerCount:    64,
		},
	}
}

// FindModel returns the catalog entry with the given name.
// Returns ENOTFOUND if no such model exists.
func FindModel(name string) (ModelDescriptor, error) {
	for _, m := range Catalog() {
		if m.Name == name || m.FileName == name {
			return m, nil
		}
	}
	return ModelDescriptor{}, Errorf(ENOTFOUND, "model %q not found in catalog", name)
}

// RecommendModel selects the highest quality tier model whose minimum RAM
// requirement fits within the profile's total RAM scaled by
// RAMSafetyMargin. Ties break toward the smaller download. The smallest
// model is returned when nothing fits.
func RecommendModel(profile *HardwareProfile) ModelDescriptor {
	budget := uint64(float64(profile.TotalRAMBytes) * RAMSafetyMargin)

	catalog := Catalog()
	best := catalog[0]
	found := false
	for _, m := range catalog {
		if m.MinRAMBytes > budget {
			continue
		}
		switch {
		case !found,
			m.QualityTier > best.QualityTier,
			m.QualityTier == best.QualityTier && m.SizeBytes < best.SizeBytes:
			best = m
			found = true
		}
	}
	return best
}

// DeriveExecutionParams computes inference settings for a model on the
// given hardware. The rule is monotonic: more RAM means more layers
// offloaded to the GPU, capped by the model's layer count. Machines
// without a GPU keep every layer on the CPU.
func DeriveExecutionParams(profile *HardwareProfile, model ModelDescriptor) ExecutionParams {
	threads := profile.CoreCount
	if threads < 1 {
		threads = 1
	}

	window := model.ContextLength
	if window > maxContextWindow || window <= 0 {
		window = maxContextWindow
	}

	return ExecutionParams{
		GPULayers:     gpuLayers(profile, model),
		ContextWindow: window,
		ThreadCount:   threads,
	}
}

func gpuLayers(profile *HardwareProfile, model ModelDescriptor) int {
	if !profile.HasGPU() {
		return 0
	}

	ramGB := float64(profile.TotalRAMBytes) / gib
	var fraction float64
	switch {
	case ramGB >= 64:
		fraction = 1.0
	case ramGB >= 32:
		fraction = 0.95
	case ramGB >= 16:
		fraction = 0.90
	case ramGB >= 8:
		fraction = 0.65
	default:
		return 0
	}

	layers := int(float64(model.LayerCount) * fraction)
	if layers > model.LayerCount {
		layers = model.LayerCount
	}
	return layers
}
