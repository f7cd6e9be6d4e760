// Package gopsutil implements hardware detection for model selection.
package gopsutil

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/tverano/docqa"
)

// Ensure Profiler implements docqa.Profiler at compile time.
var _ docqa.Profiler = (*Profiler)(nil)

// Profiler detects CPU, RAM and GPU capabilities. Detection runs once;
// hardware does not change under a running process.
type Profiler struct {
	once    sync.Once
	profile *docqa.HardwareProfile
}

// NewProfiler creates a new Profiler.
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Detect returns the hardware profile. Probes that fail fall back to
// conservative values rather than failing the caller; a wrong guess here
// only means a smaller model gets recommended.
func (p *Profiler) Detect(ctx context.Context) *docqa.HardwareProfile {
	p.once.Do(func() {
		p.profile = detect(ctx)
	})
	return p.profile
}

func detect(ctx context.Context) *docqa.HardwareProfile {
	profile := &docqa.HardwareProfile{
		CoreCount:   1,
		ThreadCount: 1,
		GPUVendor:   docqa.GPUNone,
	}

	if cores, err := cpu.CountsWithContext(ctx, false); err == nil && cores > 0 {
		profile.CoreCount = cores
	}
	if threads, err := cpu.CountsWithContext(ctx, true); err == nil && threads > 0 {
		profile.ThreadCount = threads
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		profile.TotalRAMBytes = vm.Total
	}

	detectGPU(profile)
	return profile
}

// detectGPU fills in the GPU fields from platform heuristics. There is
// no portable GPU API, so this checks the markers each vendor leaves on
// the system.
func detectGPU(profile *docqa.HardwareProfile) {
	// Apple Silicon has unified memory: the GPU sees all system RAM.
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		profile.GPUVendor = docqa.GPUApple
		profile.GPUVRAMBytes = profile.TotalRAMBytes
		return
	}

	if runtime.GOOS == "linux" {
		if _, err := os.Stat("/proc/driver/nvidia"); err == nil {
			profile.GPUVendor = docqa.GPUNVIDIA
			return
		}
		if _, err := os.Stat("/sys/module/amdgpu"); err == nil {
			profile.GPUVendor = docqa.GPUAMD
			return
		}
	}
}
