package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.Profiler = (*Profiler)(nil)

// Profiler is a mock implementation of docqa.Profiler.
type Profiler struct {
	DetectFn func(ctx context.Context) *docqa.HardwareProfile
}

func (p *Profiler) Detect(ctx context.Context) *docqa.HardwareProfile {
	return p.DetectFn(ctx)
}
