package main

import (
	"fmt"

	"github.com/tverano/docqa"
)

// Run executes the models command.
func (c *ModelsCmd) Run(deps *Dependencies) error {
	local, err := deps.Cache.List()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	downloaded := make(map[string]bool, len(local))
	for _, m := range local {
		downloaded[m.Name] = true
	}

	profile := deps.Profiler.Detect(deps.Ctx)
	recommended := docqa.RecommendModel(profile)

	if c.Recommend {
		params := docqa.DeriveExecutionParams(profile, recommended)
		fmt.Fprintf(deps.Stdout, "Hardware: %d cores, %s RAM, GPU %s\n",
			profile.CoreCount, formatBytes(int64(profile.TotalRAMBytes)), profile.GPUVendor)
		fmt.Fprintf(deps.Stdout, "Recommended: %s\n", recommended.Name)
		fmt.Fprintf(deps.Stdout, "  context window %d, %d threads, %d GPU layers\n",
			params.ContextWindow, params.ThreadCount, params.GPULayers)
		return nil
	}

	for _, m := range docqa.Catalog() {
		marker := " "
		if downloaded[m.Name] {
			marker = "*"
		}
		note := ""
		if m.Name == recommended.Name {
			note = "  (recommended)"
		}
		fmt.Fprintf(deps.Stdout, "%s %s  %s  min %s RAM%s\n",
			marker, m.Name, formatBytes(m.SizeBytes), formatBytes(int64(m.MinRAMBytes)), note)
	}
	fmt.Fprintln(deps.Stdout, "\n* downloaded")
	return nil
}
