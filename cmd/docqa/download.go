package main

import (
	"fmt"

	"github.com/tverano/docqa"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	var model docqa.ModelDescriptor
	var err error
	if c.Model != "" {
		if model, err = docqa.FindModel(c.Model); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'docqa models' to see the catalog.\n", docqa.ErrorMessage(err))
			return err
		}
	} else {
		model = docqa.RecommendModel(deps.Profiler.Detect(deps.Ctx))
	}

	fmt.Fprintf(deps.Stdout, "Downloading %s (%s)\n", model.Name, formatBytes(model.SizeBytes))

	progress := func(p docqa.DownloadProgress) {
		percent := float64(0)
		if p.TotalBytes > 0 {
			percent = float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
		}
		fmt.Fprintf(deps.Stderr, "  %.1f%%  %s/s\r", percent, formatBytes(int64(p.BytesPerSec)))
	}

	path, err := deps.Downloader.Download(deps.Ctx, model, progress)
	if err != nil {
		fmt.Fprintln(deps.Stderr)
		if docqa.ErrorCode(err) == docqa.EUNAVAILABLE {
			fmt.Fprintln(deps.Stderr, "Hint: Check your network connection. Interrupted downloads resume automatically.")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved to %s\n", path)
	return nil
}
