package main

import (
	"fmt"

	"github.com/tverano/docqa"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	docs, err := deps.Documents.FindDocuments(deps.Ctx, docqa.DocumentFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'docqa ingest' to add one.")
		return nil
	}

	for _, d := range docs {
		fmt.Fprintf(deps.Stdout, "%d  %s  %d chunks  %s  %s\n",
			d.ID, d.FileName, d.ChunkCount, formatBytes(d.SizeBytes), d.UploadedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// formatBytes renders a byte count in human units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
