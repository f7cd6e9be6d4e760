package main

import (
	"fmt"
	"strings"

	"github.com/tverano/docqa"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	for _, path := range c.Paths {
		progress := func(p docqa.ParseProgress) {
			if p.Stage == docqa.ParseStageRecognizing {
				fmt.Fprintf(deps.Stderr, "  %s %.0f%%\r", p.Message, p.Percent)
			}
		}

		doc, err := deps.Ingestor.Ingest(deps.Ctx, path, progress)
		if err != nil {
			if docqa.ErrorCode(err) == docqa.EUNSUPPORTED {
				fmt.Fprintf(deps.Stderr, "error: %s. Supported types: %s\n",
					docqa.ErrorMessage(err), strings.Join(deps.Ingestor.SupportedExtensions(), ", "))
			} else {
				fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
			}
			return err
		}

		fmt.Fprintf(deps.Stdout, "Ingested %q: %d chunks (document %d)\n", doc.FileName, doc.ChunkCount, doc.ID)
	}
	return nil
}
