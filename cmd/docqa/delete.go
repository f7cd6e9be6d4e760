package main

import (
	"fmt"

	"github.com/tverano/docqa"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm deletion")
	}

	doc, err := deps.Documents.FindDocumentByID(deps.Ctx, c.ID)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: document %d not found. Use 'docqa docs' to see available documents.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		}
		return err
	}

	if err := deps.Ingestor.Delete(deps.Ctx, deps.Chunks, doc.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %q (%d chunks)\n", doc.FileName, doc.ChunkCount)
	return nil
}
