package main

import (
	"fmt"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/sqlite"
)

// Run executes the backup export command.
func (c *BackupExportCmd) Run(deps *Dependencies) error {
	path, err := deps.DB.Backup(deps.Ctx, c.Dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Backup written to %s\n", path)
	return nil
}

// Run executes the backup import command. The live database is closed
// before its file is replaced.
func (c *BackupImportCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: importing replaces the current database; use --force to confirm\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm import")
	}

	dbPath := deps.DB.Path()
	if err := deps.DB.Close(); err != nil {
		return err
	}

	manifest, err := sqlite.Restore(c.Path, dbPath)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Restored backup %s (created %s)\n",
		manifest.ID, manifest.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}
