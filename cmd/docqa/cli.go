package main

import (
	"context"
	"io"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/ingest"
	"github.com/tverano/docqa/rag"
	"github.com/tverano/docqa/sqlite"
	"github.com/tverano/docqa/vault"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	DB            *sqlite.DB
	Documents     docqa.DocumentService
	Chunks        docqa.ChunkService
	Conversations docqa.ConversationService
	Messages      docqa.MessageService
	Settings      docqa.SettingService
	Profiler      docqa.Profiler
	Cache         docqa.ModelCache
	Downloader    docqa.Downloader
	Index         docqa.VectorIndex
	Vault         *vault.Vault
	Recryptor     docqa.Recryptor
	Ingestor      *ingest.Ingestor
	Orchestrator  *rag.Orchestrator
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Password string `env:"DOCQA_PASSWORD" help:"Vault password, unlocks encrypted storage for this invocation"`
	Verbose  bool   `short:"v" help:"Log service operations to stderr"`

	Ingest   IngestCmd   `cmd:"" help:"Ingest a document file"`
	Docs     DocsCmd     `cmd:"" help:"List ingested documents"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a document and its chunks"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about your documents"`
	Chat     ChatCmd     `cmd:"" help:"Manage conversations"`
	Models   ModelsCmd   `cmd:"" help:"List models and hardware recommendation"`
	Download DownloadCmd `cmd:"" help:"Download a model into the local cache"`
	Vault    VaultCmd    `cmd:"" help:"Manage storage encryption"`
	Backup   BackupCmd   `cmd:"" help:"Export or import a database backup"`
	Search   SearchCmd   `cmd:"" help:"Search message history"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Paths []string `arg:"" help:"Document files to ingest"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    int64 `arg:"" help:"Document ID"`
	Force bool  `help:"Confirm deletion"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question     string `arg:"" help:"Question to ask"`
	Conversation int64  `short:"c" help:"Continue an existing conversation"`
}

// ChatCmd groups conversation management subcommands.
type ChatCmd struct {
	List   ChatListCmd   `cmd:"" help:"List conversations"`
	Show   ChatShowCmd   `cmd:"" help:"Show a conversation's messages"`
	Export ChatExportCmd `cmd:"" help:"Export a conversation"`
	Delete ChatDeleteCmd `cmd:"" help:"Delete a conversation"`
}

// ChatListCmd is the "chat list" subcommand.
type ChatListCmd struct{}

// ChatShowCmd is the "chat show" subcommand.
type ChatShowCmd struct {
	ID int64 `arg:"" help:"Conversation ID"`
}

// ChatExportCmd is the "chat export" subcommand.
type ChatExportCmd struct {
	ID     int64  `arg:"" help:"Conversation ID"`
	Format string `short:"f" default:"md" enum:"md,json,txt" help:"Output format"`
	Out    string `short:"o" help:"Write to file instead of stdout"`
}

// ChatDeleteCmd is the "chat delete" subcommand.
type ChatDeleteCmd struct {
	ID    int64 `arg:"" help:"Conversation ID"`
	Force bool  `help:"Confirm deletion"`
}

// ModelsCmd is the "models" subcommand.
type ModelsCmd struct {
	Recommend bool `short:"r" help:"Show the recommendation for this machine"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	Model string `short:"m" help:"Model name (defaults to the hardware recommendation)"`
}

// VaultCmd groups encryption subcommands.
type VaultCmd struct {
	Status         VaultStatusCmd         `cmd:"" default:"1" help:"Show vault status"`
	Setup          VaultSetupCmd          `cmd:"" help:"Enable encryption with a password"`
	Unlock         VaultUnlockCmd         `cmd:"" help:"Verify the vault password"`
	Lock           VaultLockCmd           `cmd:"" help:"Discard the in-memory key"`
	ChangePassword VaultChangePasswordCmd `cmd:"" name:"change-password" help:"Change the vault password"`
	Disable        VaultDisableCmd        `cmd:"" help:"Disable encryption and re-persist data as plaintext"`
	Biometric      VaultBiometricCmd      `cmd:"" help:"Toggle biometric unlock"`
}

// VaultStatusCmd is the "vault status" subcommand.
type VaultStatusCmd struct{}

// VaultSetupCmd is the "vault setup" subcommand.
type VaultSetupCmd struct {
	NewPassword string `arg:"" help:"Password to protect the data key with"`
	Biometric   bool   `help:"Also enable biometric unlock"`
}

// VaultUnlockCmd is the "vault unlock" subcommand.
type VaultUnlockCmd struct {
	VaultPassword string `arg:"" help:"Vault password"`
}

// VaultLockCmd is the "vault lock" subcommand.
type VaultLockCmd struct{}

// VaultChangePasswordCmd is the "vault change-password" subcommand.
type VaultChangePasswordCmd struct {
	OldPassword string `arg:"" help:"Current password"`
	NewPassword string `arg:"" help:"New password"`
}

// VaultDisableCmd is the "vault disable" subcommand.
type VaultDisableCmd struct {
	VaultPassword string `arg:"" help:"Current password"`
	Force         bool   `help:"Confirm disabling encryption"`
}

// VaultBiometricCmd is the "vault biometric" subcommand.
type VaultBiometricCmd struct {
	VaultPassword string `arg:"" help:"Current password"`
	Enable        bool   `negatable:"" default:"true" help:"Enable (default) or --no-enable to disable"`
}

// BackupCmd groups backup subcommands.
type BackupCmd struct {
	Export BackupExportCmd `cmd:"" help:"Write a backup archive"`
	Import BackupImportCmd `cmd:"" help:"Restore from a backup archive"`
}

// BackupExportCmd is the "backup export" subcommand.
type BackupExportCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Directory to write the archive to"`
}

// BackupImportCmd is the "backup import" subcommand.
type BackupImportCmd struct {
	Path  string `arg:"" help:"Backup archive path"`
	Force bool   `help:"Confirm overwriting the current database"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Text to search message history for"`
	Limit int    `default:"20" help:"Maximum results"`
}
