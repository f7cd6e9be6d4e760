package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/fs"
	"github.com/tverano/docqa/gopsutil"
	dochttp "github.com/tverano/docqa/http"
	"github.com/tverano/docqa/ingest"
	"github.com/tverano/docqa/keychain"
	"github.com/tverano/docqa/memory"
	"github.com/tverano/docqa/ollama"
	"github.com/tverano/docqa/pdftotext"
	"github.com/tverano/docqa/rag"
	docslog "github.com/tverano/docqa/slog"
	"github.com/tverano/docqa/sqlite"
	"github.com/tverano/docqa/trafilatura"
	"github.com/tverano/docqa/vault"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory and database path. Set before calling Run().
	HomeDir string
	DBPath  string

	// Ollama server the inference and embedding adapters talk to.
	OllamaURL string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	DocumentService docqa.DocumentService
	Vault           *vault.Vault
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	home := defaultHomeDir()
	return &Main{
		HomeDir:   home,
		DBPath:    defaultDBPath(home),
		OllamaURL: defaultOllamaURL(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docqa"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	// First word of the resolved command, e.g. "ask" from "ask <question>".
	cmd = strings.Fields(kongCtx.Command())[0]

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCQA_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// The vault guards sensitive columns; services go through it as
	// their cipher whether or not it is enabled.
	m.Vault = vault.New(
		sqlite.NewVaultStateStore(m.DB),
		keychain.NewStore(),
		keychain.NoBiometric{},
	)
	deps.Vault = m.Vault
	deps.Recryptor = sqlite.NewRecryptor(m.DB)

	// A global --password unlocks the vault for this invocation. It is
	// ignored when the vault was never set up.
	if cli.Password != "" {
		ok, err := m.Vault.UnlockWithPassword(ctx, cli.Password)
		if err != nil && docqa.ErrorCode(err) != docqa.EUNSUPPORTED {
			return err
		}
		if err == nil && !ok {
			return docqa.Errorf(docqa.EUNAUTHORIZED, "incorrect password")
		}
	}

	// Wire core services into dependencies
	m.DocumentService = docslog.NewLoggingDocumentService(sqlite.NewDocumentService(m.DB, m.Vault), logger)
	deps.DB = m.DB
	deps.Documents = m.DocumentService
	deps.Chunks = sqlite.NewChunkService(m.DB, m.Vault)
	deps.Conversations = sqlite.NewConversationService(m.DB, m.Vault)
	deps.Messages = sqlite.NewMessageService(m.DB, m.Vault)
	deps.Settings = sqlite.NewSettingService(m.DB)
	deps.Profiler = gopsutil.NewProfiler()
	deps.Cache = fs.NewModelCache(filepath.Join(m.HomeDir, "models"))

	// Wire command-specific dependencies based on command
	if cmd == "download" {
		deps.Downloader = docslog.NewLoggingDownloader(
			dochttp.NewDownloader(filepath.Join(m.HomeDir, "models")), logger)
	}

	if needsIndex(cmd) {
		index := memory.NewVectorIndex()
		if err := index.Load(ctx, deps.Chunks); err != nil {
			if docqa.ErrorCode(err) == docqa.ELOCKED {
				fmt.Fprintln(stderr, "Hint: The vault is locked. Pass --password to unlock it.")
			}
			return err
		}
		deps.Index = index

		embedder := ollama.NewEmbedder(m.OllamaURL, ollama.DefaultEmbedModel)
		deps.Ingestor = ingest.NewIngestor(deps.Documents, embedder, index, parsers(logger))
		if err := deps.Ingestor.Prime(ctx); err != nil {
			return err
		}

		deps.Orchestrator = rag.NewOrchestrator(rag.Deps{
			Profiler:      deps.Profiler,
			ModelCache:    deps.Cache,
			Engine:        ollama.NewEngine(m.OllamaURL, deps.Cache),
			Embedder:      embedder,
			Index:         index,
			Chunks:        deps.Chunks,
			Documents:     deps.Documents,
			Conversations: deps.Conversations,
			Messages:      deps.Messages,
			Settings:      deps.Settings,
		})
	}

	return kongCtx.Run(deps)
}

// needsIndex reports whether the command works with embeddings and
// therefore needs the vector index rebuilt from storage.
func needsIndex(cmd string) bool {
	switch cmd {
	case "ingest", "ask", "delete":
		return true
	}
	return false
}

// parsers returns every registered document parser, each wrapped with
// logging.
func parsers(logger *slog.Logger) []docqa.Parser {
	return []docqa.Parser{
		docslog.NewLoggingParser(fs.NewTextParser(), logger),
		docslog.NewLoggingParser(trafilatura.NewHTMLParser(), logger),
		docslog.NewLoggingParser(pdftotext.NewParser(), logger),
	}
}

func defaultHomeDir() string {
	if dir := os.Getenv("DOCQA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docqa"
	}
	dir := filepath.Join(home, ".docqa")
	_ = os.MkdirAll(dir, 0700)
	return dir
}

func defaultDBPath(homeDir string) string {
	if path := os.Getenv("DOCQA_DB"); path != "" {
		return path
	}
	return filepath.Join(homeDir, "docqa.db")
}

func defaultOllamaURL() string {
	if url := os.Getenv("DOCQA_OLLAMA_URL"); url != "" {
		return url
	}
	return ollama.DefaultBaseURL
}
