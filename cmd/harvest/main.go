package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/batch"
	"github.com/fwojciec/harvest/gemini"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/htmltomarkdown"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/lru"
	hslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/fwojciec/harvest/trafilatura"
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
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing selector memory.
	DB *sqlite.DB

	// Memory for end-to-end testing.
	Memory harvest.SelectorMemory
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
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
		kong.Name("harvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
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

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Open database and wire selector memory with an LRU read cache.
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set HARVEST_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	cached, err := lru.NewMemory(sqlite.NewMemoryService(m.DB), lru.DefaultSize)
	if err != nil {
		return fmt.Errorf("failed to create selector cache: %w", err)
	}
	m.Memory = hslog.NewLoggingMemory(cached, logger)
	deps.DB = m.DB
	deps.Memory = m.Memory

	// The validator is optional: without an API key the engine degrades
	// to statistics-only container selection.
	engine := &harvest.Engine{}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		engine.Validator = hslog.NewLoggingValidator(gemini.NewValidator(client), logger)
	}
	deps.Engine = engine

	deps.Fetcher = hslog.NewLoggingFetcher(harvesthttp.NewFetcher(), logger)
	defer deps.Fetcher.Close()
	deps.Builder = goquery.NewBuilder()

	if cmd == "run" {
		deps.Harvester = &batch.Harvester{
			Fetcher:     deps.Fetcher,
			Builder:     deps.Builder,
			Engine:      engine,
			Fallback:    trafilatura.NewExtractor(htmltomarkdown.NewConverter()),
			Memory:      m.Memory,
			Limiter:     batch.NewDomainLimiter(cli.Run.RPS),
			Metrics:     batch.NewMetrics(),
			Logger:      logger,
			Concurrency: cli.Run.Concurrency,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("HARVEST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "harvest.db"
	}
	dir := filepath.Join(home, ".harvest")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "harvest.db")
}
