package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/logseek/internal/config"
	"github.com/dshills/logseek/internal/engine"
	"github.com/dshills/logseek/internal/logger"
	"github.com/dshills/logseek/internal/metrics"
	"github.com/dshills/logseek/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const usageText = `logseek - import and search large line-delimited text files

Usage:
  logseek [-config path] <command> [arguments]

Commands:
  import <file>   import a file into the store (-no-dedupe to keep duplicates)
  search <query>  run a ranked full-text search (-limit, -offset)
  stats           show record count and store size
  clear -yes      delete every record (irreversible)
  version         print build information
`

func main() {
	// A .env file overlays the process environment, which in turn
	// overrides the YAML config.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		fmt.Printf("logseek %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args); err != nil {
		slog.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		go serveMetrics(cfg.Metrics.Port, m)
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.Store.OpenTimeout.Std())
	defer cancel()
	eng, err := engine.Open(openCtx, cfg.Store.Path, engine.Config{
		BatchSize: cfg.Import.BatchSize,
		PageSize:  cfg.Search.PageSize,
		CacheSize: cfg.Search.CacheSize,
		CacheTTL:  cfg.Search.CacheTTL.Std(),
		Metrics:   m,
	})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	switch args[0] {
	case "import":
		return runImport(ctx, eng, args[1:])
	case "search":
		return runSearch(ctx, eng, cfg, args[1:])
	case "stats":
		return runStats(ctx, eng)
	case "clear":
		return runClear(ctx, eng, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runImport(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	noDedupe := fs.Bool("no-dedupe", false, "keep duplicate lines")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: logseek import [-no-dedupe] <file>")
	}

	st, err := eng.ImportFile(ctx, fs.Arg(0), !*noDedupe)
	if st != nil {
		// Printed even on failure: a partial import is still an import.
		fmt.Printf("Lines read:         %d\n", st.TotalLines)
		fmt.Printf("Records imported:   %d\n", st.Imported)
		fmt.Printf("Duplicates skipped: %d\n", st.Duplicates)
		fmt.Printf("Empty lines:        %d\n", st.EmptyLines)
		fmt.Printf("Duration:           %s\n", st.Duration().Round(time.Millisecond))
		fmt.Printf("Throughput:         %.0f records/second\n", st.Throughput())
	}
	return err
}

func runSearch(ctx context.Context, eng *engine.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("limit", cfg.Search.PageSize, "maximum results to return")
	offset := fs.Int("offset", 0, "results to skip")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: logseek search [-limit n] [-offset n] <query>")
	}

	query := strings.Join(fs.Args(), " ")
	results, total, err := eng.Search(ctx, query, *limit, *offset)
	if err != nil {
		return err
	}

	fmt.Printf("%d matches\n", total)
	for _, r := range results {
		fmt.Println(r)
	}
	return nil
}

func runStats(ctx context.Context, eng *engine.Engine) error {
	report := eng.Stats(ctx)
	if report.Err != "" {
		return fmt.Errorf("stats unavailable: %s", report.Err)
	}

	fmt.Printf("Total records: %d\n", report.TotalRecords)
	fmt.Printf("Store size:    %.2f MB\n", report.SizeMB)
	fmt.Printf("Store path:    %s\n", report.Path)
	if at, count, ok := eng.LastImport(ctx); ok {
		fmt.Printf("Last import:   %d records at %s\n", count, at.Format(time.RFC3339))
	}
	return nil
}

func runClear(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := fs.Bool("yes", false, "confirm deletion of all records")
	_ = fs.Parse(args)
	if !*confirmed {
		return fmt.Errorf("refusing to clear without -yes")
	}

	if err := eng.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Println("All records cleared.")
	return nil
}

func serveMetrics(port int, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	addr := fmt.Sprintf(":%d", port)
	slog.Info("metrics listener started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics listener stopped", "error", err)
	}
}
