package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/bucket"
	"github.com/Aman-CERP/wordex/internal/catalog"
	"github.com/Aman-CERP/wordex/internal/config"
	"github.com/Aman-CERP/wordex/internal/corpus"
	"github.com/Aman-CERP/wordex/internal/logging"
	"github.com/Aman-CERP/wordex/internal/pipeline"
	"github.com/Aman-CERP/wordex/internal/tokenizer"
	"github.com/Aman-CERP/wordex/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var (
		noTUI   bool
		workers int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build the inverted index for a directory",
		Long: `Index every text file under a directory.

Files are enumerated in deterministic order, tokenized by a worker
pool, merged into a single index, and published as one bucket file per
leading character class. Unreadable or binary files are skipped and
reported; the rest of the corpus still gets indexed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runIndex(ctx, path, noTUI, workers, output)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable TUI mode, use plain text output")
	cmd.Flags().IntVar(&workers, "workers", 0, "Tokenizer worker count (default: config or CPU count)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default: config)")

	return cmd
}

func runIndex(ctx context.Context, path string, noTUI bool, workers int, output string) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Pipeline.Workers = workers
	}
	if output != "" {
		cfg.Output.Dir = output
	}

	outDir := cfg.Output.Dir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	level := cfg.Logging.Level
	if debugMode {
		level = "debug"
	}
	cleanup, err := logging.SetupDefault(outDir, level)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()
	log := slog.Default()

	// One writer per output directory.
	lock := bucket.NewDirLock(outDir)
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	deadline, err := cfg.Deadline()
	if err != nil {
		return err
	}

	exclude := excludeOutputDir(cfg.Corpus.Exclude, root, outDir)

	renderer := ui.NewRenderer(ui.Config{
		Output:     os.Stdout,
		ForcePlain: noTUI,
		CorpusDir:  root,
	})
	if err := renderer.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = renderer.Stop() }()

	coord := pipeline.NewCoordinator(pipeline.Config{
		Workers:      cfg.Pipeline.Workers,
		QueueDepth:   cfg.Pipeline.QueueDepth,
		OutputDir:    outDir,
		Rule:         tokenizer.NewRule(cfg.Tokenizer.MinTokenLength, cfg.Tokenizer.SplitIdentifiers, cfg.Tokenizer.StopWords),
		MaxFileSize:  cfg.Corpus.MaxFileSize,
		FlushRetries: cfg.Storage.FlushRetries,
		Deadline:     deadline,
		FatalKinds:   cfg.FatalKindSet(),
		Renderer:     renderer,
		Logger:       log,
	})

	src := corpus.NewSource(corpus.NewWalker(root, corpus.WalkOptions{
		Include: cfg.Corpus.Include,
		Exclude: exclude,
	}))

	res, runErr := coord.Run(ctx, src)

	// Record the run either way so 'wordex stats' sees failures too.
	if res != nil {
		if cat, catErr := catalog.Open(outDir); catErr == nil {
			if _, recErr := cat.RecordRun(res); recErr != nil {
				log.Error("catalog_record_failed", slog.String("error", recErr.Error()))
			}
			_ = cat.Close()
		} else {
			log.Error("catalog_open_failed", slog.String("error", catErr.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}

	renderer.Complete(ui.CompletionStats{
		Documents: len(res.Indexed),
		Skipped:   len(res.Skipped),
		Words:     res.Words(),
		Buckets:   len(res.Buckets),
		Duration:  res.Duration,
	})
	return nil
}

// loadConfig reads the config file for a corpus root, honoring --config.
func loadConfig(root string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(root, config.DefaultFileName)
	}
	return config.Load(path)
}

// excludeOutputDir keeps the index output out of its own corpus.
func excludeOutputDir(exclude []string, root, outDir string) []string {
	rel, err := filepath.Rel(root, outDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return exclude
	}
	rel = filepath.ToSlash(rel)

	pattern := rel + "/**"
	for _, p := range exclude {
		if p == pattern {
			return exclude
		}
	}
	return append(append([]string(nil), exclude...), pattern)
}
