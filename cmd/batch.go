package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"facturas/internal/config"
	"facturas/internal/extract"
	"facturas/internal/logger"
	"facturas/internal/store"
	"facturas/internal/textsource"
	"facturas/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Extract and store every invoice document in a directory",
	Long: `Process all PDF and text-dump files in a directory, extract each
invoice and store the records in the SQLite database.

Files are processed by a worker pool; each document is independent, so
extraction parallelizes freely. Duplicate invoices are detected by CAE
(or by document number + issuer CUIT + type when no CAE was recovered)
and skipped. A record missing core fields is stored anyway and counted
as needing review.`,
	Example: `  # Process a folder of invoices into the default database
  facturas batch ./inbox

  # Custom database and worker count
  facturas batch ./inbox --db facturas.db --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchJob is one file handed to a worker.
type batchJob struct {
	Path  string
	Index int
}

// batchResult is the outcome for one file.
type batchResult struct {
	Filename    string
	Invoice     *models.ExtractedInvoice
	Duplicate   bool
	NeedsReview bool
	Err         error
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("db", "", "SQLite database path (default: DB_PATH or facturas.db)")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default: BATCH_WORKERS or 4)")
	batchCmd.Flags().Int("timeout", 600, "Total processing timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	dir := args[0]
	dbPath, _ := cmd.Flags().GetString("db")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if workers <= 0 {
		workers = defaultWorkers()
	}

	files, err := collectDocuments(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No PDF or text files found.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	source, closer, err := newTextSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create text source: %w", err)
	}
	defer closer.Close()

	db, err := store.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	parser := extract.NewParser(extract.Options{SelfTaxID: cfg.SelfCUIT})

	log.Info().
		Int("files", len(files)).
		Int("workers", workers).
		Str("db", dbPath).
		Msg("Starting batch extraction")

	results := processInParallel(ctx, files, workers, parser, source, db, log)

	var success, duplicates, review, failed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Duplicate:
			duplicates++
		default:
			success++
			if r.NeedsReview {
				review++
			}
		}
	}

	fmt.Printf("\nProcesados: %d. Duplicados: %d. Errores: %d.\n", success, duplicates, failed)
	if review > 0 {
		fmt.Printf("Para revisar: %d (campos incompletos).\n", review)
	}
	if success == 0 && duplicates > 0 {
		fmt.Println("Todas las facturas ya existían.")
	}

	log.Info().
		Int("stored", success).
		Int("duplicates", duplicates).
		Int("needs_review", review).
		Int("errors", failed).
		Msg("Batch extraction finished")
	return nil
}

// collectDocuments lists the processable files of a directory in stable
// name order.
func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// defaultWorkers returns the worker count from the environment or a
// conservative default.
func defaultWorkers() int {
	if workersStr := os.Getenv("BATCH_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers > 0 {
			return workers
		}
	}
	return 4
}

// processInParallel runs extraction with a worker pool. The store
// serializes duplicate checks per dedup key, so workers racing on the
// same file set cannot insert the same invoice twice.
func processInParallel(ctx context.Context, files []string, workers int, parser *extract.Parser, source textsource.Source, db *store.Store, log zerolog.Logger) []batchResult {
	jobs := make(chan batchJob, len(files))
	results := make([]batchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", job.Path).
					Msg("Worker processing document")

				result := processOne(ctx, job.Path, parser, source, db)
				result.Filename = filepath.Base(job.Path)
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s\n", processedCount, len(files), result.Filename, statusLabel(result))
				mu.Unlock()
			}
		}(w)
	}

	for i, f := range files {
		jobs <- batchJob{Path: f, Index: i}
	}
	close(jobs)
	wg.Wait()

	return results
}

func processOne(ctx context.Context, path string, parser *extract.Parser, source textsource.Source, db *store.Store) batchResult {
	text, err := source.Text(ctx, path)
	if err != nil {
		return batchResult{Err: err}
	}

	inv, err := parser.Parse(text, filepath.Base(path))
	if err != nil {
		return batchResult{Err: err}
	}

	if _, err := db.Save(ctx, inv); err != nil {
		if errors.Is(err, store.ErrDuplicateInvoice) {
			return batchResult{Invoice: inv, Duplicate: true}
		}
		return batchResult{Invoice: inv, Err: err}
	}
	return batchResult{Invoice: inv, NeedsReview: inv.NeedsReview()}
}

func statusLabel(r batchResult) string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("error (%v)", r.Err)
	case r.Duplicate:
		return "duplicado"
	case r.NeedsReview:
		return "ok (revisar)"
	default:
		return "ok"
	}
}
