package benchmark

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Partition strategies. The strategy is passed through to the PartitionFunc
// untouched; its meaning is defined by the collaborator.
const (
	// StrategyFast selects the fast processing mode.
	StrategyFast = "fast"

	// StrategyHiRes selects the high-resolution, OCR-assisted mode.
	StrategyHiRes = "hi_res"
)

// DefaultIterations is the number of timed runs per file when NUM_ITERATIONS
// is not set.
const DefaultIterations = 1

// Entry pairs a benchmark file with the strategy it is partitioned with.
type Entry struct {
	// Path is the file path relative to the benchmark root.
	Path string

	// Strategy is the partition strategy label.
	Strategy string
}

// DefaultEntries is the fixed set of representative files timed by the
// benchmark CLI.
var DefaultEntries = []Entry{
	// PDFs - hi_res
	{Path: "example-docs/pdf/a1977-backus-p21.pdf", Strategy: StrategyHiRes},
	{Path: "example-docs/pdf/copy-protected.pdf", Strategy: StrategyHiRes},
	{Path: "example-docs/pdf/reliance.pdf", Strategy: StrategyHiRes},
	{Path: "example-docs/pdf/pdf-with-ocr-text.pdf", Strategy: StrategyHiRes},
	// Images - hi_res
	{Path: "example-docs/double-column-A.jpg", Strategy: StrategyHiRes},
	{Path: "example-docs/double-column-B.jpg", Strategy: StrategyHiRes},
	{Path: "example-docs/embedded-images-tables.jpg", Strategy: StrategyHiRes},
	// Other document types - fast
	{Path: "example-docs/contains-pictures.docx", Strategy: StrategyFast},
	{Path: "example-docs/example-10k-1p.html", Strategy: StrategyFast},
	{Path: "example-docs/science-exploration-1p.pptx", Strategy: StrategyFast},
}

// PartitionFunc partitions the document at path using the given strategy.
// It is the external collaborator being timed.
type PartitionFunc func(ctx context.Context, path, strategy string) error

// Runner drives the benchmark: warmup, timed iterations, and aggregation.
type Runner struct {
	// root is the directory entry paths are resolved against.
	root string

	// entries is the list of (file, strategy) pairs to time.
	entries []Entry

	// iterations is the number of timed runs per file.
	iterations int

	// warmupDir holds per-extension warmup documents.
	warmupDir string

	// partition is the function being timed.
	partition PartitionFunc

	// logger receives progress messages.
	logger *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEntries replaces DefaultEntries.
func WithEntries(entries []Entry) RunnerOption {
	return func(r *Runner) {
		r.entries = entries
	}
}

// WithIterations sets the number of timed runs per file.
// Values below 1 are clamped to 1.
func WithIterations(n int) RunnerOption {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.iterations = n
	}
}

// WithWarmupDir sets the directory searched for warmup documents.
// Default is <root>/warmup-docs.
func WithWarmupDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.warmupDir = dir
	}
}

// WithLogger sets the progress logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner over the files under root.
func NewRunner(root string, partition PartitionFunc, opts ...RunnerOption) *Runner {
	r := &Runner{
		root:       root,
		entries:    DefaultEntries,
		iterations: DefaultIterations,
		partition:  partition,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.warmupDir == "" {
		r.warmupDir = filepath.Join(root, "warmup-docs")
	}
	return r
}

// Run times every configured entry that exists on disk and returns the
// result mapping. Missing files are logged and skipped. Per-file averages
// are rounded to 4 decimal places; the wall-clock total, measured around the
// entire loop, is rounded to 2 and stored under TotalKey.
func (r *Runner) Run(ctx context.Context) (Results, error) {
	results := make(Results)
	grandStart := time.Now()

	for _, entry := range r.entries {
		path := filepath.Join(r.root, entry.Path)
		if _, err := os.Stat(path); err != nil {
			r.logger.Warn("benchmark file not found, skipping", zap.String("path", entry.Path))
			continue
		}

		r.logger.Info("timing partition",
			zap.String("path", entry.Path),
			zap.String("strategy", entry.Strategy),
			zap.Int("iterations", r.iterations))

		if err := r.warmup(ctx, path); err != nil {
			return nil, fmt.Errorf("warming up for %s: %w", entry.Path, err)
		}

		avg, err := r.measure(ctx, path, entry.Strategy)
		if err != nil {
			return nil, fmt.Errorf("partitioning %s: %w", entry.Path, err)
		}

		results[entry.Path] = round(avg.Seconds(), 4)
		r.logger.Info("measured", zap.String("path", entry.Path), zap.Float64("avg_seconds", round(avg.Seconds(), 2)))
	}

	results[TotalKey] = round(time.Since(grandStart).Seconds(), 2)
	return results, nil
}

// warmup runs a single untimed fast-strategy partition to exclude one-time
// initialization cost from the timed runs. Uses the warmup-docs variant
// matching the target's extension if present, otherwise the target itself.
func (r *Runner) warmup(ctx context.Context, path string) error {
	target := path
	warmupFile := filepath.Join(r.warmupDir, "warmup"+filepath.Ext(path))
	if _, err := os.Stat(warmupFile); err == nil {
		target = warmupFile
	}
	return r.partition(ctx, target, StrategyFast)
}

// measure returns the average wall-clock duration of partitioning path over
// the configured number of iterations. time.Since reads the monotonic clock.
func (r *Runner) measure(ctx context.Context, path, strategy string) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < r.iterations; i++ {
		start := time.Now()
		if err := r.partition(ctx, path, strategy); err != nil {
			return 0, err
		}
		total += time.Since(start)
	}
	return total / time.Duration(r.iterations), nil
}

// round rounds x to the given number of decimal places.
func round(x float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(x*factor) / factor
}
