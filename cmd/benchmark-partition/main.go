// Command benchmark-partition measures partition runtime over a fixed set of
// representative example-docs files.
//
// Follows the same conventions as the surrounding performance tooling:
//   - PDFs and images are run with strategy "hi_res".
//   - Everything else is run with strategy "fast".
//   - Each file is timed over NUM_ITERATIONS runs (after a warmup) and the
//     average is recorded.
//
// Writes a JSON file mapping each file to its average runtime, plus a
// "__total__" key with the wall-clock total. An optional positional argument
// sets the output path. The total is also appended to $GITHUB_OUTPUT as
// "duration=<seconds>" when running in Actions.
//
// Usage:
//
//	benchmark-partition [output.json]
//	benchmark-partition install-model
//
// Environment variables:
//
//	NUM_ITERATIONS   number of timed iterations per file (default: 1)
//	GITHUB_OUTPUT    step output file, written when set
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prethora/docprep/benchmark"
	"github.com/prethora/docprep/tokenize"
)

// defaultOutput is where results land when no output path is given.
const defaultOutput = "partition-speed-test/benchmark_results.json"

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitNetworkError indicates the model download failed.
	ExitNetworkError = 5

	// ExitHashMismatch indicates artifact hash verification failed.
	ExitHashMismatch = 6

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 7
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: initializing logger:", err)
		os.Exit(ExitGeneralError)
	}
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("benchmark failed", zap.Error(err))
		os.Exit(exitCodeFromError(err))
	}
}

// newRootCmd builds the CLI tree: the benchmark itself at the root plus an
// install-model subcommand for pre-installing the tokenization model.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "benchmark-partition [output.json]",
		Short:         "Time document partitioning over a fixed file set",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := defaultOutput
			if len(args) > 0 {
				output = args[0]
			}
			return runBenchmark(cmd.Context(), logger, output)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "install-model",
		Short: "Download and install the tokenization model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := tokenize.New(tokenize.WithLogger(newZapAdapter(logger)))
			return tok.Install(cmd.Context())
		},
	})

	return root
}

// runBenchmark drives the timing loop and persists the results.
func runBenchmark(ctx context.Context, logger *zap.Logger, output string) error {
	iterations := benchmark.IterationsFromEnv()
	logger.Info("partition benchmark", zap.Int("iterations", iterations))

	tok := tokenize.New(tokenize.WithLogger(newZapAdapter(logger)))

	runner := benchmark.NewRunner(".", partitionWith(tok),
		benchmark.WithIterations(iterations),
		benchmark.WithLogger(logger))

	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("total wall-clock time", zap.Float64("seconds", results.Total()))

	if err := results.WriteFile(output); err != nil {
		return err
	}
	logger.Info("results written", zap.String("path", output))

	return benchmark.WriteGitHubOutput(results)
}

// partitionWith returns the partition collaborator being timed. Real
// partitioning is provided by an external engine; this stand-in exercises
// the text-processing pipeline so the harness has stable work to measure:
// fast splits the document into sentences, hi_res additionally tags them.
func partitionWith(tok *tokenize.Tokenizer) benchmark.PartitionFunc {
	return func(ctx context.Context, path, strategy string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		sentences, err := tok.SentTokenize(ctx, string(data))
		if err != nil {
			return err
		}
		if strategy != benchmark.StrategyHiRes {
			return nil
		}

		for _, sentence := range sentences {
			if _, err := tok.PosTag(ctx, sentence); err != nil {
				return err
			}
		}
		return nil
	}
}

// zapAdapter exposes a *zap.SugaredLogger through the tokenize.Logger
// interface.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func newZapAdapter(logger *zap.Logger) *zapAdapter {
	return &zapAdapter{sugar: logger.Sugar()}
}

func (a *zapAdapter) Debug(msg string, keysAndValues ...any) { a.sugar.Debugw(msg, keysAndValues...) }
func (a *zapAdapter) Info(msg string, keysAndValues ...any)  { a.sugar.Infow(msg, keysAndValues...) }
func (a *zapAdapter) Warn(msg string, keysAndValues ...any)  { a.sugar.Warnw(msg, keysAndValues...) }
func (a *zapAdapter) Error(msg string, keysAndValues ...any) { a.sugar.Errorw(msg, keysAndValues...) }

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, tokenize.ErrDownloadFailed):
		return ExitNetworkError
	case errors.Is(err, tokenize.ErrHashMismatch):
		return ExitHashMismatch
	case errors.Is(err, tokenize.ErrInstallFailed), errors.Is(err, tokenize.ErrStorageError):
		return ExitStorageError
	default:
		return ExitGeneralError
	}
}
