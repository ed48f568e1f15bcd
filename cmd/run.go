package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/internal/engine"
	"github.com/xkilldash9x/trackrunner/internal/observability"
	"github.com/xkilldash9x/trackrunner/internal/reporting"
)

// reportedError marks a failure whose payload has already been written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func writeErrorPayload(w io.Writer, err error, trace string) {
	if werr := reporting.WriteError(w, err, trace); werr != nil {
		fmt.Fprintln(w, err)
	}
}

// newRunCmd creates the `run` command: the entry point used by the calling
// backend. Unknown scripts and missing input files are rejected before any
// engine is built.
func newRunCmd(registry *engine.Registry) *cobra.Command {
	var (
		timeout    time.Duration
		format     string
		outputPath string
	)

	runCmd := &cobra.Command{
		Use:   "run <script> <input-file>",
		Short: "Runs an automation script over the identifiers in an input file",
		Long: `Runs the named automation script over the first column of a CSV or XLSX file.

The outcome is written to stdout as JSON. Setup failures and crashes write an
error payload to stderr. The exit code is 0 whenever the run completed, even
if some identifiers failed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: %s run <script> <input-file>", cmd.Root().Name())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			stderr := cmd.ErrOrStderr()
			defer func() {
				if r := recover(); r != nil {
					observability.Sync()
					perr := fmt.Errorf("panic: %v", r)
					writeErrorPayload(stderr, perr, string(debug.Stack()))
					err = &reportedError{err: perr}
				}
			}()

			scriptName, inputFile := args[0], args[1]
			logger := observability.GetLogger()

			factory, err := registry.Lookup(scriptName)
			if err != nil {
				writeErrorPayload(stderr, err, "")
				return &reportedError{err: err}
			}

			if _, err := os.Stat(inputFile); err != nil {
				ferr := fmt.Errorf("file not found: %s", inputFile)
				if !errors.Is(err, os.ErrNotExist) {
					ferr = fmt.Errorf("cannot access input file %s: %w", inputFile, err)
				}
				writeErrorPayload(stderr, ferr, "")
				return &reportedError{err: ferr}
			}

			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				writeErrorPayload(stderr, err, "")
				return &reportedError{err: err}
			}

			reporter, err := newReporter(cmd, format, outputPath)
			if err != nil {
				writeErrorPayload(stderr, err, "")
				return &reportedError{err: err}
			}
			defer reporter.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			eng := factory(cfg, logger)
			out, runErr := eng.Run(ctx, inputFile)
			if werr := reporter.Write(out, runErr); werr != nil {
				logger.Error("Failed to write outcome.", zap.Error(werr))
			}

			if runErr != nil {
				return &reportedError{err: runErr}
			}
			return nil
		},
	}

	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "upper bound for the whole run (0 means no limit)")
	runCmd.Flags().StringVarP(&format, "format", "f", "json", "outcome format (json, text)")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "stdout", "where to write the outcome")
	runCmd.Flags().String("headless-mode", "", "browser headless mode (new, old, off)")
	runCmd.Flags().String("exec-path", "", "path to the Chrome or Chromium binary")
	runCmd.Flags().String("results-dir", "", "directory for captured documents and the combined report")
	runCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	runCmd.Flags().Bool("strict-input", false, "fail the run when the input format is not supported")

	return runCmd
}

// newReporter writes to the command's stdout unless a file was requested.
func newReporter(cmd *cobra.Command, format, outputPath string) (reporting.Reporter, error) {
	if outputPath == "" || outputPath == "stdout" {
		return reporting.NewWriter(format, cmd.OutOrStdout())
	}
	return reporting.New(format, outputPath)
}
