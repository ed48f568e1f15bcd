// File: cmd/trackrunner/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/trackrunner/cmd"
	"github.com/xkilldash9x/trackrunner/internal/observability"
	"github.com/xkilldash9x/trackrunner/internal/reporting"
)

// Seams for tests.
var (
	osExit             = os.Exit
	stderr   io.Writer = os.Stderr
	execute            = cmd.Execute
)

func main() {
	defer handlePanic()

	// An interrupt cancels the run; the browser is still shut down and
	// every remaining identifier is recorded as failed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx)
	observability.Sync()
	stop()
	osExit(code)
}

func run(ctx context.Context) int {
	if err := execute(ctx); err != nil {
		return 1
	}
	return 0
}

// handlePanic turns a crash outside the run command into the error payload
// the calling process expects on stderr.
func handlePanic() {
	if r := recover(); r != nil {
		observability.Sync()
		if err := reporting.WriteError(stderr, fmt.Errorf("panic: %v", r), string(debug.Stack())); err != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
		}
		osExit(1)
	}
}
