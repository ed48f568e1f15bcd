// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/config"
	"github.com/xkilldash9x/trackrunner/internal/engine"
	"github.com/xkilldash9x/trackrunner/internal/observability"
)

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	// Keep log files out of the package directory.
	t.Setenv("TRACKRUNNER_LOGGER_LOG_FILE", filepath.Join(t.TempDir(), "trackrunner.log"))
	t.Setenv("TRACKRUNNER_LOGGER_LEVEL", "error")
}

// capturedFactory records the config each engine was built with.
type capturedFactory struct {
	engine schemas.Engine
	calls  int
	cfg    *config.Config
}

func (c *capturedFactory) factory(cfg *config.Config, logger *zap.Logger) schemas.Engine {
	c.calls++
	c.cfg = cfg
	return c.engine
}

func newTestRegistry(t *testing.T, name string, eng schemas.Engine) (*engine.Registry, *capturedFactory) {
	t.Helper()
	cf := &capturedFactory{engine: eng}
	r := engine.NewRegistry()
	r.MustRegister(name, cf.factory)
	return r, cf
}

// execute runs a pristine command tree and returns stdout, stderr and the error.
func execute(t *testing.T, registry *engine.Registry, args ...string) (string, string, error) {
	t.Helper()
	var root *cobra.Command
	if registry == nil {
		root = NewRootCommand()
	} else {
		root = newRootCommand(registry)
	}
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
