package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// ReportTimeFormat stamps combined report file names.
const ReportTimeFormat = "20060102_150405"

// Assembler concatenates captured documents into one combined report.
type Assembler struct {
	output config.OutputConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAssembler(output config.OutputConfig, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		output: output,
		logger: logger.Named("assembler"),
		now:    time.Now,
	}
}

// Assemble merges the named documents from the PDF directory, in order,
// into results/<prefix>_<timestamp>.pdf and returns its path. Documents
// that no longer exist are skipped. An empty path with a nil error means
// there was nothing to assemble.
func (a *Assembler) Assemble(names []string) (string, error) {
	if len(names) == 0 {
		a.logger.Info("No captured documents, skipping combined report.")
		return "", nil
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(a.output.PDFDir(), name)
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				a.logger.Warn("Cannot stat captured document, skipping.", zap.String("file", path), zap.Error(err))
			} else {
				a.logger.Warn("Captured document is gone, skipping.", zap.String("file", path))
			}
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		a.logger.Warn("None of the captured documents exist anymore, skipping combined report.", zap.Int("expected", len(names)))
		return "", nil
	}

	if err := os.MkdirAll(a.output.ResultsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	out, err := a.reserve()
	if err != nil {
		return "", err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.MergeCreateFile(paths, out, false, conf); err != nil {
		if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			a.logger.Warn("Failed to remove incomplete report.", zap.String("file", out), zap.Error(rmErr))
		}
		return "", fmt.Errorf("failed to merge %d documents into %s: %w", len(paths), out, err)
	}

	a.logger.Info("Combined report saved.", zap.String("file", out), zap.Int("documents", len(paths)))
	return out, nil
}

// maxReportAttempts bounds the suffixes tried when report names collide.
const maxReportAttempts = 100

// reserve creates an empty report file with a name no other run holds.
// Runs that finish within the same second get _2, _3, ... suffixes.
func (a *Assembler) reserve() (string, error) {
	base := fmt.Sprintf("%s_%s", a.output.ReportPrefix, a.now().Format(ReportTimeFormat))
	for i := 1; i <= maxReportAttempts; i++ {
		name := base + ".pdf"
		if i > 1 {
			name = fmt.Sprintf("%s_%d.pdf", base, i)
		}
		path := filepath.Join(a.output.ResultsDir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create report file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to create report file: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free report name for %s after %d attempts", base, maxReportAttempts)
}
