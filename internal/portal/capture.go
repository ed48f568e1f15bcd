package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/browser/stability"
	"github.com/xkilldash9x/trackrunner/internal/config"
)

// ErrNoMatchingLink is returned when no result link carries the identifier
// before the step times out.
var ErrNoMatchingLink = errors.New("no result link matches the identifier")

// DefaultMatchPoll is how often the result list is re-read while the
// identifier's entry has not appeared.
const DefaultMatchPoll = 250 * time.Millisecond

// Capturer submits one identifier and saves the resulting detail view as a
// PDF in the output directory.
type Capturer struct {
	page         schemas.Page
	locators     config.LocatorsConfig
	output       config.OutputConfig
	timeout      time.Duration
	matchPoll    time.Duration
	detailSettle stability.Waiter
	logger       *zap.Logger
}

func NewCapturer(page schemas.Page, cfg config.PortalConfig, output config.OutputConfig, timeout time.Duration, detailSettle stability.Waiter, logger *zap.Logger) *Capturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capturer{
		page:         page,
		locators:     cfg.Locators,
		output:       output,
		timeout:      timeout,
		matchPoll:    DefaultMatchPoll,
		detailSettle: detailSettle,
		logger:       logger.Named("capture"),
	}
}

// DocumentName is the file name of the capture for the seq-th identifier.
func DocumentName(seq int, identifier, suffix string) string {
	return fmt.Sprintf("%03d_%s%s", seq, sanitizeFileComponent(identifier), suffix)
}

// Submit runs the full capture sequence for identifier and returns the
// saved file name, relative to the PDF directory. Every failure is an
// *ItemCaptureError. The page is back in the top-level document when
// Submit returns.
func (c *Capturer) Submit(ctx context.Context, identifier string, seq int) (name string, err error) {
	logger := c.logger.With(zap.String("identifier", identifier), zap.Int("seq", seq))
	logger.Info("Processing identifier.")

	defer func() {
		if exitErr := c.page.ExitFrame(context.Background()); exitErr != nil {
			logger.Warn("Failed to return to the top-level document.", zap.Error(exitErr))
		}
	}()

	step := func(name string, fn func(ctx context.Context) error) error {
		stepCtx, cancel := c.bounded(ctx)
		defer cancel()
		if err := fn(stepCtx); err != nil {
			return &ItemCaptureError{Identifier: identifier, Step: name, Err: err}
		}
		return nil
	}

	if err := step(StepFill, func(ctx context.Context) error {
		return c.page.Fill(ctx, c.locators.SearchInput, identifier)
	}); err != nil {
		return "", err
	}

	if err := step(StepSubmit, func(ctx context.Context) error {
		return c.page.SyntheticClick(ctx, c.locators.SubmitButton)
	}); err != nil {
		return "", err
	}

	if err := step(StepFrame, func(ctx context.Context) error {
		return c.page.EnterFrame(ctx, c.locators.ResultsFrame)
	}); err != nil {
		return "", err
	}

	var index int
	if err := step(StepMatch, func(ctx context.Context) error {
		i, err := c.waitForMatch(ctx, identifier)
		index = i
		return err
	}); err != nil {
		return "", err
	}

	if err := step(StepOpen, func(ctx context.Context) error {
		return c.page.ClickNth(ctx, c.locators.ResultLinks, index)
	}); err != nil {
		return "", err
	}

	// The settle delay has its own bound.
	if c.detailSettle != nil {
		if err := c.detailSettle.Settle(ctx); err != nil {
			return "", &ItemCaptureError{Identifier: identifier, Step: StepSettle, Err: err}
		}
	}

	var data []byte
	if err := step(StepPrint, func(ctx context.Context) error {
		var err error
		data, err = c.page.PrintPDF(ctx, schemas.A4PrintOptions())
		return err
	}); err != nil {
		return "", err
	}

	name = DocumentName(seq, identifier, c.output.FileSuffix)
	path := filepath.Join(c.output.PDFDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &ItemCaptureError{Identifier: identifier, Step: StepPersist, Err: err}
	}

	logger.Info("Saved document.", zap.String("file", name), zap.Int("bytes", len(data)))
	return name, nil
}

// waitForMatch re-reads the result links until one carries identifier or ctx
// ends. The frame can still show an earlier listing, or fill in gradually.
func (c *Capturer) waitForMatch(ctx context.Context, identifier string) (int, error) {
	seen := -1
	for {
		labels, err := c.page.Labels(ctx, c.locators.ResultLinks)
		if err != nil {
			if ctx.Err() == nil || seen < 0 {
				return -1, err
			}
			return -1, fmt.Errorf("%w (%d links seen): %w", ErrNoMatchingLink, seen, ctx.Err())
		}
		if i, ok := MatchLabel(labels, identifier); ok {
			return i, nil
		}
		seen = len(labels)

		if err := stability.Sleep(ctx, c.matchPoll); err != nil {
			return -1, fmt.Errorf("%w (%d links seen): %w", ErrNoMatchingLink, seen, err)
		}
	}
}

func (c *Capturer) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// MatchLabel picks the result link for identifier. A label equal to the
// identifier wins over one that merely contains it, so "MAEU123" does not
// open "MAEU1234" when both are listed.
func MatchLabel(labels []string, identifier string) (int, bool) {
	want := strings.TrimSpace(identifier)
	if want == "" {
		return -1, false
	}
	first := -1
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == want {
			return i, true
		}
		if first < 0 && strings.Contains(label, want) {
			first = i
		}
	}
	return first, first >= 0
}

// sanitizeFileComponent keeps identifiers usable as file names.
func sanitizeFileComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, s)
}
