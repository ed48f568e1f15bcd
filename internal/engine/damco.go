package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/browser/session"
	"github.com/xkilldash9x/trackrunner/internal/browser/stability"
	"github.com/xkilldash9x/trackrunner/internal/config"
	"github.com/xkilldash9x/trackrunner/internal/input"
	"github.com/xkilldash9x/trackrunner/internal/portal"
	"github.com/xkilldash9x/trackrunner/internal/reporting"
)

// DamcoTrackingName is the script name of the Damco FCR tracking engine.
const DamcoTrackingName = "damco_tracking_maersk"

// PageSession is the browser lifecycle an engine run needs.
type PageSession interface {
	Open(ctx context.Context) (schemas.Page, error)
	Close() error
}

// managerSession adapts session.Manager to PageSession.
type managerSession struct {
	m *session.Manager
}

func (s managerSession) Open(ctx context.Context) (schemas.Page, error) {
	page, err := s.m.Open(ctx)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s managerSession) Close() error { return s.m.Close() }

// DamcoTracking captures the FCR detail page for every identifier in an
// input file and merges the captures into one report.
type DamcoTracking struct {
	cfg    *config.Config
	logger *zap.Logger

	newSession func() PageSession
	newRunID   func() string
	now        func() time.Time
}

// NewDamcoTracking is the registry factory for DamcoTrackingName.
func NewDamcoTracking(cfg *config.Config, logger *zap.Logger) schemas.Engine {
	return newDamcoTracking(cfg, logger)
}

func newDamcoTracking(cfg *config.Config, logger *zap.Logger) *DamcoTracking {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("engine")
	e := &DamcoTracking{
		cfg:      cfg,
		logger:   logger,
		newRunID: func() string { return uuid.NewString() },
		now:      time.Now,
	}
	e.newSession = func() PageSession {
		return managerSession{m: session.NewManager(cfg.Browser, cfg.Output, logger)}
	}
	return e
}

func (e *DamcoTracking) Name() string { return DamcoTrackingName }

// Run processes inputFile end to end. The returned error is non-nil only for
// fatal failures: browser setup, portal navigation, or an unreadable input
// file. The outcome is never nil and its Success flag is true whenever the
// portal was reached, even if every identifier failed.
func (e *DamcoTracking) Run(ctx context.Context, inputFile string) (out *schemas.Outcome, err error) {
	runID := e.newRunID()
	logger := e.logger.With(zap.String("run_id", runID))

	out = &schemas.Outcome{
		RunID:     runID,
		Script:    e.Name(),
		InputFile: inputFile,
		Results:   []schemas.ResultRecord{},
		StartedAt: e.now(),
	}
	defer func() { out.FinishedAt = e.now() }()

	logger.Info("Starting run.", zap.String("script", e.Name()), zap.String("input_file", inputFile))

	sess := e.newSession()
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			logger.Warn("Session close reported an error.", zap.Error(closeErr))
		}
	}()

	page, err := sess.Open(ctx)
	if err != nil {
		logger.Error("Browser setup failed.", zap.Error(err))
		return out, err
	}

	timing := e.cfg.Timing
	ready := readyCondition(page)

	nav := portal.NewNavigator(page, e.cfg.Portal, stability.New(timing, timing.PopupSettle, ready, logger), logger)
	if err := nav.Open(ctx); err != nil {
		logger.Error("Portal did not reach a ready state.", zap.Stringer("state", nav.State()), zap.Error(err))
		return out, err
	}

	ids, err := e.readIdentifiers(inputFile, logger)
	if err != nil {
		return out, err
	}

	capturer := portal.NewCapturer(page, e.cfg.Portal, e.cfg.Output, e.cfg.Browser.InteractionTimeout,
		stability.New(timing, timing.DetailSettle, ready, logger), logger)
	batch := NewBatchProcessor(capturer, stability.Fixed{Delay: timing.InterItemDelay}, logger)

	captured, failed := batch.Run(ctx, ids)
	out.Results = batch.Records()

	report, err := reporting.NewAssembler(e.cfg.Output, logger).Assemble(captured)
	if err != nil {
		// The captures are on disk; only the combined copy is missing.
		logger.Error("Failed to assemble combined report.", zap.Error(err))
	}
	out.CombinedReport = report
	out.Success = true

	logger.Sugar().Infof("Done. success=%d fail=%d", len(captured), len(failed))
	return out, nil
}

// readIdentifiers treats an unsupported extension as an empty batch unless
// input.strict is set.
func (e *DamcoTracking) readIdentifiers(path string, logger *zap.Logger) ([]string, error) {
	ids, err := input.NewReader(e.cfg.Input).Read(path)
	if err == nil {
		logger.Info("Read identifiers.", zap.Int("count", len(ids)))
		return ids, nil
	}

	var formatErr *input.UnsupportedFormatError
	if errors.As(err, &formatErr) && !e.cfg.Input.Strict {
		logger.Warn("Unsupported input format, nothing to process.", zap.String("ext", formatErr.Ext))
		return nil, nil
	}
	logger.Error("Failed to read identifiers.", zap.Error(err))
	return nil, err
}

func readyCondition(page schemas.Page) stability.Condition {
	return func(ctx context.Context) (bool, error) {
		state, err := page.ReadyState(ctx)
		if err != nil {
			return false, err
		}
		return state == "complete", nil
	}
}
