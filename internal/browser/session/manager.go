// internal/browser/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// Seams for tests.
var (
	profileRoot = ""
	removeAll   = os.RemoveAll
)

// Manager owns one browser process and its throwaway profile directory for
// the lifetime of a run. Close must be called on every path, including after
// a failed Open, and is safe to call more than once.
type Manager struct {
	cfg    config.BrowserConfig
	output config.OutputConfig
	logger *zap.Logger

	mu            sync.Mutex
	profileDir    string
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	page          *CDPPage
}

// NewManager creates a manager. No browser is started until Open.
func NewManager(cfg config.BrowserConfig, output config.OutputConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		output: output,
		logger: logger.Named("session"),
	}
}

// Open resolves the browser binary, creates the profile directory, starts
// the browser on a blank page and then ensures the output directory. Every failure is a
// *DriverSetupError.
func (m *Manager) Open(ctx context.Context) (*CDPPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.page != nil {
		return m.page, nil
	}

	execPath, err := ResolveExecPath(m.cfg.ExecPath)
	if err != nil {
		return nil, &DriverSetupError{Err: err}
	}

	pattern := fmt.Sprintf("%s_%d_%d_", m.cfg.ProfilePrefix, os.Getpid(), time.Now().UnixMilli())
	profileDir, err := os.MkdirTemp(profileRoot, pattern)
	if err != nil {
		return nil, &DriverSetupError{ExecPath: execPath, Err: fmt.Errorf("failed to create profile directory: %w", err)}
	}
	m.profileDir = profileDir

	m.logger.Info("Starting browser.",
		zap.String("exec_path", execPath),
		zap.String("headless_mode", m.cfg.HeadlessMode),
		zap.String("profile_dir", profileDir),
	)

	// The allocator hangs off Background so that the browser outlives any
	// per-call deadline; Close is the only thing that ends it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(m.cfg, execPath, profileDir)...)
	m.allocCancel = allocCancel

	sugar := m.logger.Sugar()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)
	m.browserCtx, m.browserCancel = browserCtx, browserCancel

	if err := m.launch(ctx, browserCtx); err != nil {
		return nil, &DriverSetupError{ExecPath: execPath, Err: err}
	}

	// The output directory is only created for a session that started.
	if err := os.MkdirAll(m.output.PDFDir(), 0o755); err != nil {
		return nil, &DriverSetupError{ExecPath: execPath, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	m.page = newCDPPage(browserCtx, m.logger, m.cfg.InteractionTimeout)
	m.logger.Info("Browser session ready.")
	return m.page, nil
}

// launch runs the first action on the browser context. The first Run binds
// the browser's lifetime to the context it is given, so it runs on
// browserCtx directly and the caller's deadline is applied by select.
func (m *Manager) launch(ctx context.Context, browserCtx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- chromedp.Run(browserCtx, chromedp.Navigate("about:blank"))
	}()

	timeout := m.cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("browser failed to start: %w", err)
		}
		return nil
	case <-timer.C:
		m.browserCancel()
		<-errCh
		return fmt.Errorf("browser did not start within %s", timeout)
	case <-ctx.Done():
		m.browserCancel()
		<-errCh
		return ctx.Err()
	}
}

// Close shuts the browser down and removes the profile directory. Cleanup
// problems are logged and never returned, so a caller cannot mistake them
// for a failed run. It is a no-op when nothing is open.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browserCtx != nil {
		// Ask the browser to exit gracefully before tearing down the process.
		if err := chromedp.Cancel(m.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("Graceful browser shutdown failed.", zap.Error(err))
		}
	}
	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.browserCtx, m.browserCancel, m.allocCancel = nil, nil, nil
	m.page = nil

	if m.profileDir != "" {
		if err := removeAll(m.profileDir); err != nil {
			m.logger.Warn("Failed to remove browser profile directory.",
				zap.String("profile_dir", m.profileDir), zap.Error(err))
		} else {
			m.logger.Debug("Removed browser profile directory.", zap.String("profile_dir", m.profileDir))
		}
		m.profileDir = ""
	}
	return nil
}
