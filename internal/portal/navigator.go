// Package portal drives the tracking portal: bringing a fresh page to a
// ready state and capturing the detail view for one identifier at a time.
package portal

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/browser/stability"
	"github.com/xkilldash9x/trackrunner/internal/config"
)

// State is a step of the navigation sequence.
type State int

const (
	StateNew State = iota
	StateLoaded
	StateCookieChecked
	StateCoachChecked
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLoaded:
		return "loaded"
	case StateCookieChecked:
		return "cookie_checked"
	case StateCoachChecked:
		return "coach_checked"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Navigator moves a page from freshly opened to ready for input. Overlays
// are optional: an overlay that never shows up is as good as one dismissed.
type Navigator struct {
	page        schemas.Page
	url         string
	locators    config.LocatorsConfig
	popupSettle stability.Waiter
	logger      *zap.Logger

	state State
}

func NewNavigator(page schemas.Page, cfg config.PortalConfig, popupSettle stability.Waiter, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		page:        page,
		url:         cfg.URL,
		locators:    cfg.Locators,
		popupSettle: popupSettle,
		logger:      logger.Named("navigator"),
	}
}

// State returns the last state reached.
func (n *Navigator) State() State { return n.state }

// Open loads the portal URL and stabilises the page.
func (n *Navigator) Open(ctx context.Context) error {
	n.state = StateNew
	n.logger.Info("Opening portal.", zap.String("url", n.url))
	if err := n.page.Navigate(ctx, n.url); err != nil {
		return &NavigationError{URL: n.url, Step: "navigate", Err: err}
	}
	return n.Stabilize(ctx)
}

// Stabilize waits for the root element, then tries each overlay once.
// Only a missing root element or a cancelled context fails it.
func (n *Navigator) Stabilize(ctx context.Context) error {
	if err := n.page.WaitPresent(ctx, n.locators.Root); err != nil {
		return &NavigationError{URL: n.url, Step: "wait for root element", Err: err}
	}
	n.advance(StateLoaded)

	if err := n.dismiss(ctx, "consent banner", n.locators.CookieAccept); err != nil {
		return &NavigationError{URL: n.url, Step: "consent banner", Err: err}
	}
	n.advance(StateCookieChecked)

	if err := n.dismiss(ctx, "coach mark", n.locators.CoachDismiss); err != nil {
		return &NavigationError{URL: n.url, Step: "coach mark", Err: err}
	}
	n.advance(StateCoachChecked)

	n.advance(StateReady)
	return nil
}

func (n *Navigator) advance(s State) {
	n.state = s
	n.logger.Debug("Navigation state changed.", zap.Stringer("state", s))
}

// dismiss clicks an overlay control if it appears. It only returns an error
// when ctx itself is done.
func (n *Navigator) dismiss(ctx context.Context, name, selector string) error {
	if selector == "" {
		return nil
	}
	if err := n.page.Click(ctx, selector); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.logger.Info("Overlay not present.", zap.String("overlay", name), zap.NamedError("reason", err))
		return nil
	}
	n.logger.Info("Dismissed overlay.", zap.String("overlay", name))
	if n.popupSettle == nil {
		return nil
	}
	return n.popupSettle.Settle(ctx)
}
