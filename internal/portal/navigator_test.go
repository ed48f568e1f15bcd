package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/trackrunner/internal/config"
	"github.com/xkilldash9x/trackrunner/internal/mocks"
)

// countingWaiter records how often a settle delay was applied.
type countingWaiter struct {
	calls int
	err   error
}

func (w *countingWaiter) Settle(ctx context.Context) error {
	w.calls++
	return w.err
}

var errTimeout = errors.New("wait for element timed out: context deadline exceeded")

func TestNavigatorOverlayTolerance(t *testing.T) {
	portalCfg := config.NewDefaultConfig().Portal
	loc := portalCfg.Locators

	cases := []struct {
		name        string
		cookie      error
		coach       error
		wantSettles int
	}{
		{name: "no overlays", cookie: errTimeout, coach: errTimeout, wantSettles: 0},
		{name: "consent banner only", cookie: nil, coach: errTimeout, wantSettles: 1},
		{name: "coach mark only", cookie: errTimeout, coach: nil, wantSettles: 1},
		{name: "both overlays", cookie: nil, coach: nil, wantSettles: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := new(mocks.MockPage)
			page.On("Navigate", mock.Anything, portalCfg.URL).Return(nil).Once()
			page.On("WaitPresent", mock.Anything, loc.Root).Return(nil).Once()
			page.On("Click", mock.Anything, loc.CookieAccept).Return(tc.cookie).Once()
			page.On("Click", mock.Anything, loc.CoachDismiss).Return(tc.coach).Once()

			waiter := &countingWaiter{}
			nav := NewNavigator(page, portalCfg, waiter, zaptest.NewLogger(t))

			require.NoError(t, nav.Open(context.Background()))
			assert.Equal(t, StateReady, nav.State())
			assert.Equal(t, tc.wantSettles, waiter.calls)
			page.AssertExpectations(t)
		})
	}
}

func TestNavigatorRootMissing(t *testing.T) {
	portalCfg := config.NewDefaultConfig().Portal
	page := new(mocks.MockPage)
	page.On("Navigate", mock.Anything, portalCfg.URL).Return(nil)
	page.On("WaitPresent", mock.Anything, portalCfg.Locators.Root).Return(errTimeout)

	nav := NewNavigator(page, portalCfg, &countingWaiter{}, zaptest.NewLogger(t))
	err := nav.Open(context.Background())

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "wait for root element", navErr.Step)
	assert.ErrorIs(t, err, errTimeout)
	assert.Equal(t, StateNew, nav.State())
	page.AssertNotCalled(t, "Click", mock.Anything, mock.Anything)
}

func TestNavigatorNavigateFailure(t *testing.T) {
	portalCfg := config.NewDefaultConfig().Portal
	page := new(mocks.MockPage)
	page.On("Navigate", mock.Anything, portalCfg.URL).Return(errors.New("net::ERR_NAME_NOT_RESOLVED"))

	nav := NewNavigator(page, portalCfg, nil, zaptest.NewLogger(t))
	err := nav.Open(context.Background())

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "navigate", navErr.Step)
	assert.Contains(t, err.Error(), portalCfg.URL)
}

func TestNavigatorCancelledContext(t *testing.T) {
	portalCfg := config.NewDefaultConfig().Portal
	ctx, cancel := context.WithCancel(context.Background())

	page := new(mocks.MockPage)
	page.On("WaitPresent", mock.Anything, portalCfg.Locators.Root).Return(nil)
	page.On("Click", mock.Anything, portalCfg.Locators.CookieAccept).
		Run(func(mock.Arguments) { cancel() }).
		Return(context.Canceled)

	nav := NewNavigator(page, portalCfg, nil, zaptest.NewLogger(t))
	err := nav.Stabilize(ctx)

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateLoaded, nav.State())
}

func TestNavigatorSkipsEmptyLocators(t *testing.T) {
	portalCfg := config.NewDefaultConfig().Portal
	portalCfg.Locators.CookieAccept = ""
	portalCfg.Locators.CoachDismiss = ""

	page := new(mocks.MockPage)
	page.On("WaitPresent", mock.Anything, portalCfg.Locators.Root).Return(nil)

	nav := NewNavigator(page, portalCfg, nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, nav.Stabilize(ctx))
	assert.Equal(t, StateReady, nav.State())
	page.AssertNotCalled(t, "Click", mock.Anything, mock.Anything)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", State(42).String())
}
