// Package stability provides the wait strategies used after an interaction
// when the page gives no explicit render-complete signal.
package stability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// Waiter blocks until the page is considered settled or ctx ends.
type Waiter interface {
	Settle(ctx context.Context) error
}

// Condition reports whether the page has settled.
type Condition func(ctx context.Context) (bool, error)

// Sleep pauses for d, returning early with ctx.Err() if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fixed waits for a constant delay.
type Fixed struct {
	Delay time.Duration
}

func (f Fixed) Settle(ctx context.Context) error {
	return Sleep(ctx, f.Delay)
}

// Poll evaluates Condition every Interval and returns as soon as it holds.
// Max bounds the wait: when the condition never holds, or cannot be evaluated,
// Poll degrades to a fixed delay of Max.
type Poll struct {
	Condition Condition
	Interval  time.Duration
	Max       time.Duration
	Logger    *zap.Logger
}

func (p Poll) Settle(ctx context.Context) error {
	if p.Condition == nil || p.Interval <= 0 {
		return Sleep(ctx, p.Max)
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	deadline := time.Now().Add(p.Max)
	for {
		ok, err := p.Condition(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debug("Settle condition unavailable, falling back to fixed delay.", zap.Error(err))
			return Sleep(ctx, time.Until(deadline))
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			logger.Debug("Settle condition not met before the upper bound.", zap.Duration("max", p.Max))
			return nil
		}
		wait := p.Interval
		if wait > remaining {
			wait = remaining
		}
		if err := Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// New builds the waiter selected by timing.settle_strategy. cond is only used
// by the poll strategy; delay is the fixed delay or the poll upper bound.
func New(timing config.TimingConfig, delay time.Duration, cond Condition, logger *zap.Logger) Waiter {
	if timing.SettleStrategy == config.SettlePoll {
		return Poll{Condition: cond, Interval: timing.PollInterval, Max: delay, Logger: logger}
	}
	return Fixed{Delay: delay}
}
