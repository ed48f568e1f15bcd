// internal/browser/session/page.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
)

// CDPPage implements schemas.Page on a single chromedp tab. Selector based
// operations resolve inside the current frame once EnterFrame has been
// called.
type CDPPage struct {
	ctx            context.Context // tab context owned by the Manager
	logger         *zap.Logger
	timeout        time.Duration
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error

	frame *cdp.Node
}

var _ schemas.Page = (*CDPPage)(nil)

func newCDPPage(ctx context.Context, logger *zap.Logger, timeout time.Duration) *CDPPage {
	p := &CDPPage{
		ctx:     ctx,
		logger:  logger.Named("page"),
		timeout: timeout,
	}
	p.runActionsFunc = p.runActions
	return p
}

// runActions executes actions on the tab, bounded by both the tab's lifetime
// and the caller's context.
func (p *CDPPage) runActions(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// run applies the per-interaction timeout unless the caller already set a
// tighter deadline.
func (p *CDPPage) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	opCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.runActionsFunc(opCtx, actions...)
	if err == nil {
		return nil
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		p.logger.Debug("Page operation timed out.", zap.String("op", op), zap.Duration("timeout", p.timeout))
		return fmt.Errorf("%s timed out: %w", op, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func (p *CDPPage) query(by chromedp.QueryOption) []chromedp.QueryOption {
	opts := []chromedp.QueryOption{by}
	if p.frame != nil {
		opts = append(opts, chromedp.FromNode(p.frame))
	}
	return opts
}

func (p *CDPPage) Navigate(ctx context.Context, url string) error {
	p.frame = nil
	return p.run(ctx, "navigate to "+url, chromedp.Navigate(url))
}

// WaitPresent blocks until selector is attached to the document.
func (p *CDPPage) WaitPresent(ctx context.Context, selector string) error {
	return p.run(ctx, "wait for "+selector, chromedp.WaitReady(selector, p.query(chromedp.ByQuery)...))
}

// Click performs a pointer click on the first visible match.
func (p *CDPPage) Click(ctx context.Context, selector string) error {
	opts := append(p.query(chromedp.ByQuery), chromedp.NodeVisible)
	return p.run(ctx, "click "+selector, chromedp.Click(selector, opts...))
}

// SyntheticClick calls the element's click() from script. It bypasses
// hit-testing, so an element covered by an overlay still receives it.
func (p *CDPPage) SyntheticClick(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	return p.run(ctx, "synthetic click "+selector,
		chromedp.Nodes(selector, &nodes, p.query(chromedp.ByQuery)...),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return fmt.Errorf("no element matches %q", selector)
			}
			return callOnNode(ctx, nodes[0].NodeID, `function() { this.click(); }`)
		}),
	)
}

// Fill replaces the value of a text field.
func (p *CDPPage) Fill(ctx context.Context, selector, text string) error {
	opts := p.query(chromedp.ByQuery)
	return p.run(ctx, "fill "+selector,
		chromedp.Clear(selector, opts...),
		chromedp.SendKeys(selector, text, opts...),
	)
}

// EnterFrame scopes later selector operations to the document of the
// iframe matching selector.
func (p *CDPPage) EnterFrame(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	if err := p.run(ctx, "enter frame "+selector, chromedp.Nodes(selector, &nodes, p.query(chromedp.ByQuery)...)); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("enter frame %s: no element matches", selector)
	}
	p.frame = nodes[0]
	return nil
}

// ExitFrame returns to the top-level document. It never fails.
func (p *CDPPage) ExitFrame(ctx context.Context) error {
	p.frame = nil
	return nil
}

// Labels returns the visible text of every match, in document order.
func (p *CDPPage) Labels(ctx context.Context, selector string) ([]string, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, "list "+selector, chromedp.Nodes(selector, &nodes, p.query(chromedp.ByQueryAll)...)); err != nil {
		return nil, err
	}

	labels := make([]string, len(nodes))
	for i, n := range nodes {
		var text string
		if err := p.run(ctx, "read label", chromedp.Text([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID)); err != nil {
			return nil, err
		}
		labels[i] = strings.TrimSpace(text)
	}
	return labels, nil
}

// ClickNth clicks the n-th (0-based) match of selector.
func (p *CDPPage) ClickNth(ctx context.Context, selector string, n int) error {
	var nodes []*cdp.Node
	if err := p.run(ctx, "list "+selector, chromedp.Nodes(selector, &nodes, p.query(chromedp.ByQueryAll)...)); err != nil {
		return err
	}
	if n < 0 || n >= len(nodes) {
		return fmt.Errorf("click %s: index %d out of range (%d matches)", selector, n, len(nodes))
	}
	return p.run(ctx, fmt.Sprintf("click %s[%d]", selector, n),
		chromedp.Click([]cdp.NodeID{nodes[n].NodeID}, chromedp.ByNodeID))
}

// ReadyState reports document.readyState of the top-level document.
func (p *CDPPage) ReadyState(ctx context.Context) (string, error) {
	var state string
	err := p.run(ctx, "read ready state",
		chromedp.Evaluate(`document.readyState`, &state, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
			return ep.WithReturnByValue(true).WithSilent(true)
		}),
	)
	return state, err
}

// PrintPDF renders the whole tab, frames included, to PDF bytes.
func (p *CDPPage) PrintPDF(ctx context.Context, opts schemas.PrintOptions) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, "print to pdf", chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(opts.PrintBackground).
			WithLandscape(opts.Landscape).
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func callOnNode(ctx context.Context, id cdp.NodeID, fn string) error {
	obj, err := dom.ResolveNode().WithNodeID(id).Do(ctx)
	if err != nil {
		return fmt.Errorf("resolve node: %w", err)
	}
	_, exc, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(ctx)
	if err != nil {
		return err
	}
	if exc != nil {
		return exc
	}
	return nil
}
