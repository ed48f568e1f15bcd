package schemas

import (
	"context"
)

// -- Browser Interfaces --

// Page defines the driver-agnostic primitives needed to drive a single browser
// tab through a portal. Every method that waits for an element honours the
// deadline of the supplied context; expiry is reported as an error, never a hang.
//
// Selectors are CSS selectors. After EnterFrame succeeds, element lookups are
// resolved inside that frame's document until ExitFrame is called.
type Page interface {
	// Navigate loads the URL in the top-level document.
	Navigate(ctx context.Context, url string) error
	// WaitPresent blocks until an element matching the selector is attached to the DOM.
	WaitPresent(ctx context.Context, selector string) error
	// Click performs a pointer-driven click once the element is visible.
	Click(ctx context.Context, selector string) error
	// SyntheticClick dispatches element.click() without pointer geometry, so it
	// succeeds for obscured or off-screen controls.
	SyntheticClick(ctx context.Context, selector string) error
	// Fill clears the element's current value and types the text verbatim.
	Fill(ctx context.Context, selector, text string) error
	// EnterFrame waits for the frame element and switches lookups into its document.
	EnterFrame(ctx context.Context, selector string) error
	// ExitFrame switches lookups back to the top-level document. It is always safe to call.
	ExitFrame(ctx context.Context) error
	// Labels waits for at least one match and returns the visible text of every match, in document order.
	Labels(ctx context.Context, selector string) ([]string, error)
	// ClickNth clicks the n-th (0-based) element matching the selector.
	ClickNth(ctx context.Context, selector string, n int) error
	// ReadyState returns document.readyState of the top-level document.
	ReadyState(ctx context.Context) (string, error)
	// PrintPDF renders the current page as a PDF document.
	PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error)
}

// -- Engine Interfaces --

// Engine is one registered automation script. Run processes every identifier
// in the input file and returns the outcome. A non-nil error is returned only
// for fatal failures (driver setup, navigation, unreadable input under strict
// mode); per-identifier failures are carried in the outcome.
type Engine interface {
	Name() string
	Run(ctx context.Context, inputFile string) (*Outcome, error)
}
