package portal

import "fmt"

// NavigationError means the portal never reached a usable state. It is fatal
// for the run.
type NavigationError struct {
	URL  string
	Step string
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("portal navigation failed at %s (%s): %v", e.Step, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Capture steps, in execution order.
const (
	StepFill    = "fill search input"
	StepSubmit  = "submit search"
	StepFrame   = "enter results frame"
	StepMatch   = "find result link"
	StepOpen    = "open result link"
	StepSettle  = "settle detail view"
	StepPrint   = "print page"
	StepPersist = "save document"
)

// ItemCaptureError is a failure confined to one identifier. The batch
// records it and moves on.
type ItemCaptureError struct {
	Identifier string
	Step       string
	Err        error
}

func (e *ItemCaptureError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Identifier, e.Step, e.Err)
}

func (e *ItemCaptureError) Unwrap() error { return e.Err }
