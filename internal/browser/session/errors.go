package session

import "fmt"

// DriverSetupError reports that no usable browser could be started. It is
// fatal for the run: no identifier can be processed without a session.
type DriverSetupError struct {
	ExecPath string
	Err      error
}

func (e *DriverSetupError) Error() string {
	if e.ExecPath == "" {
		return fmt.Sprintf("driver setup failed: %v", e.Err)
	}
	return fmt.Sprintf("driver setup failed (%s): %v", e.ExecPath, e.Err)
}

func (e *DriverSetupError) Unwrap() error { return e.Err }
