package schemas

import (
	"time"
)

// -- Result Schemas --

// Status is the terminal state of one processed identifier.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ResultRecord is the outcome of a single identifier. Exactly one of File
// (success) or Error (error) is set. Records are never modified after they
// are appended to a run's result list.
type ResultRecord struct {
	Identifier string `json:"fcr_number"`
	Status     Status `json:"status"`
	File       string `json:"pdf_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SuccessRecord builds the record for a captured identifier.
func SuccessRecord(identifier, file string) ResultRecord {
	return ResultRecord{Identifier: identifier, Status: StatusSuccess, File: file}
}

// ErrorRecord builds the record for a failed identifier. An empty description
// is replaced so that error records always carry a reason.
func ErrorRecord(identifier string, err error) ResultRecord {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return ResultRecord{Identifier: identifier, Status: StatusError, Error: msg}
}

// Outcome is everything a run produced. Success reports whether the run
// completed (session opened and portal reached a ready state); it stays true
// when some or all identifiers failed.
type Outcome struct {
	RunID          string         `json:"run_id"`
	Script         string         `json:"script"`
	InputFile      string         `json:"input_file"`
	Success        bool           `json:"success"`
	Results        []ResultRecord `json:"results"`
	CombinedReport string         `json:"combined_report,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// Counts returns the number of successful and failed records.
func (o *Outcome) Counts() (succeeded, failed int) {
	if o == nil {
		return 0, 0
	}
	for _, r := range o.Results {
		if r.Status == StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
