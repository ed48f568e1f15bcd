package reporting

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/trackrunner/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	MessageCompleted = "Automation completed successfully"
	MessageFailed    = "Automation failed"
)

// Payload is what the calling process reads from stdout after a run.
type Payload struct {
	Success        bool                   `json:"success"`
	Results        []schemas.ResultRecord `json:"results"`
	Message        string                 `json:"message"`
	Script         string                 `json:"script"`
	InputFile      string                 `json:"file"`
	CombinedReport string                 `json:"combinedReport,omitempty"`
	RunID          string                 `json:"runId,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// ErrorPayload is written to stderr for failures that happen outside a run,
// such as an unknown script or a crash.
type ErrorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Trace   string `json:"trace,omitempty"`
}

// NewPayload converts an outcome. runErr is the fatal error, if any.
func NewPayload(out *schemas.Outcome, runErr error) Payload {
	p := Payload{Message: MessageFailed, Results: []schemas.ResultRecord{}}
	if out != nil {
		p.Success = out.Success
		p.Script = out.Script
		p.InputFile = out.InputFile
		p.CombinedReport = out.CombinedReport
		p.RunID = out.RunID
		if out.Results != nil {
			p.Results = out.Results
		}
	}
	if runErr != nil {
		p.Success = false
		p.Error = runErr.Error()
	}
	if p.Success {
		p.Message = MessageCompleted
	}
	return p
}

// Reporter writes run outcomes for the calling process.
type Reporter interface {
	Write(out *schemas.Outcome, runErr error) error
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format ("json" or "text") writing to
// outputPath, or to stdout when the path is empty or "stdout".
func New(format, outputPath string) (Reporter, error) {
	isStdOut := outputPath == "" || outputPath == "stdout"
	if isStdOut {
		return NewWriter(format, os.Stdout)
	}

	if err := checkFormat(format); err != nil {
		return nil, err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	return newReporter(format, f), nil
}

// NewWriter creates a reporter on w. Close does not close w.
func NewWriter(format string, w io.Writer) (Reporter, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	return newReporter(format, &nopWriteCloser{w}), nil
}

func checkFormat(format string) error {
	switch format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func newReporter(format string, w io.WriteCloser) Reporter {
	if format == "text" {
		return &textReporter{w: w}
	}
	return &jsonReporter{w: w}
}

type jsonReporter struct {
	w io.WriteCloser
}

func (r *jsonReporter) Write(out *schemas.Outcome, runErr error) error {
	return json.NewEncoder(r.w).Encode(NewPayload(out, runErr))
}

func (r *jsonReporter) Close() error { return r.w.Close() }

// textReporter prints a table for people running the tool by hand.
type textReporter struct {
	w io.WriteCloser
}

func (r *textReporter) Write(out *schemas.Outcome, runErr error) error {
	p := NewPayload(out, runErr)
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tIDENTIFIER\tSTATUS\tDETAIL\n")
	for i, rec := range p.Results {
		detail := rec.File
		if rec.Status == schemas.StatusError {
			detail = rec.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rec.Identifier, rec.Status, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ok, failed := out.Counts()
	fmt.Fprintf(r.w, "\n%s (script=%s, success=%d, fail=%d)\n", p.Message, p.Script, ok, failed)
	if p.CombinedReport != "" {
		fmt.Fprintf(r.w, "Combined report: %s\n", p.CombinedReport)
	}
	if p.Error != "" {
		fmt.Fprintf(r.w, "Error: %s\n", p.Error)
	}
	return nil
}

func (r *textReporter) Close() error { return r.w.Close() }

// WriteError writes the error payload to w.
func WriteError(w io.Writer, err error, trace string) error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return json.NewEncoder(w).Encode(ErrorPayload{Success: false, Error: msg, Trace: trace})
}
