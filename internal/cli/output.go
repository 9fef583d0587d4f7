package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/review"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected file, failed extraction, missing record
	ExitCommandError = 2 // Bad flags, config, or store
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for command output.
type CLIResponse struct {
	Status  string          `json:"status"` // "ok" or "error"
	Data    any             `json:"data,omitempty"`
	Notices []common.Notice `json:"notices,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Notice prints a notice immediately in text mode; JSON mode collects it for
// the final envelope.
func (f *OutputFormatter) Notice(n common.Notice, collected *[]common.Notice) {
	if f.Format == "json" {
		*collected = append(*collected, n)
		return
	}
	fmt.Fprintf(f.Writer, "[%s] %s\n", n.Level, n.Message)
}

// Result writes the final output. text is used in text mode.
func (f *OutputFormatter) Result(data any, notices []common.Notice, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data, Notices: notices})
	}
	if text != nil {
		text(f.Writer)
	}
	return nil
}

// Fail writes an error envelope (JSON) or line (text) and returns err unchanged.
func (f *OutputFormatter) Fail(err *ExitError, notices []common.Notice) error {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Notices: notices, Error: err.Error()})
		return err
	}
	fmt.Fprintf(f.ErrWriter, "Error: %s\n", err.Error())
	return err
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func printView(w io.Writer, v review.View) {
	fmt.Fprintf(w, "Invoice %s (%s)\n", v.ID, v.Tone)
	width := 0
	for _, r := range v.Rows {
		width = max(width, len(r.Label))
	}
	for _, r := range v.Rows {
		fmt.Fprintf(w, "  %-*s  %s\n", width, r.Label, r.Value)
	}
	if len(v.Items) == 0 {
		return
	}
	fmt.Fprintln(w, "  Line items:")
	for _, it := range v.Items {
		fmt.Fprintf(w, "    %s  x%s  @ %s  = %s\n", strings.TrimSpace(it.Description), it.Quantity, it.UnitPrice, it.Amount)
	}
}
