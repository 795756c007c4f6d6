package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // batch rejected or scenarios failed
	ExitCommandError = 2 // bad arguments, unreadable input, unusable database
)

// Codes carried in the error envelope.
// E005, E006, E008 and E009 come from loader.LoadError.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeMalformed   = "E002"
	ErrCodeCyclic      = "E003"
	ErrCodeUnknownID   = "E004"
	ErrCodeDatabase    = "E007"
	ErrCodeNoSession   = "E010"
	ErrCodeConfig      = "E011"
	ErrCodeTestsFailed = "E_TEST_FAILED"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// ExitError carries the process exit code out of a command's RunE.
// Its message has usually been printed already through OutputFormatter.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// NewExitError creates an ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
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

// CLIResponse is the envelope every command writes in json format.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of the envelope.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as a JSON envelope.
// Diagnostics go to ErrWriter so they never interleave with JSON on Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data. Text format prints it with fmt.Println; commands
// with structured results render their own text instead.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{Status: statusOK, Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error envelope. Text format prints details only with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{
			Status: statusError,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		writeDetails(f.Writer, details)
	}
	return nil
}

// writeDetails prints string maps one key per line in key order.
func writeDetails(w io.Writer, details any) {
	m, ok := details.(map[string]string)
	if !ok {
		fmt.Fprintf(w, "Details: %v\n", details)
		return
	}
	fmt.Fprintln(w, "Details:")
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, m[k])
	}
}

// Fail writes the error envelope and returns the matching ExitError.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return NewExitError(exitCode, code+": "+message)
}

// VerboseLog writes a diagnostic line when --verbose is set.
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
