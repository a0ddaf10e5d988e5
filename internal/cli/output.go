package cli

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/shell"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitRejected     = 1 // The store or the domain rejected the operation
	ExitCommandError = 2 // Invalid flags, configuration or an unreachable store
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExitError carries the process exit code for an error.
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are no ExitError count as rejections.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitRejected
}

// Response is the JSON envelope of every command output.
type Response struct {
	Status string         `json:"status"`
	Data   any            `json:"data,omitempty"`
	Result *CommandResult `json:"result,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// CommandResult is the JSON form of shell.HandlerResult.
type CommandResult struct {
	Idempotent      bool    `json:"idempotent"`
	RetryAttempts   int     `json:"retryAttempts"`
	TotalRetryDelay float64 `json:"totalRetryDelayMs"`
}

// ResponseError classifies a failure for machine readers.
type ResponseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	statusOK    = "ok"
	statusError = "error"

	kindNotFound     = "not_found"
	kindInvalidState = "invalid_state"
	kindConflict     = "concurrency_conflict"
	kindTransient    = "transient"
	kindCanceled     = "canceled"
	kindUsage        = "usage"
	kindInternal     = "internal"
)

// Printer writes responses as JSON lines, indented when pretty is set.
type Printer struct {
	out    io.Writer
	pretty bool
}

func newPrinter(out io.Writer, pretty bool) Printer {
	return Printer{out: out, pretty: pretty}
}

// Data prints a successful read.
func (p Printer) Data(data any) error {
	return p.write(Response{Status: statusOK, Data: data})
}

// Result prints a successful command.
func (p Printer) Result(result shell.HandlerResult, data any) error {
	return p.write(Response{
		Status: statusOK,
		Data:   data,
		Result: &CommandResult{
			Idempotent:      result.Idempotent,
			RetryAttempts:   result.RetryAttempts,
			TotalRetryDelay: shell.ToMilliseconds(result.TotalRetryDelay),
		},
	})
}

// Error prints err and returns it as an ExitError, so cobra reports the right exit code.
func (p Printer) Error(err error) error {
	kind, code := classify(err)

	if writeErr := p.write(Response{Status: statusError, Error: &ResponseError{Kind: kind, Message: err.Error()}}); writeErr != nil {
		return errors.Join(err, writeErr)
	}

	return WrapExitError(code, kind, err)
}

func (p Printer) write(response Response) error {
	var (
		encoded []byte
		err     error
	)

	if p.pretty {
		encoded, err = json.MarshalIndent(response, "", "  ")
	} else {
		encoded, err = json.Marshal(response)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(p.out, string(encoded))

	return err
}

func classify(err error) (string, int) {
	var exitErr *ExitError

	switch {
	case errors.As(err, &exitErr):
		return kindUsage, exitErr.Code
	case errors.Is(err, circulation.ErrNotFound):
		return kindNotFound, ExitRejected
	case errors.Is(err, circulation.ErrInvalidState):
		return kindInvalidState, ExitRejected
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return kindConflict, ExitRejected
	case errors.Is(err, circulation.ErrTransientStore):
		return kindTransient, ExitRejected
	case shell.IsCancellationError(err), shell.IsTimeoutError(err):
		return kindCanceled, ExitRejected
	default:
		return kindInternal, ExitRejected
	}
}
