package errors

import (
	"errors"
)

// Exit codes returned by the CLI.
const (
	ExitCodeOK              = 0
	ExitCodeInvalidArgs     = 1
	ExitCodeProcessingError = 2
)

// CommandError represents an error that occurred during command execution, storing the exit code to report.
type CommandError struct {
	ExitCode    int
	CommonError string
	Args        interface{}
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance, encapsulating args and the error message.
func NewCommandError(args interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
		Err:         err,
	}
}

// ExitCode returns the exit code carried by a *CommandError in err's chain.
// Any other non-nil error maps to ExitCodeInvalidArgs.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitCodeInvalidArgs
}
