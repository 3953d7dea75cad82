package utils

import "fmt"

const (
	exitErrorTemplateConstant = "exit status %d"
	exitCodeFailureConstant   = 1
)

// ExitCodeInterrupted is the status shells report for a command stopped by SIGINT.
const ExitCodeInterrupted = 130

// ExitError carries a process exit code from a command handler back to main.
// An empty Message marks the error as silent: the command already reported the failure.
type ExitError struct {
	Code    int
	Message string
}

// NewExitError constructs an ExitError with the provided code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// Error describes the exit error.
func (exitError *ExitError) Error() string {
	if len(exitError.Message) > 0 {
		return exitError.Message
	}
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Code)
}

// Silent reports whether main should skip printing the error.
func (exitError *ExitError) Silent() bool {
	return len(exitError.Message) == 0
}

// NormalizeExitCode maps negative codes, reported for processes that ended without an exit status, to 1.
func NormalizeExitCode(code int) int {
	if code < 0 {
		return exitCodeFailureConstant
	}
	return code
}
