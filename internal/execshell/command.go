package execshell

import (
	"fmt"
	"io"
	"strings"
)

const (
	commandFailedTemplateConstant           = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant = "%s exited with code %d: %s"
	commandExecutionFailedTemplateConstant  = "%s could not be executed: %v"
	commandArgumentsSeparatorConstant       = " "
)

// CommandName identifies the executable to run. It is either a bare name resolved through PATH or an absolute path.
type CommandName string

// CommandDetails describes a single invocation.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
	// Environment replaces the inherited environment when non-nil.
	Environment []string
	Streams     *CommandStreams
}

// CommandStreams connects a command directly to caller supplied streams instead of capturing output.
type CommandStreams struct {
	StandardInput  io.Reader
	StandardOutput io.Writer
	StandardError  io.Writer
}

// ShellCommand combines a command name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
// Output fields stay empty when the command was streamed.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandLine renders the command and its arguments separated by spaces.
func (command ShellCommand) CommandLine() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandArgumentsSeparatorConstant)
}

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (commandFailedError CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(commandFailedError.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, commandFailedError.Command.CommandLine(), commandFailedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, commandFailedError.Command.CommandLine(), commandFailedError.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (commandExecutionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, commandExecutionError.Command.CommandLine(), commandExecutionError.Cause)
}

// Unwrap exposes the underlying cause.
func (commandExecutionError CommandExecutionError) Unwrap() error {
	return commandExecutionError.Cause
}
