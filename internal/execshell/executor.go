package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandStartedLogMessageConstant          = "command started"
	commandCompletedLogMessageConstant        = "command completed"
	commandFailedLogMessageConstant           = "command exited with non-zero code"
	commandExecutionFailedLogMessageConstant  = "command execution failed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStreamedConstant                  = "streamed"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor runs commands through a CommandRunner, logging and reporting each lifecycle step.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor. Every supplied observer receives the lifecycle events.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{logger: logger, runner: runner, observer: CommandEventObservers(observers)}, nil
}

// Execute runs the command. A non-zero exit code yields CommandFailedError alongside the result;
// a runner failure yields CommandExecutionError and an empty result.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Bool(logFieldStreamedConstant, command.Details.Streams != nil),
	}

	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Debug(commandExecutionFailedLogMessageConstant, append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Debug(commandFailedLogMessageConstant, append(commandFields, zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))...)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, commandFields...)
	return executionResult, nil
}
