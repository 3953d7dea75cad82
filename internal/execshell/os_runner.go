package execshell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

const (
	processWaitDelayConstant   = 5 * time.Second
	signalExitCodeBaseConstant = 128
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command using os/exec. A non-zero exit code is reported through
// ExecutionResult, not as an error; errors are reserved for commands that could not run.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)
	executable.WaitDelay = processWaitDelayConstant

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if command.Details.Environment != nil {
		executable.Env = append([]string{}, command.Details.Environment...)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	if streams := command.Details.Streams; streams != nil {
		executable.Stdin = streams.StandardInput
		executable.Stdout = streams.StandardOutput
		executable.Stderr = streams.StandardError
	} else {
		executable.Stdout = &standardOutputBuffer
		executable.Stderr = &standardErrorBuffer
	}

	runError := executable.Run()
	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			result.ExitCode = resolveExitCode(exitError)
			return result, nil
		}
		return ExecutionResult{}, runError
	}

	return result, nil
}

// resolveExitCode reports a process terminated by a signal the way POSIX shells do, as 128 plus the signal number.
func resolveExitCode(exitError *exec.ExitError) int {
	exitCode := exitError.ExitCode()
	if exitCode >= 0 {
		return exitCode
	}
	if waitStatus, ok := exitError.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
		return signalExitCodeBaseConstant + int(waitStatus.Signal())
	}
	return exitCode
}
