package execshell

// CommandEventObserver receives lifecycle notifications for interpreter invocations.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports a command that could not be started or awaited.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// CommandEventObservers fans each notification out to every member in registration order. Nil members are skipped.
type CommandEventObservers []CommandEventObserver

// CommandStarted forwards the start notification.
func (observers CommandEventObservers) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandStarted(command)
		}
	}
}

// CommandCompleted forwards the completion notification.
func (observers CommandEventObservers) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandCompleted(command, result)
		}
	}
}

// CommandExecutionFailed forwards the execution failure notification.
func (observers CommandEventObservers) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandExecutionFailed(command, failure)
		}
	}
}
