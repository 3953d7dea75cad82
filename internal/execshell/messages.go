package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	pythonInlineCodeFlagConstant     = "-c"
	pythonModuleFlagConstant         = "-m"
	pythonImportStatementPrefix      = "import "
	pipModuleNameConstant            = "pip"
	pipInstallSubcommandConstant     = "install"
	djangoManagementScriptConstant   = "manage.py"
	djangoTestSubcommandConstant     = "test"
	pythonScriptExtensionConstant    = ".py"
	optionPrefixConstant             = "-"
	importCheckMinimumArgumentsCount = 2
	pipInstallMinimumArgumentsCount  = 4
	djangoTestMinimumArgumentsCount  = 2
)

const (
	importCheckStartTemplateConstant             = "Checking that %s is importable"
	importCheckSuccessTemplateConstant           = "%s is importable"
	importCheckFailureTemplateConstant           = "%s is not importable (exit code %d%s)"
	importCheckExecutionFailureTemplateConstant  = "Unable to check whether %s is importable: %s"
	pipInstallStartTemplateConstant              = "Installing %s"
	pipInstallSuccessTemplateConstant            = "Installed %s"
	pipInstallFailureTemplateConstant            = "Failed to install %s (exit code %d%s)"
	pipInstallExecutionFailureTemplateConstant   = "Unable to install %s: %s"
	djangoTestStartTemplateConstant              = "Running Django tests for %s%s"
	djangoTestSuccessTemplateConstant            = "Django tests for %s passed"
	djangoTestFailureTemplateConstant            = "Django tests for %s failed (exit code %d)"
	djangoTestExecutionFailureTemplateConstant   = "Unable to run Django tests for %s: %s"
	djangoTestAllTargetsLabelConstant            = "all applications"
	runnerScriptStartTemplateConstant            = "Running test runner %s%s"
	runnerScriptSuccessTemplateConstant          = "Test runner %s finished"
	runnerScriptFailureTemplateConstant          = "Test runner %s failed (exit code %d)"
	runnerScriptExecutionFailureTemplateConstant = "Unable to start test runner %s: %s"
)

// CommandMessageFormatter builds human-readable messages for interpreter invocations.
// Import checks, pip installs, Django test runs and runner scripts get dedicated wording;
// anything else falls back to the raw command line.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	switch {
	case formatter.isImportCheck(arguments):
		return formatter.describeImportCheck(command, result, failure, stage)
	case formatter.isPipInstall(arguments):
		return formatter.describePipInstall(command, result, failure, stage)
	case formatter.isDjangoTest(arguments):
		return formatter.describeDjangoTest(command, result, failure, stage)
	case formatter.isRunnerScript(arguments):
		return formatter.describeRunnerScript(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) isImportCheck(arguments []string) bool {
	return len(arguments) >= importCheckMinimumArgumentsCount &&
		arguments[0] == pythonInlineCodeFlagConstant &&
		strings.HasPrefix(strings.TrimSpace(arguments[1]), pythonImportStatementPrefix)
}

func (formatter CommandMessageFormatter) isPipInstall(arguments []string) bool {
	return len(arguments) >= pipInstallMinimumArgumentsCount &&
		arguments[0] == pythonModuleFlagConstant &&
		arguments[1] == pipModuleNameConstant &&
		arguments[2] == pipInstallSubcommandConstant
}

func (formatter CommandMessageFormatter) isDjangoTest(arguments []string) bool {
	return len(arguments) >= djangoTestMinimumArgumentsCount &&
		filepath.Base(arguments[0]) == djangoManagementScriptConstant &&
		arguments[1] == djangoTestSubcommandConstant
}

func (formatter CommandMessageFormatter) isRunnerScript(arguments []string) bool {
	return len(arguments) > 0 && strings.HasSuffix(arguments[0], pythonScriptExtensionConstant)
}

func (formatter CommandMessageFormatter) describeImportCheck(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	moduleName := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command.Details.Arguments[1]), pythonImportStatementPrefix))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(importCheckStartTemplateConstant, moduleName)
	case messageStageSuccess:
		return fmt.Sprintf(importCheckSuccessTemplateConstant, moduleName)
	case messageStageFailure:
		return fmt.Sprintf(importCheckFailureTemplateConstant, moduleName, result.ExitCode, formatter.formatStandardErrorSuffix(formatter.lastLine(result.StandardError)))
	default:
		return fmt.Sprintf(importCheckExecutionFailureTemplateConstant, moduleName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describePipInstall(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	packageNames := strings.Join(command.Details.Arguments[3:], ", ")
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(pipInstallStartTemplateConstant, packageNames)
	case messageStageSuccess:
		return fmt.Sprintf(pipInstallSuccessTemplateConstant, packageNames)
	case messageStageFailure:
		return fmt.Sprintf(pipInstallFailureTemplateConstant, packageNames, result.ExitCode, formatter.formatStandardErrorSuffix(formatter.lastLine(result.StandardError)))
	default:
		return fmt.Sprintf(pipInstallExecutionFailureTemplateConstant, packageNames, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeDjangoTest(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	targets := make([]string, 0, len(command.Details.Arguments))
	for _, argument := range command.Details.Arguments[2:] {
		if strings.HasPrefix(argument, optionPrefixConstant) {
			continue
		}
		targets = append(targets, argument)
	}
	targetLabel := djangoTestAllTargetsLabelConstant
	if len(targets) > 0 {
		targetLabel = strings.Join(targets, ", ")
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(djangoTestStartTemplateConstant, targetLabel, formatter.formatWorkingDirectorySuffix(command))
	case messageStageSuccess:
		return fmt.Sprintf(djangoTestSuccessTemplateConstant, targetLabel)
	case messageStageFailure:
		return fmt.Sprintf(djangoTestFailureTemplateConstant, targetLabel, result.ExitCode)
	default:
		return fmt.Sprintf(djangoTestExecutionFailureTemplateConstant, targetLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeRunnerScript(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	scriptName := command.Details.Arguments[0]
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(runnerScriptStartTemplateConstant, scriptName, formatter.formatWorkingDirectorySuffix(command))
	case messageStageSuccess:
		return fmt.Sprintf(runnerScriptSuccessTemplateConstant, scriptName)
	case messageStageFailure:
		return fmt.Sprintf(runnerScriptFailureTemplateConstant, scriptName, result.ExitCode)
	default:
		return fmt.Sprintf(runnerScriptExecutionFailureTemplateConstant, scriptName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := fmt.Sprintf(commandLabelTemplateConstant, command.CommandLine(), formatter.formatWorkingDirectorySuffix(command))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// lastLine keeps only the final line of a Python traceback, which names the exception.
func (formatter CommandMessageFormatter) lastLine(output string) string {
	trimmedOutput := strings.TrimSpace(output)
	if separatorIndex := strings.LastIndex(trimmedOutput, "\n"); separatorIndex >= 0 {
		return strings.TrimSpace(trimmedOutput[separatorIndex+1:])
	}
	return trimmedOutput
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
