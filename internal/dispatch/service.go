package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
)

const (
	startBannerTitleConstant             = "Django Jet Calm Compatibility Tests"
	completionBannerTitleConstant        = "Django Jet Calm compatibility test run completed"
	runnerScriptMessageTemplateConstant  = "Using custom test runner %s"
	subdirectoryMessageTemplateConstant  = "Using custom test runner %s in %s"
	fallbackMessageTemplateConstant      = "Custom test runner not found; running %s test %s"
	ignoredArgumentsMessageTemplate      = "Arguments ignored by the fallback command: %s"
	argumentSeparatorConstant            = " "
	startFailureExitCodeConstant         = 1
	locatorNotConfiguredMessageConstant  = "dispatch service project locator not configured"
	executorNotConfiguredMessageConstant = "dispatch service command executor not configured"
	planSelectedLogMessageConstant       = "runner selected"
	dispatchCompletedLogMessageConstant  = "runner finished"
	logFieldStrategyConstant             = "strategy"
	logFieldCommandLineConstant          = "command_line"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldIgnoredArgumentsConstant     = "ignored_arguments"
	logFieldExitCodeConstant             = "exit_code"
)

// ErrLocatorNotConfigured indicates the service was constructed without a project locator.
var ErrLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)

// ErrExecutorNotConfigured indicates the service was constructed without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ProjectLocator applies the project preconditions.
type ProjectLocator interface {
	Prepare(executionContext context.Context, workingDirectory string) (project.Project, error)
}

// Reporter renders user-facing progress.
type Reporter interface {
	Banner(title string)
	Line(message string)
	Warning(message string)
}

// ServiceDependencies enumerates collaborators required by the dispatch service.
type ServiceDependencies struct {
	Locator          ProjectLocator
	Executor         project.CommandExecutor
	Reporter         Reporter
	Logger           *zap.Logger
	Streams          *execshell.CommandStreams
	ManagementScript string
}

// Service prepares and runs dispatches.
type Service struct {
	planner  Planner
	locator  ProjectLocator
	executor project.CommandExecutor
	reporter Reporter
	logger   *zap.Logger
	streams  *execshell.CommandStreams
}

// NewService constructs a dispatch Service.
func NewService(configuration Configuration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Locator == nil {
		return nil, ErrLocatorNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}
	managementScript := strings.TrimSpace(dependencies.ManagementScript)
	if len(managementScript) == 0 {
		managementScript = project.DefaultConfiguration().MarkerFile
	}

	return &Service{
		planner:  NewPlanner(configuration, managementScript),
		locator:  dependencies.Locator,
		executor: dependencies.Executor,
		reporter: reporter,
		logger:   logger,
		streams:  dependencies.Streams,
	}, nil
}

// Prepare runs the preconditions and selects the runner without executing it.
func (service *Service) Prepare(executionContext context.Context, workingDirectory string, arguments []string) (Plan, error) {
	located, prepareError := service.locator.Prepare(executionContext, workingDirectory)
	if prepareError != nil {
		return Plan{}, prepareError
	}

	plan := service.planner.Select(located, arguments)
	service.logger.Debug(
		planSelectedLogMessageConstant,
		zap.String(logFieldStrategyConstant, string(plan.Strategy)),
		zap.String(logFieldCommandLineConstant, plan.Command.CommandLine()),
		zap.String(logFieldWorkingDirectoryConstant, plan.Command.Details.WorkingDirectory),
		zap.Strings(logFieldIgnoredArgumentsConstant, plan.IgnoredArguments),
	)
	return plan, nil
}

// Dispatch prepares the plan, runs the selected runner, and returns its exit code. Precondition failures and
// runners that cannot start return exit code 1 together with the error. A runner that ran returns its own
// exit code and a nil error, after the completion banner.
func (service *Service) Dispatch(executionContext context.Context, workingDirectory string, arguments []string) (int, error) {
	plan, prepareError := service.Prepare(executionContext, workingDirectory, arguments)
	if prepareError != nil {
		return startFailureExitCodeConstant, prepareError
	}

	service.reporter.Banner(startBannerTitleConstant)
	service.announce(plan)

	command := plan.Command
	command.Details.Streams = service.streams

	executionResult, executionError := service.executor.Execute(executionContext, command)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if !errors.As(executionError, &failedError) {
			return startFailureExitCodeConstant, executionError
		}
		executionResult = failedError.Result
	}

	service.logger.Debug(
		dispatchCompletedLogMessageConstant,
		zap.String(logFieldStrategyConstant, string(plan.Strategy)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	service.reporter.Banner(completionBannerTitleConstant)
	return executionResult.ExitCode, nil
}

func (service *Service) announce(plan Plan) {
	runnerScript := service.planner.configuration.RunnerScript
	switch plan.Strategy {
	case StrategyRunnerScript:
		service.reporter.Line(fmt.Sprintf(runnerScriptMessageTemplateConstant, runnerScript))
	case StrategyRunnerSubdirectory:
		service.reporter.Line(fmt.Sprintf(subdirectoryMessageTemplateConstant, runnerScript, service.planner.configuration.RunnerSubdirectory))
	case StrategyFallback:
		service.reporter.Line(fmt.Sprintf(fallbackMessageTemplateConstant, service.planner.managementScript, service.planner.configuration.FallbackTarget))
		if len(plan.IgnoredArguments) > 0 {
			service.reporter.Warning(fmt.Sprintf(ignoredArgumentsMessageTemplate, strings.Join(plan.IgnoredArguments, argumentSeparatorConstant)))
		}
	}
}

type silentReporter struct{}

func (silentReporter) Banner(string)  {}
func (silentReporter) Line(string)    {}
func (silentReporter) Warning(string) {}
