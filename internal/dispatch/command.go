package dispatch

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/dependencies"
	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/ui"
	"github.com/temirov/jetrun/internal/utils"
	"github.com/temirov/jetrun/internal/venv"
)

const (
	runCommandUseConstant               = "run [runner arguments...]"
	runCommandShortDescriptionConstant  = "Run the Django Jet Calm compatibility tests"
	runCommandLongDescriptionConstant   = "run checks for manage.py, activates the project virtual environment, verifies that Django is importable, and hands off to run_jet_tests.py (or Django's test command when the runner is absent). Every argument after run is forwarded to the runner unchanged."
	planCommandUseConstant              = "plan [runner arguments...]"
	planCommandShortDescriptionConstant = "Show which test runner run would invoke"
	planCommandLongDescriptionConstant  = "plan performs the same checks and runner selection as run and prints the selected command without executing it."
	planStrategyTemplateConstant        = "Strategy: %s"
	planCommandTemplateConstant         = "Command: %s"
	planDirectoryTemplateConstant       = "Working directory: %s"
	planVirtualEnvironmentTemplate      = "Virtual environment: %s"
	planNoVirtualEnvironmentConstant    = "Virtual environment: none"
	exitCodeFailureConstant             = 1
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the run and plan Cobra commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     project.CommandExecutor
	Activator                    *venv.Activator
	WorkingDirectory             string
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ProjectConfigurationProvider func() project.Configuration
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                runCommandUseConstant,
		Short:              runCommandShortDescriptionConstant,
		Long:               runCommandLongDescriptionConstant,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE:               builder.runDispatch,
	}
	return command, nil
}

// BuildPlan constructs the plan command.
func (builder *CommandBuilder) BuildPlan() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                planCommandUseConstant,
		Short:              planCommandShortDescriptionConstant,
		Long:               planCommandLongDescriptionConstant,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE:               builder.runPlan,
	}
	return command, nil
}

func (builder *CommandBuilder) runDispatch(command *cobra.Command, arguments []string) error {
	printer := ui.NewPrinter(command.OutOrStdout())
	service, workingDirectory, serviceError := builder.buildService(command, printer)
	if serviceError != nil {
		return serviceError
	}

	_, forwardedArguments := utils.SplitLeadingFlags(command.InheritedFlags(), arguments)
	exitCode, dispatchError := service.Dispatch(command.Context(), workingDirectory, forwardedArguments)
	if dispatchError != nil {
		printer.Failure(dispatchError.Error())
		return utils.NewExitError(exitCodeFailureConstant, "")
	}
	if exitCode != 0 {
		return utils.NewExitError(utils.NormalizeExitCode(exitCode), "")
	}
	return nil
}

func (builder *CommandBuilder) runPlan(command *cobra.Command, arguments []string) error {
	printer := ui.NewPrinter(command.OutOrStdout())
	service, workingDirectory, serviceError := builder.buildService(command, printer)
	if serviceError != nil {
		return serviceError
	}

	_, forwardedArguments := utils.SplitLeadingFlags(command.InheritedFlags(), arguments)
	plan, prepareError := service.Prepare(command.Context(), workingDirectory, forwardedArguments)
	if prepareError != nil {
		printer.Failure(prepareError.Error())
		return utils.NewExitError(exitCodeFailureConstant, "")
	}

	printer.Line(fmt.Sprintf(planStrategyTemplateConstant, plan.Strategy))
	printer.Line(fmt.Sprintf(planCommandTemplateConstant, plan.Command.CommandLine()))
	printer.Line(fmt.Sprintf(planDirectoryTemplateConstant, plan.Command.Details.WorkingDirectory))
	if plan.Project.Environment.Active() {
		printer.Line(fmt.Sprintf(planVirtualEnvironmentTemplate, plan.Project.Environment.VirtualEnvironmentPath))
	} else {
		printer.Line(planNoVirtualEnvironmentConstant)
	}
	if len(plan.IgnoredArguments) > 0 {
		printer.Warning(fmt.Sprintf(ignoredArgumentsMessageTemplate, strings.Join(plan.IgnoredArguments, argumentSeparatorConstant)))
	}
	return nil
}

func (builder *CommandBuilder) buildService(command *cobra.Command, printer *ui.Printer) (*Service, string, error) {
	logger := builder.resolveLogger()
	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return nil, "", executorError
	}

	projectConfiguration := builder.resolveProjectConfiguration()
	locator, locatorError := dependencies.ResolveLocator(projectConfiguration, executor, builder.Activator, logger, printer.Warning)
	if locatorError != nil {
		return nil, "", locatorError
	}

	service, serviceError := NewService(builder.resolveConfiguration(), ServiceDependencies{
		Locator:          locator,
		Executor:         executor,
		Reporter:         printer,
		Logger:           logger,
		ManagementScript: locator.Configuration().MarkerFile,
		Streams: &execshell.CommandStreams{
			StandardInput:  command.InOrStdin(),
			StandardOutput: command.OutOrStdout(),
			StandardError:  command.ErrOrStderr(),
		},
	})
	if serviceError != nil {
		return nil, "", serviceError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return nil, "", workingDirectoryError
	}
	return service, workingDirectory, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveProjectConfiguration() project.Configuration {
	if builder.ProjectConfigurationProvider == nil {
		return project.DefaultConfiguration()
	}
	return builder.ProjectConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	return os.Getwd()
}
