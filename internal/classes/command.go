package classes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/dependencies"
	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/ui"
	"github.com/temirov/jetrun/internal/utils"
	"github.com/temirov/jetrun/internal/venv"
)

const (
	commandUseConstant              = "classes"
	commandShortDescriptionConstant = "Run each Django Jet Calm test class separately"
	commandLongDescriptionConstant  = "classes runs every configured test class through manage.py test with its own timeout, reports PASSED, FAILED, TIMEOUT or ERROR for each, and exits non-zero unless all of them passed."
	flagClassNameConstant           = "class"
	flagClassUsageConstant          = "Test class to run instead of the configured list (repeatable)"
	flagReportNameConstant          = "report"
	flagReportUsageConstant         = "Write the per-class results as YAML to this path"
	flagParallelNameConstant        = "parallel"
	flagParallelUsageConstant       = "Number of test classes to run concurrently"
	flagTimeoutNameConstant         = "timeout"
	flagTimeoutUsageConstant        = "Time limit for each test class"
	reportWrittenTemplateConstant   = "Report written to %s"
	interruptedMessageConstant      = "Test run interrupted; remaining test classes were not run."
	exitCodeFailureConstant         = 1
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the classes Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     project.CommandExecutor
	Activator                    *venv.Activator
	WorkingDirectory             string
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ProjectConfigurationProvider func() project.Configuration
}

type commandOptions struct {
	configuration Configuration
	testClasses   []string
	reportPath    string
}

// Build constructs the classes command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	defaults := DefaultConfiguration()
	command.Flags().StringArray(flagClassNameConstant, nil, flagClassUsageConstant)
	command.Flags().String(flagReportNameConstant, "", flagReportUsageConstant)
	command.Flags().Int(flagParallelNameConstant, defaults.Parallel, flagParallelUsageConstant)
	command.Flags().Duration(flagTimeoutNameConstant, defaults.Timeout, flagTimeoutUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := builder.parseOptions(command)
	printer := ui.NewPrinter(command.OutOrStdout())
	logger := builder.resolveLogger()

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	locator, locatorError := dependencies.ResolveLocator(builder.resolveProjectConfiguration(), executor, builder.Activator, logger, printer.Warning)
	if locatorError != nil {
		return locatorError
	}

	service, serviceError := NewService(options.configuration, ServiceDependencies{
		Locator:          locator,
		Executor:         executor,
		Reporter:         printer,
		Logger:           logger,
		ManagementScript: locator.Configuration().MarkerFile,
	})
	if serviceError != nil {
		return serviceError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	runIdentifier, _ := utils.NewCommandContextAccessor().RunIdentifier(command.Context())
	report, runError := service.Run(command.Context(), Options{
		WorkingDirectory: workingDirectory,
		TestClasses:      options.testClasses,
		RunIdentifier:    runIdentifier,
	})
	interrupted := errors.Is(command.Context().Err(), context.Canceled)
	if runError != nil && report.Total == 0 {
		if interrupted {
			printer.Failure(interruptedMessageConstant)
			return utils.NewExitError(utils.ExitCodeInterrupted, "")
		}
		printer.Failure(runError.Error())
		return utils.NewExitError(exitCodeFailureConstant, "")
	}

	if len(options.reportPath) > 0 {
		if writeError := WriteReport(options.reportPath, report); writeError != nil {
			return writeError
		}
		printer.Line(fmt.Sprintf(reportWrittenTemplateConstant, options.reportPath))
	}

	if interrupted {
		printer.Failure(interruptedMessageConstant)
		return utils.NewExitError(utils.ExitCodeInterrupted, "")
	}
	if runError != nil {
		return runError
	}
	if !report.AllPassed() {
		return utils.NewExitError(exitCodeFailureConstant, "")
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) commandOptions {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(flagParallelNameConstant) {
		parallel, _ := command.Flags().GetInt(flagParallelNameConstant)
		configuration.Parallel = parallel
	}
	if command.Flags().Changed(flagTimeoutNameConstant) {
		timeout, _ := command.Flags().GetDuration(flagTimeoutNameConstant)
		configuration.Timeout = timeout
	}

	testClasses, _ := command.Flags().GetStringArray(flagClassNameConstant)
	reportPath, _ := command.Flags().GetString(flagReportNameConstant)

	return commandOptions{
		configuration: configuration.Sanitize(),
		testClasses:   testClasses,
		reportPath:    strings.TrimSpace(reportPath),
	}
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
