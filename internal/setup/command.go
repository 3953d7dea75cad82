package setup

import (
	"errors"
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
	commandUseConstant              = "setup"
	commandShortDescriptionConstant = "Install the packages the compatibility tests need"
	commandLongDescriptionConstant  = "setup installs the configured packages with pip inside the project virtual environment, summarizes the result, and verifies that the required modules import."
	flagPackageNameConstant         = "package"
	flagPackageUsageConstant        = "Package to install instead of the configured list (repeatable)"
	exitCodeFailureConstant         = 1
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the setup Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     project.CommandExecutor
	Activator                    *venv.Activator
	WorkingDirectory             string
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ProjectConfigurationProvider func() project.Configuration
}

// Build constructs the setup command.
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

	command.Flags().StringArray(flagPackageNameConstant, nil, flagPackageUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if requestedPackages, _ := command.Flags().GetStringArray(flagPackageNameConstant); len(requestedPackages) > 0 {
		configuration.Packages = requestedPackages
	}

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

	service, serviceError := NewService(configuration, ServiceDependencies{
		Locator:  locator,
		Executor: executor,
		Reporter: printer,
		Logger:   logger,
		Streams: &execshell.CommandStreams{
			StandardOutput: command.OutOrStdout(),
			StandardError:  command.ErrOrStderr(),
		},
	})
	if serviceError != nil {
		return serviceError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	if _, setupError := service.Setup(command.Context(), workingDirectory); setupError != nil {
		var moduleError project.ModuleUnavailableError
		if !errors.As(setupError, &moduleError) {
			printer.Failure(setupError.Error())
		}
		return utils.NewExitError(exitCodeFailureConstant, "")
	}
	return nil
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
