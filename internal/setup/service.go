package setup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
)

const (
	setupBannerTitleConstant             = "Setting up Django Jet Calm Test Environment"
	installingMessageConstant            = "Installing required packages..."
	installedTemplateConstant            = "%s installed successfully"
	installFailedTemplateConstant        = "Failed to install %s: %v"
	summaryHeadingConstant               = "Installation Summary:"
	summaryCountTemplateConstant         = "Successfully installed: %d/%d packages"
	allInstalledMessageConstant          = "All packages installed successfully!"
	nextStepsMessageConstant             = "You can now run the tests with:"
	someFailedTemplateConstant           = "%d packages failed to install."
	manualInstallMessageConstant         = "Please check the error messages above and install manually if needed."
	verifyingMessageConstant             = "Verifying installed modules..."
	moduleAvailableTemplateConstant      = "%s is available"
	moduleFailedTemplateConstant         = "%s import failed. Please check your installation."
	environmentReadyMessageConstant      = "Test environment is ready!"
	pythonModuleFlagConstant             = "-m"
	pipModuleConstant                    = "pip"
	pipInstallSubcommandConstant         = "install"
	locatorNotConfiguredMessageConstant  = "setup service project locator not configured"
	executorNotConfiguredMessageConstant = "setup service command executor not configured"
	packageInstalledLogMessageConstant   = "package installed"
	packageFailedLogMessageConstant      = "package installation failed"
	logFieldPackageConstant              = "package"
)

var nextStepCommands = []string{
	"   jetrun run",
	"   jetrun run --verbose",
	"   jetrun run --coverage",
}

// ErrLocatorNotConfigured indicates the service was constructed without a project locator.
var ErrLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)

// ErrExecutorNotConfigured indicates the service was constructed without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ProjectLocator resolves the interpreter and checks module availability.
type ProjectLocator interface {
	Locate(executionContext context.Context, workingDirectory string, options project.LocateOptions) (project.Project, error)
	RequireModule(executionContext context.Context, located project.Project, module string) error
}

// Reporter renders user-facing progress.
type Reporter interface {
	Banner(title string)
	Line(message string)
	Success(message string)
	Failure(message string)
	Warning(message string)
}

// ServiceDependencies enumerates collaborators required by the setup service.
type ServiceDependencies struct {
	Locator  ProjectLocator
	Executor project.CommandExecutor
	Reporter Reporter
	Logger   *zap.Logger
	Streams  *execshell.CommandStreams
}

// Summary reports the outcome of the installation phase.
type Summary struct {
	Installed      int
	Total          int
	FailedPackages []string
}

// Service installs packages and verifies modules.
type Service struct {
	configuration Configuration
	locator       ProjectLocator
	executor      project.CommandExecutor
	reporter      Reporter
	logger        *zap.Logger
	streams       *execshell.CommandStreams
}

// NewService constructs a setup Service.
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

	return &Service{
		configuration: configuration.Sanitize(),
		locator:       dependencies.Locator,
		executor:      dependencies.Executor,
		reporter:      reporter,
		logger:        logger,
		streams:       dependencies.Streams,
	}, nil
}

// Setup installs every configured package, continuing past failed installs, then verifies each module in order.
// The first module that fails to import ends the run with a project.ModuleUnavailableError.
func (service *Service) Setup(executionContext context.Context, workingDirectory string) (Summary, error) {
	located, locateError := service.locator.Locate(executionContext, workingDirectory, project.LocateOptions{SkipMarkerCheck: true})
	if locateError != nil {
		return Summary{}, locateError
	}

	service.reporter.Banner(setupBannerTitleConstant)
	service.reporter.Line(installingMessageConstant)

	summary := Summary{Total: len(service.configuration.Packages)}
	for _, packageName := range service.configuration.Packages {
		if contextError := executionContext.Err(); contextError != nil {
			return summary, contextError
		}
		if installError := service.install(executionContext, located, packageName); installError != nil {
			summary.FailedPackages = append(summary.FailedPackages, packageName)
			service.reporter.Failure(fmt.Sprintf(installFailedTemplateConstant, packageName, installError))
			service.logger.Warn(packageFailedLogMessageConstant, zap.String(logFieldPackageConstant, packageName), zap.Error(installError))
			continue
		}
		summary.Installed++
		service.reporter.Success(fmt.Sprintf(installedTemplateConstant, packageName))
		service.logger.Debug(packageInstalledLogMessageConstant, zap.String(logFieldPackageConstant, packageName))
	}

	service.reportSummary(summary)

	if len(service.configuration.VerifyModules) > 0 {
		service.reporter.Line(verifyingMessageConstant)
	}
	for _, module := range service.configuration.VerifyModules {
		if moduleError := service.locator.RequireModule(executionContext, located, module); moduleError != nil {
			service.reporter.Failure(fmt.Sprintf(moduleFailedTemplateConstant, module))
			return summary, moduleError
		}
		service.reporter.Success(fmt.Sprintf(moduleAvailableTemplateConstant, module))
	}

	service.reporter.Success(environmentReadyMessageConstant)
	return summary, nil
}

func (service *Service) install(executionContext context.Context, located project.Project, packageName string) error {
	command := located.Command("", pythonModuleFlagConstant, pipModuleConstant, pipInstallSubcommandConstant, packageName)
	command.Details.Streams = service.streams
	_, executionError := service.executor.Execute(executionContext, command)
	return executionError
}

func (service *Service) reportSummary(summary Summary) {
	service.reporter.Line(summaryHeadingConstant)
	service.reporter.Success(fmt.Sprintf(summaryCountTemplateConstant, summary.Installed, summary.Total))

	if summary.Installed == summary.Total {
		service.reporter.Success(allInstalledMessageConstant)
		service.reporter.Line(nextStepsMessageConstant)
		for _, nextStepCommand := range nextStepCommands {
			service.reporter.Line(nextStepCommand)
		}
		return
	}

	service.reporter.Warning(fmt.Sprintf(someFailedTemplateConstant, summary.Total-summary.Installed))
	service.reporter.Line(manualInstallMessageConstant)
}

type silentReporter struct{}

func (silentReporter) Banner(string)  {}
func (silentReporter) Line(string)    {}
func (silentReporter) Success(string) {}
func (silentReporter) Failure(string) {}
func (silentReporter) Warning(string) {}
