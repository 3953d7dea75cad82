package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/venv"
)

const (
	pythonInlineCodeFlagConstant           = "-c"
	importStatementTemplateConstant        = "import %s"
	noVirtualEnvironmentTemplateConstant   = "No virtual environment found (checked %s); continuing with the inherited environment"
	candidateListSeparatorConstant         = ", "
	interpreterResolutionTemplateConstant  = "unable to resolve interpreter from %s: %w"
	virtualEnvironmentActivatedLogConstant = "virtual environment activated"
	virtualEnvironmentMissingLogConstant   = "virtual environment not found"
	interpreterResolvedLogConstant         = "interpreter resolved"
	moduleCheckedLogConstant               = "module import verified"
	logFieldVirtualEnvironmentConstant     = "virtual_environment"
	logFieldCandidatesConstant             = "candidates"
	logFieldInterpreterConstant            = "interpreter"
	logFieldModuleConstant                 = "module"
	logFieldProjectRootConstant            = "project_root"
)

// CommandExecutor runs interpreter commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// WarningHandler receives non-fatal conditions worth showing to the user.
type WarningHandler func(message string)

// Dependencies enumerates collaborators required by the Locator.
type Dependencies struct {
	Executor        CommandExecutor
	Activator       *venv.Activator
	Logger          *zap.Logger
	WarningHandler  WarningHandler
	BaseEnvironment func() []string
}

// LocateOptions tune which preconditions Locate enforces.
type LocateOptions struct {
	SkipMarkerCheck bool
}

// Project captures a located Django project and the environment its commands run in.
type Project struct {
	RootDirectory string
	Environment   venv.Environment
	Interpreter   string
}

// Command builds an interpreter invocation inside the project environment.
func (project Project) Command(workingDirectory string, arguments ...string) execshell.ShellCommand {
	if len(workingDirectory) == 0 {
		workingDirectory = project.RootDirectory
	}
	return execshell.ShellCommand{
		Name: execshell.CommandName(project.Interpreter),
		Details: execshell.CommandDetails{
			Arguments:        append([]string{}, arguments...),
			WorkingDirectory: workingDirectory,
			Environment:      project.Environment.Variables(),
		},
	}
}

// Locator applies the project preconditions shared by jetrun commands.
type Locator struct {
	configuration   Configuration
	executor        CommandExecutor
	activator       *venv.Activator
	logger          *zap.Logger
	warningHandler  WarningHandler
	baseEnvironment func() []string
}

// NewLocator constructs a Locator from configuration and dependencies.
func NewLocator(configuration Configuration, dependencies Dependencies) (*Locator, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.Activator == nil {
		return nil, ErrActivatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	warningHandler := dependencies.WarningHandler
	if warningHandler == nil {
		warningHandler = func(string) {}
	}
	baseEnvironment := dependencies.BaseEnvironment
	if baseEnvironment == nil {
		baseEnvironment = os.Environ
	}

	return &Locator{
		configuration:   configuration.Sanitize(),
		executor:        dependencies.Executor,
		activator:       dependencies.Activator,
		logger:          logger,
		warningHandler:  warningHandler,
		baseEnvironment: baseEnvironment,
	}, nil
}

// Configuration returns the sanitized configuration in use.
func (locator *Locator) Configuration() Configuration {
	return locator.configuration
}

// Prepare runs every precondition in order: marker file, virtual environment activation, interpreter
// resolution and the framework import check. Activation always precedes the import check so that a
// framework installed only inside the virtual environment is detected.
func (locator *Locator) Prepare(executionContext context.Context, workingDirectory string) (Project, error) {
	located, locateError := locator.Locate(executionContext, workingDirectory, LocateOptions{})
	if locateError != nil {
		if errors.Is(locateError, venv.ErrInterpreterNotFound) {
			return Project{}, ModuleUnavailableError{
				Module:      locator.configuration.FrameworkModule,
				InstallHint: locator.configuration.InstallHint,
				Cause:       locateError,
			}
		}
		return Project{}, locateError
	}

	if moduleError := locator.RequireModule(executionContext, located, locator.configuration.FrameworkModule); moduleError != nil {
		return Project{}, moduleError
	}

	return located, nil
}

// Locate checks the marker file, activates a virtual environment when one is present, and resolves the interpreter.
// A missing virtual environment is reported through the warning handler and is not an error.
func (locator *Locator) Locate(executionContext context.Context, workingDirectory string, options LocateOptions) (Project, error) {
	trimmedWorkingDirectory := strings.TrimSpace(workingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return Project{}, ErrWorkingDirectoryRequired
	}
	absoluteWorkingDirectory, absoluteError := filepath.Abs(trimmedWorkingDirectory)
	if absoluteError != nil {
		return Project{}, absoluteError
	}

	if !options.SkipMarkerCheck {
		if markerError := locator.requireMarker(absoluteWorkingDirectory); markerError != nil {
			return Project{}, markerError
		}
	}

	baseEnvironment := venv.NewEnvironment(locator.baseEnvironment())
	environment, found := locator.activator.Activate(absoluteWorkingDirectory, locator.configuration.VirtualEnvironments, baseEnvironment)
	if found {
		locator.logger.Debug(virtualEnvironmentActivatedLogConstant, zap.String(logFieldVirtualEnvironmentConstant, environment.VirtualEnvironmentPath))
	} else {
		locator.logger.Debug(virtualEnvironmentMissingLogConstant, zap.Strings(logFieldCandidatesConstant, locator.configuration.VirtualEnvironments))
		locator.warningHandler(fmt.Sprintf(noVirtualEnvironmentTemplateConstant, strings.Join(locator.configuration.VirtualEnvironments, candidateListSeparatorConstant)))
	}

	interpreter, interpreterError := locator.activator.ResolveInterpreter(environment, locator.configuration.Interpreters)
	if interpreterError != nil {
		return Project{}, fmt.Errorf(interpreterResolutionTemplateConstant, strings.Join(locator.configuration.Interpreters, candidateListSeparatorConstant), interpreterError)
	}
	locator.logger.Debug(interpreterResolvedLogConstant, zap.String(logFieldInterpreterConstant, interpreter), zap.String(logFieldProjectRootConstant, absoluteWorkingDirectory))

	return Project{RootDirectory: absoluteWorkingDirectory, Environment: environment, Interpreter: interpreter}, nil
}

// RequireModule verifies that the project interpreter can import module.
func (locator *Locator) RequireModule(executionContext context.Context, located Project, module string) error {
	importCommand := located.Command("", pythonInlineCodeFlagConstant, fmt.Sprintf(importStatementTemplateConstant, module))
	if _, executionError := locator.executor.Execute(executionContext, importCommand); executionError != nil {
		return ModuleUnavailableError{Module: module, InstallHint: locator.configuration.InstallHint, Cause: executionError}
	}
	locator.logger.Debug(moduleCheckedLogConstant, zap.String(logFieldModuleConstant, module))
	return nil
}

func (locator *Locator) requireMarker(workingDirectory string) error {
	markerPath := filepath.Join(workingDirectory, locator.configuration.MarkerFile)
	markerInfo, statError := os.Stat(markerPath)
	if statError != nil || markerInfo.IsDir() {
		return MarkerMissingError{MarkerFile: locator.configuration.MarkerFile, WorkingDirectory: workingDirectory}
	}
	return nil
}
