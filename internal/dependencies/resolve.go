package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/ui"
	pathutils "github.com/temirov/jetrun/internal/utils/path"
	"github.com/temirov/jetrun/internal/venv"
)

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default. Human-readable
// logging attaches the console observer so command lifecycle events read as sentences.
func ResolveCommandExecutor(existing project.CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (project.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var observers []execshell.CommandEventObserver
	if humanReadableLogging {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveActivator returns the provided activator or one bound to the running operating system.
func ResolveActivator(existing *venv.Activator) *venv.Activator {
	if existing != nil {
		return existing
	}
	return venv.NewActivator(pathutils.NewResolver())
}

// ResolveLocator constructs a project locator from the supplied collaborators, filling in defaults.
func ResolveLocator(configuration project.Configuration, executor project.CommandExecutor, activator *venv.Activator, logger *zap.Logger, warningHandler project.WarningHandler) (*project.Locator, error) {
	return project.NewLocator(configuration, project.Dependencies{
		Executor:       executor,
		Activator:      ResolveActivator(activator),
		Logger:         logger,
		WarningHandler: warningHandler,
	})
}
