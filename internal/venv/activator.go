package venv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	pathutils "github.com/temirov/jetrun/internal/utils/path"
)

const (
	unixBinaryDirectoryNameConstant    = "bin"
	windowsBinaryDirectoryNameConstant = "Scripts"
	unixActivationScriptNameConstant   = "activate"
	windowsActivationScriptName        = "activate.bat"
	windowsOperatingSystemConstant     = "windows"
	windowsExecutableSuffixConstant    = ".exe"
	interpreterNotFoundMessageConstant = "no python interpreter found"
)

// ErrInterpreterNotFound indicates that none of the requested interpreter names resolved to an executable.
var ErrInterpreterNotFound = errors.New(interpreterNotFoundMessageConstant)

// Activator checks candidate directories and activates the first virtual environment found.
type Activator struct {
	pathResolver    *pathutils.Resolver
	operatingSystem string
}

// NewActivator constructs an Activator for the running operating system.
func NewActivator(pathResolver *pathutils.Resolver) *Activator {
	return NewActivatorForOperatingSystem(pathResolver, runtime.GOOS)
}

// NewActivatorForOperatingSystem constructs an Activator using the directory layout of the named operating system.
func NewActivatorForOperatingSystem(pathResolver *pathutils.Resolver, operatingSystem string) *Activator {
	if pathResolver == nil {
		pathResolver = pathutils.NewResolver()
	}
	return &Activator{pathResolver: pathResolver, operatingSystem: operatingSystem}
}

// Activate checks the candidates, relative to workingDirectory, in order. The first directory holding an
// activation script is activated; found is false and the base environment is returned unchanged when none match.
func (activator *Activator) Activate(workingDirectory string, candidates []string, base Environment) (Environment, bool) {
	for _, candidate := range candidates {
		if len(strings.TrimSpace(candidate)) == 0 {
			continue
		}
		candidatePath := activator.pathResolver.Resolve(workingDirectory, candidate)
		if !activator.isVirtualEnvironment(candidatePath) {
			continue
		}
		return activator.activate(candidatePath, base), true
	}
	return base, false
}

// ResolveInterpreter returns the interpreter to run inside environment. An active virtual environment's own
// python wins; otherwise the names are searched, in order, on the environment's PATH.
func (activator *Activator) ResolveInterpreter(environment Environment, names []string) (string, error) {
	if environment.Active() {
		for _, name := range names {
			candidatePath := filepath.Join(environment.BinaryDirectory, activator.executableName(name))
			if isExecutableFile(candidatePath) {
				return candidatePath, nil
			}
		}
	}

	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		if filepath.IsAbs(trimmedName) {
			if isExecutableFile(trimmedName) {
				return trimmedName, nil
			}
			continue
		}
		for _, directory := range environment.SearchPath() {
			candidatePath := filepath.Join(directory, activator.executableName(trimmedName))
			if isExecutableFile(candidatePath) {
				return candidatePath, nil
			}
		}
	}

	return "", ErrInterpreterNotFound
}

func (activator *Activator) activate(virtualEnvironmentPath string, base Environment) Environment {
	binaryDirectory := filepath.Join(virtualEnvironmentPath, activator.binaryDirectoryName())
	existingPath, _ := base.Lookup(pathVariableNameConstant)

	activated := base.without(pythonHomeVariableNameConstant)
	activated = activated.with(virtualEnvironmentVariableNameConstant, virtualEnvironmentPath)
	activated = activated.with(pathVariableNameConstant, prependSearchPath(binaryDirectory, existingPath))
	activated.VirtualEnvironmentPath = virtualEnvironmentPath
	activated.BinaryDirectory = binaryDirectory
	return activated
}

func (activator *Activator) isVirtualEnvironment(candidatePath string) bool {
	directoryInfo, statError := os.Stat(candidatePath)
	if statError != nil || !directoryInfo.IsDir() {
		return false
	}
	activationScriptPath := filepath.Join(candidatePath, activator.binaryDirectoryName(), activator.activationScriptName())
	scriptInfo, scriptStatError := os.Stat(activationScriptPath)
	return scriptStatError == nil && scriptInfo.Mode().IsRegular()
}

func (activator *Activator) binaryDirectoryName() string {
	if activator.operatingSystem == windowsOperatingSystemConstant {
		return windowsBinaryDirectoryNameConstant
	}
	return unixBinaryDirectoryNameConstant
}

func (activator *Activator) activationScriptName() string {
	if activator.operatingSystem == windowsOperatingSystemConstant {
		return windowsActivationScriptName
	}
	return unixActivationScriptNameConstant
}

func (activator *Activator) executableName(name string) string {
	if activator.operatingSystem == windowsOperatingSystemConstant && !strings.HasSuffix(name, windowsExecutableSuffixConstant) {
		return name + windowsExecutableSuffixConstant
	}
	return name
}

func isExecutableFile(candidatePath string) bool {
	fileInfo, statError := os.Stat(candidatePath)
	if statError != nil || !fileInfo.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == windowsOperatingSystemConstant {
		return true
	}
	return fileInfo.Mode().Perm()&0o111 != 0
}
