package venv

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
	pathVariableNameConstant               = "PATH"
	virtualEnvironmentVariableNameConstant = "VIRTUAL_ENV"
	pythonHomeVariableNameConstant         = "PYTHONHOME"
)

// Environment is the complete set of variables passed to child processes.
type Environment struct {
	// VirtualEnvironmentPath is empty when no virtual environment was activated.
	VirtualEnvironmentPath string
	BinaryDirectory        string
	variables              []string
}

// NewEnvironment wraps an inherited variable list, typically os.Environ().
func NewEnvironment(variables []string) Environment {
	return Environment{variables: append([]string{}, variables...)}
}

// Active reports whether a virtual environment was activated.
func (environment Environment) Active() bool {
	return len(environment.VirtualEnvironmentPath) > 0
}

// Variables returns a copy of the environment in KEY=VALUE form.
func (environment Environment) Variables() []string {
	return append([]string{}, environment.variables...)
}

// Lookup returns the value of the named variable. The last assignment wins, matching os/exec.
func (environment Environment) Lookup(name string) (string, bool) {
	prefix := name + environmentAssignmentSeparatorConstant
	for variableIndex := len(environment.variables) - 1; variableIndex >= 0; variableIndex-- {
		if strings.HasPrefix(environment.variables[variableIndex], prefix) {
			return strings.TrimPrefix(environment.variables[variableIndex], prefix), true
		}
	}
	return "", false
}

// SearchPath splits PATH into its directories.
func (environment Environment) SearchPath() []string {
	pathValue, _ := environment.Lookup(pathVariableNameConstant)
	if len(pathValue) == 0 {
		return nil
	}
	return filepath.SplitList(pathValue)
}

func (environment Environment) with(name string, value string) Environment {
	updated := environment.without(name)
	updated.variables = append(updated.variables, name+environmentAssignmentSeparatorConstant+value)
	return updated
}

func (environment Environment) without(name string) Environment {
	prefix := name + environmentAssignmentSeparatorConstant
	retained := make([]string, 0, len(environment.variables))
	for _, variable := range environment.variables {
		if strings.HasPrefix(variable, prefix) {
			continue
		}
		retained = append(retained, variable)
	}
	environment.variables = retained
	return environment
}

func prependSearchPath(directory string, existingPath string) string {
	if len(existingPath) == 0 {
		return directory
	}
	return directory + string(os.PathListSeparator) + existingPath
}
