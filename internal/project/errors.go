package project

import (
	"errors"
	"fmt"
)

const (
	markerMissingTemplateConstant     = "%s not found in %s. Please run jetrun from the Django project directory."
	moduleUnavailableTemplateConstant = "%s is not importable. Please install the requirements: %s"
	executorNotConfiguredMessage      = "project locator command executor not configured"
	activatorNotConfiguredMessage     = "project locator virtual environment activator not configured"
	workingDirectoryRequiredMessage   = "working directory must be provided"
)

// ErrExecutorNotConfigured indicates the locator was constructed without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// ErrActivatorNotConfigured indicates the locator was constructed without a virtual environment activator.
var ErrActivatorNotConfigured = errors.New(activatorNotConfiguredMessage)

// ErrWorkingDirectoryRequired indicates an empty working directory was supplied.
var ErrWorkingDirectoryRequired = errors.New(workingDirectoryRequiredMessage)

// MarkerMissingError reports that the marker file is absent from the working directory.
type MarkerMissingError struct {
	MarkerFile       string
	WorkingDirectory string
}

// Error describes the missing marker.
func (markerMissingError MarkerMissingError) Error() string {
	return fmt.Sprintf(markerMissingTemplateConstant, markerMissingError.MarkerFile, markerMissingError.WorkingDirectory)
}

// ModuleUnavailableError reports that a required module cannot be imported by the resolved interpreter.
type ModuleUnavailableError struct {
	Module      string
	InstallHint string
	Cause       error
}

// Error describes the missing module together with installation instructions.
func (moduleUnavailableError ModuleUnavailableError) Error() string {
	return fmt.Sprintf(moduleUnavailableTemplateConstant, moduleUnavailableError.Module, moduleUnavailableError.InstallHint)
}

// Unwrap exposes the underlying cause.
func (moduleUnavailableError ModuleUnavailableError) Unwrap() error {
	return moduleUnavailableError.Cause
}
