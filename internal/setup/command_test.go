package setup_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/setup"
	"github.com/temirov/jetrun/internal/utils"
	pathutils "github.com/temirov/jetrun/internal/utils/path"
	"github.com/temirov/jetrun/internal/venv"
)

const fakePipInterpreterConstant = `#!/bin/sh
if [ "$1" = "-c" ]; then
	if [ "$2" = "import jet" ]; then
		exit 1
	fi
	exit 0
fi
if [ "$4" = "broken-package" ]; then
	printf 'ERROR: No matching distribution found for broken-package\n' >&2
	exit 1
fi
printf 'Successfully installed %s\n' "$4"
exit 0
`

func newSetupBuilder(testInstance *testing.T, verifyModules []string) *setup.CommandBuilder {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("fake interpreter requires a POSIX shell")
	}

	workingDirectory := testInstance.TempDir()
	binaryDirectory := filepath.Join(workingDirectory, "venv", "bin")
	require.NoError(testInstance, os.MkdirAll(binaryDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "activate"), []byte("# activate\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "python3"), []byte(fakePipInterpreterConstant), 0o755))

	resolver := pathutils.NewResolverWithProvider(func() (string, error) { return workingDirectory, nil })
	return &setup.CommandBuilder{
		Activator:        venv.NewActivatorForOperatingSystem(resolver, "linux"),
		WorkingDirectory: workingDirectory,
		ConfigurationProvider: func() setup.Configuration {
			return setup.Configuration{Packages: []string{"feedparser", "broken-package"}, VerifyModules: verifyModules}
		},
		ProjectConfigurationProvider: project.DefaultConfiguration,
	}
}

func executeSetupCommand(testInstance *testing.T, builder *setup.CommandBuilder, arguments []string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(arguments)
	executionError := command.Execute()
	return output.String(), executionError
}

func TestSetupCommandContinuesPastFailedInstall(testInstance *testing.T) {
	output, executionError := executeSetupCommand(testInstance, newSetupBuilder(testInstance, []string{"django"}), []string{})
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Successfully installed feedparser")
	require.Contains(testInstance, output, "feedparser installed successfully")
	require.Contains(testInstance, output, "Failed to install broken-package")
	require.Contains(testInstance, output, "Successfully installed: 1/2 packages")
	require.Contains(testInstance, output, "django is available")
	require.Contains(testInstance, output, "Test environment is ready!")
}

func TestSetupCommandFailsWhenModuleMissing(testInstance *testing.T) {
	output, executionError := executeSetupCommand(testInstance, newSetupBuilder(testInstance, []string{"django", "jet"}), []string{"--package", "feedparser"})

	var exitError *utils.ExitError
	require.True(testInstance, errors.As(executionError, &exitError))
	require.Equal(testInstance, 1, exitError.Code)
	require.Contains(testInstance, output, "Successfully installed: 1/1 packages")
	require.Contains(testInstance, output, "jet import failed")
	require.NotContains(testInstance, output, "Test environment is ready!")
}

func TestSetupCommandDoesNotRequireMarker(testInstance *testing.T) {
	output, executionError := executeSetupCommand(testInstance, newSetupBuilder(testInstance, nil), []string{"--package", "feedparser"})
	require.NoError(testInstance, executionError)
	require.NotContains(testInstance, output, "manage.py")
}
