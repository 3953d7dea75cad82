package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/temirov/jetrun/internal/utils"
)

const (
	testFakeInterpreterScriptConstant = "#!/bin/sh\nexit 0\n"
	testConfigurationContentConstant  = "tools:\n  dispatch:\n    fallback_target: jet.tests\n"
	testMissingMarkerMessageConstant  = "manage.py not found in"
	testFallbackStrategyLineConstant  = "Strategy: fallback"
	testFallbackCommandSuffixConstant = "manage.py test jet.tests --verbosity=2"
	testInterruptedMessageConstant    = "Test run interrupted"
)

func TestApplicationConsumesLeadingFlagsBeforeRunnerArguments(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		withProject          bool
		arguments            func(configurationPath string) []string
		expectedExitCode     int
		expectedOutputSample []string
		expectedLogLevel     string
	}{
		{
			name:        "MissingMarkerAfterLogLevelOverride",
			withProject: false,
			arguments: func(string) []string {
				return []string{"--log-level", "error", "plan"}
			},
			expectedExitCode:     1,
			expectedOutputSample: []string{testMissingMarkerMessageConstant},
			expectedLogLevel:     "error",
		},
		{
			name:        "ConfigurationFileGivenBetweenCommandAndArguments",
			withProject: true,
			arguments: func(configurationPath string) []string {
				return []string{"plan", "--config", configurationPath, "--log-level=warn", "--verbose"}
			},
			expectedOutputSample: []string{testFallbackStrategyLineConstant, testFallbackCommandSuffixConstant},
			expectedLogLevel:     "warn",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(t *testing.T) {
			if runtime.GOOS == "windows" {
				t.Skip("fake interpreter requires a POSIX shell")
			}
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())

			projectDirectory := t.TempDir()
			if testCase.withProject {
				writeFakeProject(t, projectDirectory)
			}
			configurationPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))
			t.Chdir(projectDirectory)

			application := NewApplication()
			outputBuffer := &bytes.Buffer{}
			application.rootCommand.SetOut(outputBuffer)
			application.rootCommand.SetErr(&bytes.Buffer{})
			application.rootCommand.SetArgs(testCase.arguments(configurationPath))

			executionError := application.Execute()
			if testCase.expectedExitCode == 0 {
				require.NoError(t, executionError)
			} else {
				var exitError *utils.ExitError
				require.ErrorAs(t, executionError, &exitError)
				require.Equal(t, testCase.expectedExitCode, exitError.Code)
			}

			for _, outputSample := range testCase.expectedOutputSample {
				require.Contains(t, outputBuffer.String(), outputSample)
			}
			require.Equal(t, testCase.expectedLogLevel, application.configuration.Common.LogLevel)

			_, parseError := uuid.Parse(application.runIdentifier)
			require.NoError(t, parseError)
		})
	}
}

func TestApplicationPassesCanceledContextToCommands(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("fake interpreter requires a POSIX shell")
	}
	testInstance.Setenv("XDG_CONFIG_HOME", testInstance.TempDir())

	projectDirectory := testInstance.TempDir()
	writeFakeProject(testInstance, projectDirectory)
	testInstance.Chdir(projectDirectory)

	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs([]string{"--log-level", "error", "classes", "--class", "polls.tests.JetThemeTests"})

	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	executionError := application.ExecuteContext(executionContext)

	var exitError *utils.ExitError
	require.ErrorAs(testInstance, executionError, &exitError)
	require.Equal(testInstance, utils.ExitCodeInterrupted, exitError.Code)
	require.Contains(testInstance, outputBuffer.String(), testInterruptedMessageConstant)
}

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommands := map[string]bool{}
	for _, subcommand := range application.rootCommand.Commands() {
		registeredCommands[subcommand.Name()] = true
	}

	for _, expectedCommand := range []string{"run", "plan", "classes", "setup"} {
		require.Truef(testInstance, registeredCommands[expectedCommand], "missing subcommand %s", expectedCommand)
	}
}

func TestResolveVersionPrefersStampedVersion(testInstance *testing.T) {
	originalVersion := Version
	testInstance.Cleanup(func() { Version = originalVersion })

	Version = "v1.2.3"
	require.Equal(testInstance, "v1.2.3", resolveVersion())

	Version = ""
	require.NotEmpty(testInstance, resolveVersion())
}

func writeFakeProject(testInstance *testing.T, projectDirectory string) {
	testInstance.Helper()

	binaryDirectory := filepath.Join(projectDirectory, "venv", "bin")
	require.NoError(testInstance, os.MkdirAll(binaryDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "activate"), []byte("# activate\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "python3"), []byte(testFakeInterpreterScriptConstant), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectDirectory, "manage.py"), []byte("# manage\n"), 0o644))
}
