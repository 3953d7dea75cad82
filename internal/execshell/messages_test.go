package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesInterpreterInvocations(t *testing.T) {
	formatter := CommandMessageFormatter{}

	testCases := []struct {
		name     string
		command  ShellCommand
		build    func(command ShellCommand) string
		expected string
	}{
		{
			name:     "import_check_started",
			command:  ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"-c", "import django"}}},
			build:    formatter.BuildStartedMessage,
			expected: "Checking that django is importable",
		},
		{
			name:    "import_check_failed_keeps_last_traceback_line",
			command: ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"-c", "import jet"}}},
			build: func(command ShellCommand) string {
				return formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "Traceback (most recent call last):\n  File \"<string>\", line 1\nModuleNotFoundError: No module named 'jet'\n"})
			},
			expected: "jet is not importable (exit code 1: ModuleNotFoundError: No module named 'jet')",
		},
		{
			name:     "pip_install_succeeded",
			command:  ShellCommand{Name: "/venv/bin/python", Details: CommandDetails{Arguments: []string{"-m", "pip", "install", "Django==5.1.12"}}},
			build:    formatter.BuildSuccessMessage,
			expected: "Installed Django==5.1.12",
		},
		{
			name:     "django_test_started",
			command:  ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"manage.py", "test", "polls.tests", "--verbosity=2"}, WorkingDirectory: "/srv/emailreader"}},
			build:    formatter.BuildStartedMessage,
			expected: "Running Django tests for polls.tests (in /srv/emailreader)",
		},
		{
			name:     "django_test_without_target",
			command:  ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"manage.py", "test"}}},
			build:    formatter.BuildSuccessMessage,
			expected: "Django tests for all applications passed",
		},
		{
			name:    "runner_script_failed",
			command: ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"run_jet_tests.py", "--verbose"}}},
			build: func(command ShellCommand) string {
				return formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 3})
			},
			expected: "Test runner run_jet_tests.py failed (exit code 3)",
		},
		{
			name:    "generic_execution_failure",
			command: ShellCommand{Name: "python3", Details: CommandDetails{Arguments: []string{"--version"}}},
			build: func(command ShellCommand) string {
				return formatter.BuildExecutionFailureMessage(command, errors.New("not found"))
			},
			expected: "python3 --version failed: not found",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, testCase.build(testCase.command))
		})
	}
}
