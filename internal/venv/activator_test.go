package venv_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/jetrun/internal/utils/path"
	"github.com/temirov/jetrun/internal/venv"
)

func createVirtualEnvironment(testInstance *testing.T, virtualEnvironmentPath string, withPython bool) {
	testInstance.Helper()
	binaryDirectory := filepath.Join(virtualEnvironmentPath, "bin")
	require.NoError(testInstance, os.MkdirAll(binaryDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "activate"), []byte("# activate\n"), 0o644))
	if withPython {
		require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "python"), []byte("#!/bin/sh\n"), 0o755))
	}
}

func newTestActivator() *venv.Activator {
	resolver := pathutils.NewResolverWithProvider(func() (string, error) { return "/home/tester", nil })
	return venv.NewActivatorForOperatingSystem(resolver, "linux")
}

func TestActivatorChecksCandidatesInOrder(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("unix layout only")
	}

	testCases := []struct {
		name                 string
		createLocal          bool
		createParent         bool
		expectFound          bool
		expectedRelativePath string
	}{
		{name: "local_preferred", createLocal: true, createParent: true, expectFound: true, expectedRelativePath: "project/venv"},
		{name: "parent_fallback", createLocal: false, createParent: true, expectFound: true, expectedRelativePath: "venv"},
		{name: "none_found", expectFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory := testInstance.TempDir()
			projectDirectory := filepath.Join(rootDirectory, "project")
			require.NoError(testInstance, os.MkdirAll(projectDirectory, 0o755))
			if testCase.createLocal {
				createVirtualEnvironment(testInstance, filepath.Join(projectDirectory, "venv"), true)
			}
			if testCase.createParent {
				createVirtualEnvironment(testInstance, filepath.Join(rootDirectory, "venv"), true)
			}

			base := venv.NewEnvironment([]string{"PATH=/usr/bin:/bin", "PYTHONHOME=/opt/python", "HOME=/home/tester"})
			environment, found := newTestActivator().Activate(projectDirectory, []string{"venv", "../venv"}, base)

			require.Equal(testInstance, testCase.expectFound, found)
			if !testCase.expectFound {
				require.False(testInstance, environment.Active())
				require.Equal(testInstance, base.Variables(), environment.Variables())
				return
			}

			expectedPath := filepath.Join(rootDirectory, testCase.expectedRelativePath)
			require.True(testInstance, environment.Active())
			require.Equal(testInstance, expectedPath, environment.VirtualEnvironmentPath)

			virtualEnvironmentValue, virtualEnvironmentSet := environment.Lookup("VIRTUAL_ENV")
			require.True(testInstance, virtualEnvironmentSet)
			require.Equal(testInstance, expectedPath, virtualEnvironmentValue)

			pathValue, _ := environment.Lookup("PATH")
			require.Equal(testInstance, filepath.Join(expectedPath, "bin")+":/usr/bin:/bin", pathValue)

			_, pythonHomeSet := environment.Lookup("PYTHONHOME")
			require.False(testInstance, pythonHomeSet)

			homeValue, _ := environment.Lookup("HOME")
			require.Equal(testInstance, "/home/tester", homeValue)
		})
	}
}

func TestActivatorIgnoresDirectoriesWithoutActivationScript(testInstance *testing.T) {
	projectDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(projectDirectory, "venv", "bin"), 0o755))

	_, found := newTestActivator().Activate(projectDirectory, []string{"venv"}, venv.NewEnvironment(nil))
	require.False(testInstance, found)
}

func TestActivatorResolveInterpreter(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("unix layout only")
	}

	pathDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(pathDirectory, "python3"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(pathDirectory, "python"), []byte("not executable\n"), 0o644))

	activator := newTestActivator()

	testInstance.Run("path_lookup_in_name_order", func(testInstance *testing.T) {
		environment := venv.NewEnvironment([]string{"PATH=" + pathDirectory})
		interpreterPath, resolveError := activator.ResolveInterpreter(environment, []string{"python", "python3"})
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, filepath.Join(pathDirectory, "python3"), interpreterPath)
	})

	testInstance.Run("virtual_environment_python_wins", func(testInstance *testing.T) {
		projectDirectory := testInstance.TempDir()
		createVirtualEnvironment(testInstance, filepath.Join(projectDirectory, "venv"), true)

		environment, found := activator.Activate(projectDirectory, []string{"venv"}, venv.NewEnvironment([]string{"PATH=" + pathDirectory}))
		require.True(testInstance, found)

		interpreterPath, resolveError := activator.ResolveInterpreter(environment, []string{"python3", "python"})
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, filepath.Join(projectDirectory, "venv", "bin", "python"), interpreterPath)
	})

	testInstance.Run("missing_interpreter", func(testInstance *testing.T) {
		environment := venv.NewEnvironment([]string{"PATH=" + testInstance.TempDir()})
		_, resolveError := activator.ResolveInterpreter(environment, []string{"python3"})
		require.ErrorIs(testInstance, resolveError, venv.ErrInterpreterNotFound)
	})
}
