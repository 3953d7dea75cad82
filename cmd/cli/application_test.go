package cli_test

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/jetrun/cmd/cli"
	"github.com/temirov/jetrun/internal/classes"
	"github.com/temirov/jetrun/internal/dispatch"
	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/setup"
)

const (
	embeddedDefaultsProjectTestNameConstant  = "ProjectDefaults"
	embeddedDefaultsDispatchTestNameConstant = "DispatchDefaults"
	embeddedDefaultsClassesTestNameConstant  = "ClassesDefaults"
	embeddedDefaultsSetupTestNameConstant    = "SetupDefaults"
	embeddedDefaultLogLevelConstant          = "info"
	embeddedDefaultLogFormatConstant         = "console"
)

func TestApplicationEmbeddedDefaultsMatchPackageDefaults(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	testCases := []struct {
		name      string
		assertion func(testing.TB, cli.ApplicationConfiguration)
	}{
		{
			name: embeddedDefaultsProjectTestNameConstant,
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				assertionTarget.Helper()
				require.Equal(assertionTarget, project.DefaultConfiguration(), configuration.Project.Sanitize())
			},
		},
		{
			name: embeddedDefaultsDispatchTestNameConstant,
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				assertionTarget.Helper()
				require.Equal(assertionTarget, dispatch.DefaultConfiguration(), configuration.Tools.Dispatch.Sanitize())
			},
		},
		{
			name: embeddedDefaultsClassesTestNameConstant,
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				assertionTarget.Helper()
				require.Equal(assertionTarget, classes.DefaultConfiguration(), configuration.Tools.Classes.Sanitize())
			},
		},
		{
			name: embeddedDefaultsSetupTestNameConstant,
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				assertionTarget.Helper()
				require.Equal(assertionTarget, setup.DefaultConfiguration(), configuration.Tools.Setup.Sanitize())
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(t *testing.T) {
			testCase.assertion(t, configuration)
		})
	}
}

func TestApplicationEmbeddedDefaultsConfigureLogging(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	require.Equal(testInstance, embeddedDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, embeddedDefaultLogFormatConstant, configuration.Common.LogFormat)
}

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}
