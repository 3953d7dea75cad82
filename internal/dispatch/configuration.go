package dispatch

import "strings"

const (
	defaultRunnerScriptConstant       = "run_jet_tests.py"
	defaultRunnerSubdirectoryConstant = "emailreader"
	defaultFallbackTargetConstant     = "polls.tests"
	defaultFallbackVerbosityConstant  = 2
	maximumVerbosityConstant          = 3
)

// Configuration captures the runner selection settings.
type Configuration struct {
	RunnerScript       string `mapstructure:"runner_script"`
	RunnerSubdirectory string `mapstructure:"runner_subdirectory"`
	FallbackTarget     string `mapstructure:"fallback_target"`
	FallbackVerbosity  int    `mapstructure:"fallback_verbosity"`
}

// DefaultConfiguration returns the runner selection settings of the Django Jet Calm project.
func DefaultConfiguration() Configuration {
	return Configuration{
		RunnerScript:       defaultRunnerScriptConstant,
		RunnerSubdirectory: defaultRunnerSubdirectoryConstant,
		FallbackTarget:     defaultFallbackTargetConstant,
		FallbackVerbosity:  defaultFallbackVerbosityConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + ".runner_script":       defaults.RunnerScript,
		prefix + ".runner_subdirectory": defaults.RunnerSubdirectory,
		prefix + ".fallback_target":     defaults.FallbackTarget,
		prefix + ".fallback_verbosity":  defaults.FallbackVerbosity,
	}
}

// Sanitize trims values and restores defaults for blank or out-of-range fields.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		RunnerScript:       strings.TrimSpace(configuration.RunnerScript),
		RunnerSubdirectory: strings.TrimSpace(configuration.RunnerSubdirectory),
		FallbackTarget:     strings.TrimSpace(configuration.FallbackTarget),
		FallbackVerbosity:  configuration.FallbackVerbosity,
	}

	if len(sanitized.RunnerScript) == 0 {
		sanitized.RunnerScript = defaults.RunnerScript
	}
	if len(sanitized.RunnerSubdirectory) == 0 {
		sanitized.RunnerSubdirectory = defaults.RunnerSubdirectory
	}
	if len(sanitized.FallbackTarget) == 0 {
		sanitized.FallbackTarget = defaults.FallbackTarget
	}
	if sanitized.FallbackVerbosity < 0 || sanitized.FallbackVerbosity > maximumVerbosityConstant {
		sanitized.FallbackVerbosity = defaults.FallbackVerbosity
	}

	return sanitized
}
