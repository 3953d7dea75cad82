package classes

import (
	"strings"
	"time"
)

const (
	defaultTimeoutConstant   = 60 * time.Second
	defaultVerbosityConstant = 1
	defaultParallelConstant  = 1
	maximumVerbosityConstant = 3
)

var defaultTestClasses = []string{
	"polls.tests.DjangoJetCalmCompatibilityTests",
	"polls.tests.JetThemeTests",
	"polls.tests.JetDashboardTests",
	"polls.tests.JetAdminIntegrationTests",
	"polls.tests.JetStaticFilesTests",
	"polls.tests.JetSecurityTests",
	"polls.tests.JetPerformanceTests",
}

// Configuration captures the per-class runner settings.
type Configuration struct {
	TestClasses []string      `mapstructure:"test_classes"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Verbosity   int           `mapstructure:"verbosity"`
	Parallel    int           `mapstructure:"parallel"`
}

// DefaultConfiguration returns the Django Jet Calm test classes with a sixty second budget each, run sequentially.
func DefaultConfiguration() Configuration {
	return Configuration{
		TestClasses: append([]string{}, defaultTestClasses...),
		Timeout:     defaultTimeoutConstant,
		Verbosity:   defaultVerbosityConstant,
		Parallel:    defaultParallelConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + ".test_classes": defaults.TestClasses,
		prefix + ".timeout":      defaults.Timeout.String(),
		prefix + ".verbosity":    defaults.Verbosity,
		prefix + ".parallel":     defaults.Parallel,
	}
}

// Sanitize trims class names, drops duplicates, and restores defaults for unusable values.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		TestClasses: uniqueTestClasses(configuration.TestClasses),
		Timeout:     configuration.Timeout,
		Verbosity:   configuration.Verbosity,
		Parallel:    configuration.Parallel,
	}

	if len(sanitized.TestClasses) == 0 {
		sanitized.TestClasses = defaults.TestClasses
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaults.Timeout
	}
	if sanitized.Verbosity < 0 || sanitized.Verbosity > maximumVerbosityConstant {
		sanitized.Verbosity = defaults.Verbosity
	}
	if sanitized.Parallel < 1 {
		sanitized.Parallel = defaults.Parallel
	}

	return sanitized
}

func uniqueTestClasses(testClasses []string) []string {
	seen := make(map[string]struct{}, len(testClasses))
	unique := make([]string, 0, len(testClasses))
	for _, testClass := range testClasses {
		trimmed := strings.TrimSpace(testClass)
		if len(trimmed) == 0 {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		unique = append(unique, trimmed)
	}
	return unique
}
