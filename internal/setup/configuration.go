package setup

import "strings"

// Configuration lists the packages to install and the modules that must import afterwards.
type Configuration struct {
	Packages      []string `mapstructure:"packages"`
	VerifyModules []string `mapstructure:"verify_modules"`
}

// DefaultConfiguration returns the Django Jet Calm test requirements.
func DefaultConfiguration() Configuration {
	return Configuration{
		Packages:      []string{"Django==5.1.12", "feedparser", "psutil", "coverage"},
		VerifyModules: []string{"django", "jet"},
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + ".packages":       defaults.Packages,
		prefix + ".verify_modules": defaults.VerifyModules,
	}
}

// Sanitize trims entries and drops blanks. An empty package list falls back to the defaults; an empty
// module list disables verification.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := Configuration{
		Packages:      sanitizeEntries(configuration.Packages),
		VerifyModules: sanitizeEntries(configuration.VerifyModules),
	}
	if len(sanitized.Packages) == 0 {
		sanitized.Packages = DefaultConfiguration().Packages
	}
	return sanitized
}

func sanitizeEntries(entries []string) []string {
	sanitized := make([]string, 0, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
