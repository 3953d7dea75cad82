package project

import "strings"

const (
	defaultMarkerFileConstant      = "manage.py"
	defaultFrameworkModuleConstant = "django"
	defaultInstallHintConstant     = "pip install -r requirements.txt"
)

// Configuration describes how a Django project and its interpreter are located.
type Configuration struct {
	MarkerFile          string   `mapstructure:"marker_file"`
	VirtualEnvironments []string `mapstructure:"virtual_environments"`
	Interpreters        []string `mapstructure:"interpreters"`
	FrameworkModule     string   `mapstructure:"framework_module"`
	InstallHint         string   `mapstructure:"install_hint"`
}

// DefaultConfiguration returns the standard Django project layout: manage.py, venv or ../venv, and python3.
func DefaultConfiguration() Configuration {
	return Configuration{
		MarkerFile:          defaultMarkerFileConstant,
		VirtualEnvironments: []string{"venv", "../venv"},
		Interpreters:        []string{"python3", "python"},
		FrameworkModule:     defaultFrameworkModuleConstant,
		InstallHint:         defaultInstallHintConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + ".marker_file":          defaults.MarkerFile,
		prefix + ".virtual_environments": defaults.VirtualEnvironments,
		prefix + ".interpreters":         defaults.Interpreters,
		prefix + ".framework_module":     defaults.FrameworkModule,
		prefix + ".install_hint":         defaults.InstallHint,
	}
}

// Sanitize trims values and restores defaults for fields left empty.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		MarkerFile:          strings.TrimSpace(configuration.MarkerFile),
		VirtualEnvironments: sanitizeList(configuration.VirtualEnvironments),
		Interpreters:        sanitizeList(configuration.Interpreters),
		FrameworkModule:     strings.TrimSpace(configuration.FrameworkModule),
		InstallHint:         strings.TrimSpace(configuration.InstallHint),
	}

	if len(sanitized.MarkerFile) == 0 {
		sanitized.MarkerFile = defaults.MarkerFile
	}
	if len(sanitized.Interpreters) == 0 {
		sanitized.Interpreters = defaults.Interpreters
	}
	if len(sanitized.FrameworkModule) == 0 {
		sanitized.FrameworkModule = defaults.FrameworkModule
	}
	if len(sanitized.InstallHint) == 0 {
		sanitized.InstallHint = defaults.InstallHint
	}

	return sanitized
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
