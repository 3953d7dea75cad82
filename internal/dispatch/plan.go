package dispatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
)

const (
	djangoTestSubcommandConstant  = "test"
	verbosityFlagTemplateConstant = "--verbosity=%d"
)

// Strategy names the runner chosen for a dispatch.
type Strategy string

// Runner strategies in priority order.
const (
	StrategyRunnerScript       Strategy = "runner"
	StrategyRunnerSubdirectory Strategy = "runner-subdirectory"
	StrategyFallback           Strategy = "fallback"
)

// Plan is the resolved runner invocation, ready to execute.
type Plan struct {
	Strategy Strategy
	Project  project.Project
	Command  execshell.ShellCommand
	// IgnoredArguments holds forwarded arguments the fallback command does not accept.
	IgnoredArguments []string
}

// Planner selects the runner for a located project.
type Planner struct {
	configuration    Configuration
	managementScript string
}

// NewPlanner constructs a Planner. The management script is the file Django's fallback test command runs through.
func NewPlanner(configuration Configuration, managementScript string) Planner {
	return Planner{configuration: configuration.Sanitize(), managementScript: managementScript}
}

// Select picks the runner for located. The runner script in the project root wins over the copy in the runner
// subdirectory, which wins over Django's test command.
func (planner Planner) Select(located project.Project, arguments []string) Plan {
	forwardedArguments := append([]string{}, arguments...)

	if isRegularFile(filepath.Join(located.RootDirectory, planner.configuration.RunnerScript)) {
		return Plan{
			Strategy: StrategyRunnerScript,
			Project:  located,
			Command:  located.Command(located.RootDirectory, append([]string{planner.configuration.RunnerScript}, forwardedArguments...)...),
		}
	}

	subdirectory := filepath.Join(located.RootDirectory, planner.configuration.RunnerSubdirectory)
	if isRegularFile(filepath.Join(subdirectory, planner.configuration.RunnerScript)) {
		return Plan{
			Strategy: StrategyRunnerSubdirectory,
			Project:  located,
			Command:  located.Command(subdirectory, append([]string{planner.configuration.RunnerScript}, forwardedArguments...)...),
		}
	}

	fallbackArguments := []string{
		planner.managementScript,
		djangoTestSubcommandConstant,
		planner.configuration.FallbackTarget,
		fmt.Sprintf(verbosityFlagTemplateConstant, planner.configuration.FallbackVerbosity),
	}
	plan := Plan{
		Strategy: StrategyFallback,
		Project:  located,
		Command:  located.Command(located.RootDirectory, fallbackArguments...),
	}
	if len(forwardedArguments) > 0 {
		plan.IgnoredArguments = forwardedArguments
	}
	return plan
}

func isRegularFile(candidatePath string) bool {
	fileInfo, statError := os.Stat(candidatePath)
	return statError == nil && fileInfo.Mode().IsRegular()
}
