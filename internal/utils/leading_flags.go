package utils

import (
	"strings"

	"github.com/spf13/pflag"
)

const (
	longFlagPrefixConstant         = "--"
	flagValueSeparatorConstant     = "="
	argumentTerminatorFlagConstant = "--"
)

// FlagAssignment is a flag name and the raw value supplied for it.
type FlagAssignment struct {
	Name  string
	Value string
}

// SplitLeadingFlags separates long flags known to flagSet from the front of arguments. Scanning stops at the
// first token that is not such a flag, so everything after it is returned untouched and in order. Commands
// that disable cobra flag parsing use it to honor jetrun's own flags while forwarding the rest verbatim.
func SplitLeadingFlags(flagSet *pflag.FlagSet, arguments []string) ([]FlagAssignment, []string) {
	if flagSet == nil {
		return nil, arguments
	}

	var assignments []FlagAssignment
	argumentIndex := 0
	for argumentIndex < len(arguments) {
		token := arguments[argumentIndex]
		if token == argumentTerminatorFlagConstant || !strings.HasPrefix(token, longFlagPrefixConstant) {
			break
		}

		flagName, flagValue, hasInlineValue := strings.Cut(strings.TrimPrefix(token, longFlagPrefixConstant), flagValueSeparatorConstant)
		flagDefinition := flagSet.Lookup(flagName)
		if flagDefinition == nil {
			break
		}

		if !hasInlineValue {
			switch {
			case len(flagDefinition.NoOptDefVal) > 0:
				flagValue = flagDefinition.NoOptDefVal
			case argumentIndex+1 < len(arguments):
				argumentIndex++
				flagValue = arguments[argumentIndex]
			default:
				return assignments, arguments[argumentIndex:]
			}
		}

		assignments = append(assignments, FlagAssignment{Name: flagName, Value: flagValue})
		argumentIndex++
	}

	return assignments, append([]string{}, arguments[argumentIndex:]...)
}

// ApplyFlagAssignments sets each assignment on flagSet, stopping at the first invalid value.
func ApplyFlagAssignments(flagSet *pflag.FlagSet, assignments []FlagAssignment) error {
	for _, assignment := range assignments {
		if setError := flagSet.Set(assignment.Name, assignment.Value); setError != nil {
			return setError
		}
	}
	return nil
}
