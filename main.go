package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/jetrun/cmd/cli"
	"github.com/temirov/jetrun/internal/utils"
)

const (
	exitErrorTemplateConstant = "%v\n"
	defaultExitCodeConstant   = 1
)

// main executes the jetrun command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	exitCode := defaultExitCodeConstant
	var exitError *utils.ExitError
	if errors.As(executionError, &exitError) {
		exitCode = exitError.Code
		if !exitError.Silent() {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, exitError)
		}
	} else {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(utils.NormalizeExitCode(exitCode))
}
