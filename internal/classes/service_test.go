package classes_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/jetrun/internal/classes"
	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
	"github.com/temirov/jetrun/internal/venv"
)

const (
	testProjectRootConstant = "/srv/app"
	testInterpreterConstant = "/srv/app/venv/bin/python3"
)

type behavior struct {
	exitCode       int
	standardError  string
	blockUntilDone bool
	startError     error
	delay          time.Duration
}

type scriptedExecutor struct {
	mutex     sync.Mutex
	behaviors map[string]behavior
	commands  []execshell.ShellCommand
	active    int
	peak      int
}

func (executor *scriptedExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.commands = append(executor.commands, command)
	executor.active++
	if executor.active > executor.peak {
		executor.peak = executor.active
	}
	classBehavior := executor.behaviors[command.Details.Arguments[2]]
	executor.mutex.Unlock()

	defer func() {
		executor.mutex.Lock()
		executor.active--
		executor.mutex.Unlock()
	}()

	if classBehavior.delay > 0 {
		timer := time.NewTimer(classBehavior.delay)
		select {
		case <-timer.C:
		case <-executionContext.Done():
			timer.Stop()
		}
	}
	if classBehavior.blockUntilDone {
		<-executionContext.Done()
		killedResult := execshell.ExecutionResult{ExitCode: -1}
		return killedResult, execshell.CommandFailedError{Command: command, Result: killedResult}
	}
	if classBehavior.startError != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: classBehavior.startError}
	}
	result := execshell.ExecutionResult{ExitCode: classBehavior.exitCode, StandardError: classBehavior.standardError}
	if classBehavior.exitCode != 0 {
		return result, execshell.CommandFailedError{Command: command, Result: result}
	}
	return result, nil
}

type stubLocator struct {
	locateError error
	options     []project.LocateOptions
}

func (locator *stubLocator) Locate(_ context.Context, _ string, options project.LocateOptions) (project.Project, error) {
	locator.options = append(locator.options, options)
	if locator.locateError != nil {
		return project.Project{}, locator.locateError
	}
	return project.Project{
		RootDirectory: testProjectRootConstant,
		Environment:   venv.NewEnvironment([]string{"PATH=/usr/bin"}),
		Interpreter:   testInterpreterConstant,
	}, nil
}

type recordingReporter struct {
	mutex sync.Mutex
	lines []string
}

func (reporter *recordingReporter) record(line string) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	reporter.lines = append(reporter.lines, line)
}

func (reporter *recordingReporter) Banner(title string)    { reporter.record("banner:" + title) }
func (reporter *recordingReporter) Rule()                  { reporter.record("rule") }
func (reporter *recordingReporter) Line(message string)    { reporter.record("line:" + message) }
func (reporter *recordingReporter) Success(message string) { reporter.record("success:" + message) }
func (reporter *recordingReporter) Failure(message string) { reporter.record("failure:" + message) }
func (reporter *recordingReporter) Timeout(message string) { reporter.record("timeout:" + message) }

func newService(testInstance *testing.T, configuration classes.Configuration, executor *scriptedExecutor, reporter *recordingReporter) *classes.Service {
	testInstance.Helper()
	service, serviceError := classes.NewService(configuration, classes.ServiceDependencies{
		Locator:  &stubLocator{},
		Executor: executor,
		Reporter: reporter,
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, locatorError := classes.NewService(classes.DefaultConfiguration(), classes.ServiceDependencies{Executor: &scriptedExecutor{}})
	require.ErrorIs(testInstance, locatorError, classes.ErrLocatorNotConfigured)

	_, executorError := classes.NewService(classes.DefaultConfiguration(), classes.ServiceDependencies{Locator: &stubLocator{}})
	require.ErrorIs(testInstance, executorError, classes.ErrExecutorNotConfigured)
}

func TestServiceClassifiesEachTestClass(testInstance *testing.T) {
	configuration := classes.Configuration{
		TestClasses: []string{"polls.tests.Passing", "polls.tests.Failing", "polls.tests.Slow", "polls.tests.Broken"},
		Timeout:     50 * time.Millisecond,
		Verbosity:   1,
		Parallel:    1,
	}
	executor := &scriptedExecutor{behaviors: map[string]behavior{
		"polls.tests.Failing": {exitCode: 1, standardError: "AssertionError: theme missing\n"},
		"polls.tests.Slow":    {blockUntilDone: true},
		"polls.tests.Broken":  {startError: errors.New("exec: python3: not found")},
	}}
	reporter := &recordingReporter{}

	report, runError := newService(testInstance, configuration, executor, reporter).Run(context.Background(), classes.Options{WorkingDirectory: testProjectRootConstant, RunIdentifier: "run-1"})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, "run-1", report.RunIdentifier)
	require.Equal(testInstance, 4, report.Total)
	require.Equal(testInstance, 1, report.Passed)
	require.False(testInstance, report.AllPassed())

	statuses := make([]classes.Status, 0, len(report.Results))
	for _, result := range report.Results {
		statuses = append(statuses, result.Status)
	}
	require.Equal(testInstance, []classes.Status{classes.StatusPassed, classes.StatusFailed, classes.StatusTimeout, classes.StatusError}, statuses)
	require.Equal(testInstance, "AssertionError: theme missing", report.Results[1].StandardError)
	require.Equal(testInstance, 1, report.Results[1].ExitCode)
	require.Contains(testInstance, report.Results[3].Error, "not found")

	firstCommand := executor.commands[0]
	require.Equal(testInstance, execshell.CommandName(testInterpreterConstant), firstCommand.Name)
	require.Equal(testInstance, []string{"manage.py", "test", "polls.tests.Passing", "--verbosity=1"}, firstCommand.Details.Arguments)
	require.Equal(testInstance, testProjectRootConstant, firstCommand.Details.WorkingDirectory)

	require.Equal(testInstance, []string{
		"banner:Django Jet Calm Compatibility Test Suite",
		"line:Running 4 test classes...",
		"line:Running polls.tests.Passing...",
		"success:polls.tests.Passing - PASSED",
		"line:Running polls.tests.Failing...",
		"failure:polls.tests.Failing - FAILED",
		"line:   Error: AssertionError: theme missing",
		"line:Running polls.tests.Slow...",
		"timeout:polls.tests.Slow - TIMEOUT",
		"line:Running polls.tests.Broken...",
		"failure:polls.tests.Broken - ERROR: " + testInterpreterConstant + " manage.py test polls.tests.Broken --verbosity=1 could not be executed: exec: python3: not found",
		"rule",
		"line:Passed 1/4 test classes",
		"failure:Some tests failed. Check the output above for details.",
	}, reporter.lines)
}

func TestServiceReportsInDeclarationOrderWhenParallel(testInstance *testing.T) {
	configuration := classes.Configuration{
		TestClasses: []string{"polls.tests.First", "polls.tests.Second", "polls.tests.Third"},
		Timeout:     time.Second,
		Verbosity:   1,
		Parallel:    3,
	}
	executor := &scriptedExecutor{behaviors: map[string]behavior{
		"polls.tests.First":  {delay: 60 * time.Millisecond},
		"polls.tests.Second": {delay: 30 * time.Millisecond},
	}}
	reporter := &recordingReporter{}

	report, runError := newService(testInstance, configuration, executor, reporter).Run(context.Background(), classes.Options{WorkingDirectory: testProjectRootConstant})
	require.NoError(testInstance, runError)
	require.True(testInstance, report.AllPassed())
	require.Greater(testInstance, executor.peak, 1)

	var runningLines []string
	for _, line := range reporter.lines {
		if strings.HasPrefix(line, "line:Running polls.tests.") {
			runningLines = append(runningLines, line)
		}
	}
	require.Equal(testInstance, []string{
		"line:Running polls.tests.First...",
		"line:Running polls.tests.Second...",
		"line:Running polls.tests.Third...",
	}, runningLines)
	require.Equal(testInstance, "polls.tests.First", report.Results[0].TestClass)
}

type announcementRecordingExecutor struct {
	reporter        *recordingReporter
	lastLineAtStart []string
}

func (executor *announcementRecordingExecutor) Execute(_ context.Context, _ execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.reporter.mutex.Lock()
	defer executor.reporter.mutex.Unlock()
	executor.lastLineAtStart = append(executor.lastLineAtStart, executor.reporter.lines[len(executor.reporter.lines)-1])
	return execshell.ExecutionResult{}, nil
}

func TestServiceAnnouncesSequentialClassesBeforeRunning(testInstance *testing.T) {
	configuration := classes.Configuration{
		TestClasses: []string{"polls.tests.First", "polls.tests.Second"},
		Timeout:     time.Second,
		Verbosity:   1,
		Parallel:    1,
	}
	reporter := &recordingReporter{}
	executor := &announcementRecordingExecutor{reporter: reporter}
	service, serviceError := classes.NewService(configuration, classes.ServiceDependencies{
		Locator:  &stubLocator{},
		Executor: executor,
		Reporter: reporter,
	})
	require.NoError(testInstance, serviceError)

	report, runError := service.Run(context.Background(), classes.Options{WorkingDirectory: testProjectRootConstant})
	require.NoError(testInstance, runError)
	require.True(testInstance, report.AllPassed())
	require.Equal(testInstance, []string{
		"line:Running polls.tests.First...",
		"line:Running polls.tests.Second...",
	}, executor.lastLineAtStart)
}

func TestServiceLimitsConcurrency(testInstance *testing.T) {
	configuration := classes.Configuration{
		TestClasses: []string{"a.A", "a.B", "a.C", "a.D"},
		Timeout:     time.Second,
		Verbosity:   1,
		Parallel:    2,
	}
	executor := &scriptedExecutor{behaviors: map[string]behavior{
		"a.A": {delay: 20 * time.Millisecond},
		"a.B": {delay: 20 * time.Millisecond},
		"a.C": {delay: 20 * time.Millisecond},
		"a.D": {delay: 20 * time.Millisecond},
	}}

	_, runError := newService(testInstance, configuration, executor, &recordingReporter{}).Run(context.Background(), classes.Options{WorkingDirectory: testProjectRootConstant})
	require.NoError(testInstance, runError)
	require.LessOrEqual(testInstance, executor.peak, 2)
	require.Len(testInstance, executor.commands, 4)
}

func TestServiceRequestedClassesReplaceConfiguredList(testInstance *testing.T) {
	executor := &scriptedExecutor{}
	report, runError := newService(testInstance, classes.DefaultConfiguration(), executor, &recordingReporter{}).Run(context.Background(), classes.Options{
		WorkingDirectory: testProjectRootConstant,
		TestClasses:      []string{" polls.tests.JetThemeTests ", "polls.tests.JetThemeTests", "polls.tests.Extra"},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, report.Total)
	require.Equal(testInstance, "polls.tests.JetThemeTests", report.Results[0].TestClass)
	require.Equal(testInstance, "polls.tests.Extra", report.Results[1].TestClass)
}

func TestServiceStopsWhenProjectMissing(testInstance *testing.T) {
	markerError := project.MarkerMissingError{MarkerFile: "manage.py", WorkingDirectory: testProjectRootConstant}
	locator := &stubLocator{locateError: markerError}
	executor := &scriptedExecutor{}
	reporter := &recordingReporter{}
	service, serviceError := classes.NewService(classes.DefaultConfiguration(), classes.ServiceDependencies{
		Locator:  locator,
		Executor: executor,
		Reporter: reporter,
	})
	require.NoError(testInstance, serviceError)

	report, runError := service.Run(context.Background(), classes.Options{WorkingDirectory: testProjectRootConstant})
	require.ErrorIs(testInstance, runError, markerError)
	require.Zero(testInstance, report.Total)
	require.Empty(testInstance, executor.commands)
	require.Empty(testInstance, reporter.lines)
	require.Equal(testInstance, []project.LocateOptions{{}}, locator.options)
}

func TestServiceMarksRemainingClassesWhenCanceled(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	executor := &scriptedExecutor{}
	report, runError := newService(testInstance, classes.DefaultConfiguration(), executor, &recordingReporter{}).Run(executionContext, classes.Options{WorkingDirectory: testProjectRootConstant})
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, executor.commands)
	require.Equal(testInstance, 7, report.Total)
	for _, result := range report.Results {
		require.Equal(testInstance, classes.StatusError, result.Status)
	}
}

func TestConfigurationSanitize(testInstance *testing.T) {
	sanitized := classes.Configuration{TestClasses: []string{" ", "a.B", "a.B"}, Timeout: -time.Second, Verbosity: 9, Parallel: 0}.Sanitize()
	require.Equal(testInstance, classes.Configuration{
		TestClasses: []string{"a.B"},
		Timeout:     60 * time.Second,
		Verbosity:   1,
		Parallel:    1,
	}, sanitized)

	require.Len(testInstance, classes.Configuration{}.Sanitize().TestClasses, 7)
}
