package classes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/jetrun/internal/execshell"
	"github.com/temirov/jetrun/internal/project"
)

const (
	suiteBannerTitleConstant             = "Django Jet Calm Compatibility Test Suite"
	runningCountTemplateConstant         = "Running %d test classes..."
	runningClassTemplateConstant         = "Running %s..."
	classOutcomeTemplateConstant         = "%s - %s"
	classErrorOutcomeTemplateConstant    = "%s - %s: %s"
	standardErrorTemplateConstant        = "   Error: %s"
	timeoutErrorTemplateConstant         = "exceeded %s"
	canceledExitCodeConstant             = -1
	summaryTemplateConstant              = "Passed %d/%d test classes"
	allPassedMessageConstant             = "All tests passed!"
	someFailedMessageConstant            = "Some tests failed. Check the output above for details."
	djangoTestSubcommandConstant         = "test"
	verbosityFlagTemplateConstant        = "--verbosity=%d"
	locatorNotConfiguredMessageConstant  = "test class service project locator not configured"
	executorNotConfiguredMessageConstant = "test class service command executor not configured"
	classFinishedLogMessageConstant      = "test class finished"
	runFinishedLogMessageConstant        = "test class run finished"
	logFieldTestClassConstant            = "test_class"
	logFieldStatusConstant               = "status"
	logFieldExitCodeConstant             = "exit_code"
	logFieldDurationConstant             = "duration"
	logFieldPassedConstant               = "passed"
	logFieldTotalConstant                = "total"
	logFieldParallelConstant             = "parallel"
)

// ErrLocatorNotConfigured indicates the service was constructed without a project locator.
var ErrLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)

// ErrExecutorNotConfigured indicates the service was constructed without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ProjectLocator checks the project marker and resolves its interpreter.
type ProjectLocator interface {
	Locate(executionContext context.Context, workingDirectory string, options project.LocateOptions) (project.Project, error)
}

// Reporter renders user-facing progress.
type Reporter interface {
	Banner(title string)
	Rule()
	Line(message string)
	Success(message string)
	Failure(message string)
	Timeout(message string)
}

// ServiceDependencies enumerates collaborators required by the test class service.
type ServiceDependencies struct {
	Locator          ProjectLocator
	Executor         project.CommandExecutor
	Reporter         Reporter
	Logger           *zap.Logger
	ManagementScript string
	Clock            func() time.Time
}

// Options control a single run.
type Options struct {
	WorkingDirectory string
	// TestClasses replaces the configured classes when not empty.
	TestClasses   []string
	RunIdentifier string
}

// Service runs test classes and summarizes their outcomes.
type Service struct {
	configuration    Configuration
	locator          ProjectLocator
	executor         project.CommandExecutor
	reporter         Reporter
	logger           *zap.Logger
	managementScript string
	clock            func() time.Time
}

// NewService constructs a test class Service.
func NewService(configuration Configuration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Locator == nil {
		return nil, ErrLocatorNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}
	managementScript := strings.TrimSpace(dependencies.ManagementScript)
	if len(managementScript) == 0 {
		managementScript = project.DefaultConfiguration().MarkerFile
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		configuration:    configuration.Sanitize(),
		locator:          dependencies.Locator,
		executor:         dependencies.Executor,
		reporter:         reporter,
		logger:           logger,
		managementScript: managementScript,
		clock:            clock,
	}, nil
}

// Run executes each selected test class under its own timeout. Classes run concurrently up to the configured
// parallelism, while results are reported in declaration order. A sequential run announces each class before
// it starts; a parallel run announces it together with its outcome. The returned error is non-nil only when the
// project cannot be located or the run was canceled; failing classes are reflected in the Report.
func (service *Service) Run(executionContext context.Context, options Options) (Report, error) {
	located, locateError := service.locator.Locate(executionContext, options.WorkingDirectory, project.LocateOptions{})
	if locateError != nil {
		return Report{}, locateError
	}

	testClasses := service.configuration.TestClasses
	if requested := uniqueTestClasses(options.TestClasses); len(requested) > 0 {
		testClasses = requested
	}

	service.reporter.Banner(suiteBannerTitleConstant)
	service.reporter.Line(fmt.Sprintf(runningCountTemplateConstant, len(testClasses)))

	startedAt := service.clock()
	results := make([]Result, len(testClasses))
	sequential := service.configuration.Parallel == 1
	emitter := newOrderedEmitter(len(testClasses), func(index int) {
		if !sequential {
			service.announceTestClass(results[index].TestClass)
		}
		service.reportOutcome(results[index])
	})

	var group errgroup.Group
	group.SetLimit(service.configuration.Parallel)
	for classIndex, testClass := range testClasses {
		group.Go(func() error {
			if sequential {
				service.announceTestClass(testClass)
			}
			results[classIndex] = service.runTestClass(executionContext, located, testClass)
			emitter.complete(classIndex)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{
		RunIdentifier: options.RunIdentifier,
		StartedAt:     startedAt,
		Duration:      service.clock().Sub(startedAt),
		Total:         len(results),
		Results:       results,
	}
	for _, result := range results {
		if result.Status == StatusPassed {
			report.Passed++
		}
	}

	service.reporter.Rule()
	service.reporter.Line(fmt.Sprintf(summaryTemplateConstant, report.Passed, report.Total))
	if report.AllPassed() {
		service.reporter.Success(allPassedMessageConstant)
	} else {
		service.reporter.Failure(someFailedMessageConstant)
	}

	service.logger.Info(
		runFinishedLogMessageConstant,
		zap.Int(logFieldPassedConstant, report.Passed),
		zap.Int(logFieldTotalConstant, report.Total),
		zap.Int(logFieldParallelConstant, service.configuration.Parallel),
		zap.Duration(logFieldDurationConstant, report.Duration),
	)

	if contextError := executionContext.Err(); contextError != nil {
		return report, contextError
	}
	return report, nil
}

func (service *Service) runTestClass(executionContext context.Context, located project.Project, testClass string) Result {
	startedAt := service.clock()
	result := Result{TestClass: testClass}

	if contextError := executionContext.Err(); contextError != nil {
		result.Status = StatusError
		result.ExitCode = canceledExitCodeConstant
		result.Error = contextError.Error()
		return result
	}

	classContext, cancelClass := context.WithTimeout(executionContext, service.configuration.Timeout)
	defer cancelClass()

	command := located.Command(
		located.RootDirectory,
		service.managementScript,
		djangoTestSubcommandConstant,
		testClass,
		fmt.Sprintf(verbosityFlagTemplateConstant, service.configuration.Verbosity),
	)
	executionResult, executionError := service.executor.Execute(classContext, command)
	result.Duration = service.clock().Sub(startedAt)
	result.ExitCode = executionResult.ExitCode

	var failedError execshell.CommandFailedError
	switch {
	case executionError == nil:
		result.Status = StatusPassed
	case errors.Is(classContext.Err(), context.DeadlineExceeded) && executionContext.Err() == nil:
		result.Status = StatusTimeout
		result.Error = fmt.Sprintf(timeoutErrorTemplateConstant, service.configuration.Timeout)
	case errors.As(executionError, &failedError) && executionContext.Err() == nil:
		result.Status = StatusFailed
		result.StandardError = strings.TrimSpace(failedError.Result.StandardError)
	default:
		result.Status = StatusError
		result.Error = executionError.Error()
	}

	service.logger.Debug(
		classFinishedLogMessageConstant,
		zap.String(logFieldTestClassConstant, testClass),
		zap.String(logFieldStatusConstant, string(result.Status)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.Duration(logFieldDurationConstant, result.Duration),
	)
	return result
}

func (service *Service) announceTestClass(testClass string) {
	service.reporter.Line(fmt.Sprintf(runningClassTemplateConstant, testClass))
}

func (service *Service) reportOutcome(result Result) {
	switch result.Status {
	case StatusPassed:
		service.reporter.Success(fmt.Sprintf(classOutcomeTemplateConstant, result.TestClass, result.Status))
	case StatusFailed:
		service.reporter.Failure(fmt.Sprintf(classOutcomeTemplateConstant, result.TestClass, result.Status))
		if len(result.StandardError) > 0 {
			service.reporter.Line(fmt.Sprintf(standardErrorTemplateConstant, result.StandardError))
		}
	case StatusTimeout:
		service.reporter.Timeout(fmt.Sprintf(classOutcomeTemplateConstant, result.TestClass, result.Status))
	default:
		service.reporter.Failure(fmt.Sprintf(classErrorOutcomeTemplateConstant, result.TestClass, result.Status, result.Error))
	}
}

// orderedEmitter releases completions in index order, holding back any that finish ahead of an earlier index.
type orderedEmitter struct {
	mutex     sync.Mutex
	completed []bool
	next      int
	emit      func(index int)
}

func newOrderedEmitter(size int, emit func(index int)) *orderedEmitter {
	return &orderedEmitter{completed: make([]bool, size), emit: emit}
}

func (emitter *orderedEmitter) complete(index int) {
	emitter.mutex.Lock()
	defer emitter.mutex.Unlock()

	emitter.completed[index] = true
	for emitter.next < len(emitter.completed) && emitter.completed[emitter.next] {
		emitter.emit(emitter.next)
		emitter.next++
	}
}

type silentReporter struct{}

func (silentReporter) Banner(string)  {}
func (silentReporter) Rule()          {}
func (silentReporter) Line(string)    {}
func (silentReporter) Success(string) {}
func (silentReporter) Failure(string) {}
func (silentReporter) Timeout(string) {}
