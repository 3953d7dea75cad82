package classes

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	reportDirectoryPermissionsConstant = 0o755
	reportFilePermissionsConstant      = 0o644
	reportEncodeErrorTemplateConstant  = "unable to encode test class report: %w"
	reportWriteErrorTemplateConstant   = "unable to write test class report %s: %w"
)

// Status classifies the outcome of one test class.
type Status string

// Test class outcomes.
const (
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusTimeout Status = "TIMEOUT"
	StatusError   Status = "ERROR"
)

// Result records the outcome of a single test class run.
type Result struct {
	TestClass     string
	Status        Status
	ExitCode      int
	Duration      time.Duration
	StandardError string
	Error         string
}

// Report summarizes a run across every selected test class.
type Report struct {
	RunIdentifier string
	StartedAt     time.Time
	Duration      time.Duration
	Passed        int
	Total         int
	Results       []Result
}

type resultDocument struct {
	TestClass     string `yaml:"test_class"`
	Status        Status `yaml:"status"`
	ExitCode      int    `yaml:"exit_code"`
	Duration      string `yaml:"duration"`
	StandardError string `yaml:"standard_error,omitempty"`
	Error         string `yaml:"error,omitempty"`
}

type reportDocument struct {
	RunIdentifier string           `yaml:"run_id,omitempty"`
	StartedAt     string           `yaml:"started_at"`
	Duration      string           `yaml:"duration"`
	Passed        int              `yaml:"passed"`
	Total         int              `yaml:"total"`
	Results       []resultDocument `yaml:"results"`
}

// AllPassed reports whether every test class passed.
func (report Report) AllPassed() bool {
	return report.Total > 0 && report.Passed == report.Total
}

// MarshalYAML renders durations and timestamps as text.
func (report Report) MarshalYAML() (any, error) {
	document := reportDocument{
		RunIdentifier: report.RunIdentifier,
		StartedAt:     report.StartedAt.UTC().Format(time.RFC3339),
		Duration:      report.Duration.Round(time.Millisecond).String(),
		Passed:        report.Passed,
		Total:         report.Total,
		Results:       make([]resultDocument, 0, len(report.Results)),
	}
	for _, result := range report.Results {
		document.Results = append(document.Results, resultDocument{
			TestClass:     result.TestClass,
			Status:        result.Status,
			ExitCode:      result.ExitCode,
			Duration:      result.Duration.Round(time.Millisecond).String(),
			StandardError: result.StandardError,
			Error:         result.Error,
		})
	}
	return document, nil
}

// WriteReport stores the report as YAML at reportPath, creating parent directories as needed.
func WriteReport(reportPath string, report Report) error {
	encoded, encodeError := yaml.Marshal(report)
	if encodeError != nil {
		return fmt.Errorf(reportEncodeErrorTemplateConstant, encodeError)
	}
	if directoryError := os.MkdirAll(filepath.Dir(reportPath), reportDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, directoryError)
	}
	if writeError := os.WriteFile(reportPath, encoded, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, writeError)
	}
	return nil
}
