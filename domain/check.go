package domain

import (
	"context"
	"io"
)

// CheckMode selects what level of detail decides the exit code
type CheckMode string

const (
	// CheckModeFile fails the gate when any file exceeds the threshold
	CheckModeFile CheckMode = "file"

	// CheckModeMethod drills into failing files and fails only when a method exceeds the threshold
	CheckModeMethod CheckMode = "method"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ViolationKind tells whether a violation was raised for a whole file or a single method
type ViolationKind string

const (
	ViolationKindFile   ViolationKind = "file"
	ViolationKindMethod ViolationKind = "method"
)

// Exit codes of the check command
const (
	ExitCodePass      = 0
	ExitCodeViolation = 1
	ExitCodeError     = 2
)

// CheckRequest represents a request to gate a report
type CheckRequest struct {
	ReportPath string
	Mode       CheckMode
	Threshold  int
}

// CheckResult represents the result of a quality check
type CheckResult struct {
	Passed      bool             `json:"passed" yaml:"passed"`
	ExitCode    int              `json:"exit_code" yaml:"exit_code"`
	Mode        CheckMode        `json:"mode" yaml:"mode"`
	Threshold   int              `json:"threshold" yaml:"threshold"`
	Report      string           `json:"report" yaml:"report"`
	Encoding    string           `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Files       []FileResult     `json:"files" yaml:"files"`
	Methods     []FileDrilldown  `json:"methods,omitempty" yaml:"methods,omitempty"`
	Violations  []CheckViolation `json:"violations" yaml:"violations"`
	Errors      []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
	Summary     CheckSummary     `json:"summary" yaml:"summary"`
	Duration    int64            `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string           `json:"generated_at" yaml:"generated_at"`
	Version     string           `json:"version" yaml:"version"`
}

// CheckViolation represents a single threshold violation
type CheckViolation struct {
	Kind       ViolationKind `json:"kind" yaml:"kind"`
	File       string        `json:"file" yaml:"file"`
	Method     string        `json:"method,omitempty" yaml:"method,omitempty"`
	Location   string        `json:"location,omitempty" yaml:"location,omitempty"`
	Complexity float64       `json:"complexity" yaml:"complexity"`
	Threshold  int           `json:"threshold" yaml:"threshold"`
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	FilesInReport     int     `json:"files_in_report" yaml:"files_in_report"`
	FilesEvaluated    int     `json:"files_evaluated" yaml:"files_evaluated"`
	FilesSkipped      int     `json:"files_skipped" yaml:"files_skipped"`
	FilesIgnored      int     `json:"files_ignored" yaml:"files_ignored"`
	FilesOverLimit    int     `json:"files_over_limit" yaml:"files_over_limit"`
	MethodsOverLimit  int     `json:"methods_over_limit" yaml:"methods_over_limit"`
	DrilldownFailures int     `json:"drilldown_failures" yaml:"drilldown_failures"`
	TotalViolations   int     `json:"total_violations" yaml:"total_violations"`
	MaxComplexity     float64 `json:"max_complexity" yaml:"max_complexity"`
	MeanComplexity    float64 `json:"mean_complexity" yaml:"mean_complexity"`
	P90Complexity     float64 `json:"p90_complexity" yaml:"p90_complexity"`
}

// CheckOutputFormatter renders a check result
type CheckOutputFormatter interface {
	Write(result *CheckResult, format OutputFormat, writer io.Writer) error
}

// CheckService runs the whole gate over a report
type CheckService interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// ProgressManager hands out progress tasks for long running steps
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
