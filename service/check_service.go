package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/version"
)

// CheckServiceImpl implements domain.CheckService: load, evaluate, drill down
type CheckServiceImpl struct {
	loader    domain.ReportLoader
	evaluator *ThresholdEvaluator
	drilldown domain.DrilldownService
}

// NewCheckService creates a check service. drilldown may be nil in file mode.
func NewCheckService(loader domain.ReportLoader, evaluator *ThresholdEvaluator, drilldown domain.DrilldownService) *CheckServiceImpl {
	return &CheckServiceImpl{
		loader:    loader,
		evaluator: evaluator,
		drilldown: drilldown,
	}
}

// Check runs the gate over the report at req.ReportPath
func (s *CheckServiceImpl) Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckResult, error) {
	start := time.Now()

	report, err := s.loader.Load(ctx, req.ReportPath)
	if err != nil {
		return nil, err
	}

	eval := s.evaluator.Evaluate(report)

	result := &domain.CheckResult{
		Mode:        req.Mode,
		Threshold:   eval.Threshold,
		Report:      report.Source,
		Encoding:    report.Encoding,
		Files:       eval.Files,
		Violations:  []domain.CheckViolation{},
		GeneratedAt: start.Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	switch req.Mode {
	case domain.CheckModeMethod:
		if s.drilldown == nil {
			return nil, domain.NewConfigError("method mode requires a drill-down tool", nil)
		}
		drill := s.drilldown.Drilldown(ctx, eval.Flagged)
		if err := ctx.Err(); err != nil {
			return nil, domain.NewAnalysisError("drill-down interrupted", err)
		}
		result.Methods = drill.Files
		for _, m := range drill.Violations() {
			result.Violations = append(result.Violations, domain.CheckViolation{
				Kind:       domain.ViolationKindMethod,
				File:       m.File,
				Method:     m.Name,
				Location:   m.Location,
				Complexity: float64(m.Complexity),
				Threshold:  eval.Threshold,
			})
		}
		for _, f := range drill.Failures() {
			result.Errors = append(result.Errors, DrilldownError(f))
		}
		result.Summary.MethodsOverLimit = len(drill.Violations())
		result.Summary.DrilldownFailures = len(drill.Failures())

	case domain.CheckModeFile, "":
		result.Mode = domain.CheckModeFile
		for _, f := range eval.Files {
			if f.Status != domain.FileStatusFail {
				continue
			}
			result.Violations = append(result.Violations, domain.CheckViolation{
				Kind:       domain.ViolationKindFile,
				File:       f.Path,
				Complexity: f.Complexity,
				Threshold:  eval.Threshold,
			})
		}

	default:
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown check mode '%s'", req.Mode), nil)
	}

	stats := ComputeComplexityStats(eval.Complexities())
	result.Summary.FilesInReport = report.Len()
	result.Summary.FilesEvaluated = eval.Count(domain.FileStatusPass) + eval.Count(domain.FileStatusFail)
	result.Summary.FilesSkipped = eval.Count(domain.FileStatusSkipped)
	result.Summary.FilesIgnored = eval.Count(domain.FileStatusIgnored)
	result.Summary.FilesOverLimit = len(eval.Flagged)
	result.Summary.TotalViolations = len(result.Violations)
	result.Summary.MaxComplexity = eval.MaxComplexity
	result.Summary.MeanComplexity = stats.Mean
	result.Summary.P90Complexity = stats.P90

	result.Passed = len(result.Violations) == 0
	result.ExitCode = domain.ExitCodePass
	if !result.Passed {
		result.ExitCode = domain.ExitCodeViolation
	}
	result.Duration = time.Since(start).Milliseconds()

	return result, nil
}
