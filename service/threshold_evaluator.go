package service

import (
	"github.com/ludo-technologies/ccgate/domain"
)

// ThresholdEvaluator compares each report entry's cyclomatic complexity with the threshold
type ThresholdEvaluator struct {
	threshold int
	filter    *IgnoreFilter
}

// NewThresholdEvaluator creates an evaluator. filter may be nil.
func NewThresholdEvaluator(threshold int, filter *IgnoreFilter) *ThresholdEvaluator {
	return &ThresholdEvaluator{
		threshold: threshold,
		filter:    filter,
	}
}

// Evaluate walks the report in document order. Ignored and empty entries are
// recorded but never pass or fail; a missing complexity counts as 0.
func (e *ThresholdEvaluator) Evaluate(report *domain.MetricsReport) *domain.Evaluation {
	eval := &domain.Evaluation{
		Threshold: e.threshold,
		Files:     make([]domain.FileResult, 0, report.Len()),
		Flagged:   []string{},
	}

	seen := false
	for _, entry := range report.Entries {
		result := domain.FileResult{Path: entry.Path}

		switch {
		case e.filter.Match(entry.Path):
			result.Status = domain.FileStatusIgnored
		case entry.IsEmpty():
			result.Status = domain.FileStatusSkipped
		default:
			cc := entry.Metrics.CyclomaticComplexity()
			result.Complexity = cc
			result.Halstead = entry.Metrics.Halstead()
			result.Status = domain.FileStatusPass

			if e.exceeds(cc) {
				result.Status = domain.FileStatusFail
				eval.Flagged = append(eval.Flagged, entry.Path)
			}

			if !seen || cc > eval.MaxComplexity {
				eval.MaxComplexity = cc
				seen = true
			}
		}

		eval.Files = append(eval.Files, result)
	}

	return eval
}

func (e *ThresholdEvaluator) exceeds(cc float64) bool {
	return cc > float64(e.threshold)
}
