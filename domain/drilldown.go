package domain

import "context"

// MethodComplexity is one per-method row reported by the external complexity tool
type MethodComplexity struct {
	File       string `json:"file" yaml:"file"`
	Name       string `json:"name" yaml:"name"`
	Location   string `json:"location" yaml:"location"`
	StartLine  int    `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine    int    `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	Complexity int    `json:"complexity" yaml:"complexity"`
}

// ComplexityTool runs the external per-method complexity analyzer on one file
// and returns its raw standard output
type ComplexityTool interface {
	Run(ctx context.Context, file string) (string, error)
}

// FileDrilldown is the per-method breakdown of one flagged file
type FileDrilldown struct {
	File    string             `json:"file" yaml:"file"`
	Methods []MethodComplexity `json:"methods,omitempty" yaml:"methods,omitempty"`

	// Violations are the methods above the threshold
	Violations []MethodComplexity `json:"violations,omitempty" yaml:"violations,omitempty"`

	// Err is set when the tool could not be run or its output could not be read.
	// It never fails the gate by itself.
	Err error `json:"-" yaml:"-"`
}

// DrilldownResult collects the breakdowns of every flagged file in document order
type DrilldownResult struct {
	Files []FileDrilldown
}

// Violations returns every violating method across all files
func (r *DrilldownResult) Violations() []MethodComplexity {
	var out []MethodComplexity
	for _, f := range r.Files {
		out = append(out, f.Violations...)
	}
	return out
}

// Failures returns the files whose drill-down could not complete
func (r *DrilldownResult) Failures() []FileDrilldown {
	var out []FileDrilldown
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// DrilldownService breaks flagged files down per method
type DrilldownService interface {
	Drilldown(ctx context.Context, files []string) *DrilldownResult
}
