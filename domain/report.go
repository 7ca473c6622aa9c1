package domain

import "context"

// Metric keys recognised in a report record
const (
	MetricCyclomaticComplexity = "cyclomatic_complexity"
	MetricHalsteadVolume       = "halstead_volume"
	MetricHalsteadDifficulty   = "halstead_difficulty"
	MetricHalsteadEffort       = "halstead_effort"
	MetricHalsteadTime         = "halstead_timerequired"
)

// DefaultThreshold is the cyclomatic complexity above which a file or method fails
const DefaultThreshold = 10

// ReportLayout describes where the file mapping lives inside report.json
type ReportLayout string

const (
	// LayoutFlat: the document is the {file: metrics} mapping itself
	LayoutFlat ReportLayout = "flat"

	// LayoutNested: the mapping lives under the "files" key
	LayoutNested ReportLayout = "nested"
)

// NestedFilesKey is the key holding the file mapping in the nested layout
const NestedFilesKey = "files"

// FileMetrics maps metric names to numeric values for a single file
type FileMetrics map[string]float64

// CyclomaticComplexity returns the file's cyclomatic complexity, 0 when absent
func (m FileMetrics) CyclomaticComplexity() float64 {
	return m[MetricCyclomaticComplexity]
}

// IsEmpty reports whether the record carries no metrics at all
func (m FileMetrics) IsEmpty() bool {
	return len(m) == 0
}

// Halstead extracts the Halstead values carried by the record, nil when none are present
func (m FileMetrics) Halstead() *HalsteadMetrics {
	keys := []string{MetricHalsteadVolume, MetricHalsteadDifficulty, MetricHalsteadEffort, MetricHalsteadTime}
	found := false
	for _, k := range keys {
		if _, ok := m[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	return &HalsteadMetrics{
		Volume:       m[MetricHalsteadVolume],
		Difficulty:   m[MetricHalsteadDifficulty],
		Effort:       m[MetricHalsteadEffort],
		TimeRequired: m[MetricHalsteadTime],
	}
}

// HalsteadMetrics holds the Halstead values read from the report. They are informational only.
type HalsteadMetrics struct {
	Volume       float64 `json:"volume" yaml:"volume"`
	Difficulty   float64 `json:"difficulty" yaml:"difficulty"`
	Effort       float64 `json:"effort" yaml:"effort"`
	TimeRequired float64 `json:"time_required" yaml:"time_required"`
}

// FileEntry is one file of the report together with its metrics
type FileEntry struct {
	Path    string
	Metrics FileMetrics

	// Fields counts the keys of the raw record, numeric or not
	Fields int
}

// IsEmpty reports whether the raw record was null or had no keys
func (e FileEntry) IsEmpty() bool {
	return e.Fields == 0
}

// MetricsReport is the parsed report, entries kept in document order
type MetricsReport struct {
	Source  string
	Layout  ReportLayout
	Entries []FileEntry

	// Encoding is the detected or assumed source encoding
	Encoding string
}

// Len returns the number of file entries
func (r *MetricsReport) Len() int {
	return len(r.Entries)
}

// ReportLoader reads a report from disk
type ReportLoader interface {
	Load(ctx context.Context, path string) (*MetricsReport, error)
}

// FileStatus is the outcome of evaluating one report entry
type FileStatus string

const (
	FileStatusPass    FileStatus = "pass"
	FileStatusFail    FileStatus = "fail"
	FileStatusSkipped FileStatus = "skipped"
	FileStatusIgnored FileStatus = "ignored"
)

// FileResult is the evaluation of one report entry
type FileResult struct {
	Path       string           `json:"path" yaml:"path"`
	Status     FileStatus       `json:"status" yaml:"status"`
	Complexity float64          `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	Halstead   *HalsteadMetrics `json:"halstead,omitempty" yaml:"halstead,omitempty"`
}

// Evaluation is the outcome of comparing every report entry with the threshold
type Evaluation struct {
	Threshold int
	Files     []FileResult

	// Flagged lists files above the threshold, in document order
	Flagged []string

	// MaxComplexity is the highest value seen across evaluated files
	MaxComplexity float64
}

// Failed reports whether any file exceeded the threshold
func (e *Evaluation) Failed() bool {
	return len(e.Flagged) > 0
}

// Complexities returns the complexity of every evaluated (pass or fail) file
func (e *Evaluation) Complexities() []float64 {
	values := make([]float64, 0, len(e.Files))
	for _, f := range e.Files {
		if f.Status == FileStatusPass || f.Status == FileStatusFail {
			values = append(values, f.Complexity)
		}
	}
	return values
}

// Count returns the number of file results with the given status
func (e *Evaluation) Count(status FileStatus) int {
	n := 0
	for _, f := range e.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}
