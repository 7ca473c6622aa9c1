package service

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ludo-technologies/ccgate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fileModeResult() *domain.CheckResult {
	return &domain.CheckResult{
		Passed:    false,
		ExitCode:  domain.ExitCodeViolation,
		Mode:      domain.CheckModeFile,
		Threshold: 10,
		Report:    "report.json",
		Files: []domain.FileResult{
			{Path: "fileA.cs", Status: domain.FileStatusPass, Complexity: 5},
			{Path: "fileB.cs", Status: domain.FileStatusFail, Complexity: 15},
			{Path: "empty.cs", Status: domain.FileStatusSkipped},
			{Path: "obj/Gen.cs", Status: domain.FileStatusIgnored},
			{Path: "fileC.cs", Status: domain.FileStatusPass, Complexity: 7.5},
		},
		Violations: []domain.CheckViolation{
			{Kind: domain.ViolationKindFile, File: "fileB.cs", Complexity: 15, Threshold: 10},
		},
		Summary: domain.CheckSummary{FilesInReport: 5, FilesEvaluated: 3, FilesSkipped: 1, FilesIgnored: 1, FilesOverLimit: 1, TotalViolations: 1, MaxComplexity: 15, MeanComplexity: 9.1666, P90Complexity: 15},
	}
}

func TestOutputFormatter_TextFileMode(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(fileModeResult(), domain.OutputFormatText, &buf))

	assert.Equal(t, "File fileA.cs satisfies cyclomatic complexity: 5\n"+
		"File fileB.cs doesn't satisfy cyclomatic complexity: 15\n"+
		"File fileC.cs satisfies cyclomatic complexity: 7.5\n", buf.String())
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	disableColor(t)
	result := &domain.CheckResult{
		Passed:     true,
		Mode:       domain.CheckModeFile,
		Threshold:  10,
		Files:      []domain.FileResult{{Path: "x.cs", Status: domain.FileStatusPass, Complexity: 3}},
		Violations: []domain.CheckViolation{},
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(result, domain.OutputFormatText, &buf))
	assert.Equal(t, "File x.cs satisfies cyclomatic complexity: 3\nAll CC <=10! Success!\n", buf.String())
}

func TestOutputFormatter_TextMethodMode(t *testing.T) {
	disableColor(t)
	result := &domain.CheckResult{
		Mode:      domain.CheckModeMethod,
		Threshold: 10,
		Files: []domain.FileResult{
			{Path: "Services/OrderService.cs", Status: domain.FileStatusFail, Complexity: 22},
		},
		Violations: []domain.CheckViolation{
			{Kind: domain.ViolationKindMethod, File: "Services/OrderService.cs", Method: "OrderService::ApplyDiscounts", Complexity: 14, Threshold: 10},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(result, domain.OutputFormatText, &buf))
	assert.Equal(t, "Method OrderService::ApplyDiscounts in Services/OrderService.cs doesn't satisfy cyclomatic complexity: 14\n", buf.String())
}

func TestOutputFormatter_TextMethodModeSuccess(t *testing.T) {
	disableColor(t)
	result := &domain.CheckResult{
		Passed:    true,
		Mode:      domain.CheckModeMethod,
		Threshold: 10,
		Files:     []domain.FileResult{{Path: "a.cs", Status: domain.FileStatusFail, Complexity: 22}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(result, domain.OutputFormatText, &buf))
	assert.Equal(t, "All CC <=10! Success!\n", buf.String())
}

func TestOutputFormatter_VerboseSummary(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(true).Write(fileModeResult(), domain.OutputFormatText, &buf))

	out := buf.String()
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Files evaluated")
	assert.Contains(t, out, "9.17")
	assert.NotContains(t, out, "Drill-down failures")
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(fileModeResult(), domain.OutputFormatJSON, &buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["passed"])
	assert.Equal(t, float64(1), decoded["exit_code"])
	assert.Len(t, decoded["files"], 5)
	assert.Len(t, decoded["violations"], 1)
}

func TestOutputFormatter_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false).Write(fileModeResult(), domain.OutputFormatYAML, &buf))

	var decoded domain.CheckResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, domain.CheckModeFile, decoded.Mode)
	require.Len(t, decoded.Violations, 1)
	assert.Equal(t, "fileB.cs", decoded.Violations[0].File)
}

func TestOutputFormatter_UnsupportedFormat(t *testing.T) {
	err := NewOutputFormatter(false).Write(fileModeResult(), "html", &bytes.Buffer{})
	require.Error(t, err)
	assertDomainCode(t, err, domain.ErrCodeUnsupportedFormat)
}

func TestFormatComplexity(t *testing.T) {
	assert.Equal(t, "15", FormatComplexity(15))
	assert.Equal(t, "7.5", FormatComplexity(7.5))
	assert.Equal(t, "0", FormatComplexity(0))
}

func TestComputeComplexityStats(t *testing.T) {
	assert.Equal(t, ComplexityStats{}, ComputeComplexityStats(nil))

	stats := ComputeComplexityStats([]float64{15, 5, 10, 2})
	assert.Equal(t, 15.0, stats.Max)
	assert.InDelta(t, 8.0, stats.Mean, 1e-9)
	assert.Equal(t, 15.0, stats.P90)

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, 9.0, ComputeComplexityStats(values).P90)
}
