package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func loadReport(t *testing.T, layout domain.ReportLayout, detect bool, content string) (*domain.MetricsReport, error) {
	t.Helper()
	loader, err := NewReportLoader(layout, detect)
	require.NoError(t, err)
	return loader.Load(context.Background(), testutil.WriteReport(t, []byte(content)))
}

func entryPaths(r *domain.MetricsReport) []string {
	paths := make([]string, 0, r.Len())
	for _, e := range r.Entries {
		paths = append(paths, e.Path)
	}
	return paths
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de domain.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %T: %v", err, err)
	assert.Equal(t, code, de.Code)
}

func TestReportLoader_FlatKeepsDocumentOrder(t *testing.T) {
	report, err := loadReport(t, domain.LayoutFlat, false, `{
		"zeta.cs": {"cyclomatic_complexity": 5},
		"alpha.cs": {"cyclomatic_complexity": 15, "halstead_volume": 120.5},
		"mid.cs": {}
	}`)
	require.NoError(t, err)

	assert.Equal(t, domain.LayoutFlat, report.Layout)
	assert.Equal(t, "UTF-8", report.Encoding)
	assert.Equal(t, []string{"zeta.cs", "alpha.cs", "mid.cs"}, entryPaths(report))

	alpha := report.Entries[1].Metrics
	assert.Equal(t, 15.0, alpha.CyclomaticComplexity())
	assert.Equal(t, 120.5, alpha[domain.MetricHalsteadVolume])

	assert.True(t, report.Entries[2].IsEmpty())
}

func TestReportLoader_Nested(t *testing.T) {
	report, err := loadReport(t, domain.LayoutNested, false, `{
		"generated": "2024-05-01",
		"files": {"x.cs": {"cyclomatic_complexity": 3}, "y.cs": null},
		"totals": {"files": 2}
	}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.cs", "y.cs"}, entryPaths(report))
	assert.True(t, report.Entries[1].IsEmpty())
}

func TestReportLoader_DuplicateKeyKeepsFirstPositionAndLastValue(t *testing.T) {
	report, err := loadReport(t, domain.LayoutFlat, false, `{
		"a.cs": {"cyclomatic_complexity": 1},
		"b.cs": {"cyclomatic_complexity": 2},
		"a.cs": {"cyclomatic_complexity": 30}
	}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cs", "b.cs"}, entryPaths(report))
	assert.Equal(t, 30.0, report.Entries[0].Metrics.CyclomaticComplexity())
}

func TestReportLoader_NonNumericFieldsKeepRecordNonEmpty(t *testing.T) {
	report, err := loadReport(t, domain.LayoutFlat, false, `{"a.cs": {"language": "csharp"}}`)
	require.NoError(t, err)

	entry := report.Entries[0]
	assert.False(t, entry.IsEmpty())
	assert.Equal(t, 0.0, entry.Metrics.CyclomaticComplexity())
}

func TestReportLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		layout  domain.ReportLayout
		content string
		code    string
	}{
		{"invalid json", domain.LayoutFlat, `{"a.cs": `, domain.ErrCodeParseError},
		{"top level array", domain.LayoutFlat, `[1, 2]`, domain.ErrCodeParseError},
		{"record is a number", domain.LayoutFlat, `{"a.cs": 4}`, domain.ErrCodeParseError},
		{"complexity is a string", domain.LayoutFlat, `{"a.cs": {"cyclomatic_complexity": "high"}}`, domain.ErrCodeParseError},
		{"nested without files", domain.LayoutNested, `{"a.cs": {"cyclomatic_complexity": 4}}`, domain.ErrCodeParseError},
		{"nested files is a list", domain.LayoutNested, `{"files": []}`, domain.ErrCodeParseError},
		{"nested report read as flat", domain.LayoutFlat, `{"files": {"x.cs": {"cyclomatic_complexity": 30}}}`, domain.ErrCodeParseError},
		{"metric is an array", domain.LayoutNested, `{"files": {"x.cs": {"lines": [1, 2]}}}`, domain.ErrCodeParseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadReport(t, tt.layout, false, tt.content)
			require.Error(t, err)
			assertDomainCode(t, err, tt.code)
		})
	}
}

func TestReportLoader_MissingFile(t *testing.T) {
	loader, err := NewReportLoader(domain.LayoutFlat, false)
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), filepath.Join(t.TempDir(), "report.json"))
	require.Error(t, err)
	assertDomainCode(t, err, domain.ErrCodeFileNotFound)
}

func TestReportLoader_DetectsUTF16(t *testing.T) {
	content := `{"files": {"Services/Café.cs": {"cyclomatic_complexity": 12}}}`
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)
	path := testutil.WriteReport(t, encoded)

	loader, err := NewReportLoader(domain.LayoutNested, true)
	require.NoError(t, err)
	report, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "UTF-16LE", report.Encoding)
	assert.Equal(t, []string{"Services/Café.cs"}, entryPaths(report))

	// Without detection the same bytes are not JSON
	plain, err := NewReportLoader(domain.LayoutNested, false)
	require.NoError(t, err)
	_, err = plain.Load(context.Background(), path)
	assertDomainCode(t, err, domain.ErrCodeParseError)
}

func TestReportLoader_StripsUTF8BOM(t *testing.T) {
	path := testutil.WriteReport(t, append([]byte{0xEF, 0xBB, 0xBF}, `{"a.cs": {"cyclomatic_complexity": 1}}`...))

	loader, err := NewReportLoader(domain.LayoutFlat, false)
	require.NoError(t, err)
	report, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Len())
}

func TestReportLoader_UnknownLayout(t *testing.T) {
	_, err := NewReportLoader("tree", false)
	require.Error(t, err)
	assertDomainCode(t, err, domain.ErrCodeConfigError)
}

func TestReportLoader_CancelledContext(t *testing.T) {
	loader, err := NewReportLoader(domain.LayoutFlat, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx, "report.json")
	assert.ErrorIs(t, err, context.Canceled)
}
