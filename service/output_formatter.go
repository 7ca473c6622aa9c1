package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements domain.CheckOutputFormatter
type OutputFormatterImpl struct {
	verbose bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(verbose bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{verbose: verbose}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// FormatComplexity prints a metric value the way it appeared in the report: 15, 15.5
func FormatComplexity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write writes the check result in the specified format
func (f *OutputFormatterImpl) Write(result *domain.CheckResult, format domain.OutputFormat, writer io.Writer) error {
	var err error
	switch format {
	case domain.OutputFormatText:
		err = f.writeText(result, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, result)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError("failed to write check result", err)
	}
	return nil
}

// writeText prints one line per evaluated file in file mode, or one line per
// violating method in method mode, then the success line when the gate passed
func (f *OutputFormatterImpl) writeText(result *domain.CheckResult, w io.Writer) error {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	if result.Mode == domain.CheckModeMethod {
		for _, v := range result.Violations {
			if v.Kind != domain.ViolationKindMethod {
				continue
			}
			if _, err := fail.Fprintf(w, "Method %s in %s doesn't satisfy cyclomatic complexity: %s\n",
				v.Method, v.File, FormatComplexity(v.Complexity)); err != nil {
				return err
			}
		}
	} else {
		for _, file := range result.Files {
			var err error
			switch file.Status {
			case domain.FileStatusFail:
				_, err = fail.Fprintf(w, "File %s doesn't satisfy cyclomatic complexity: %s\n",
					file.Path, FormatComplexity(file.Complexity))
			case domain.FileStatusPass:
				_, err = pass.Fprintf(w, "File %s satisfies cyclomatic complexity: %s\n",
					file.Path, FormatComplexity(file.Complexity))
			}
			if err != nil {
				return err
			}
		}
	}

	if result.Passed {
		if _, err := pass.Fprintf(w, constants.SuccessMessageFormat+"\n", result.Threshold); err != nil {
			return err
		}
	}

	if f.verbose {
		return f.writeSummaryTable(result, w)
	}
	return nil
}

// writeSummaryTable renders the aggregate statistics
func (f *OutputFormatterImpl) writeSummaryTable(result *domain.CheckResult, w io.Writer) error {
	s := result.Summary

	fmt.Fprintln(w)
	color.New(color.Bold).Fprintln(w, "Summary")

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"Metric", "Value"})

	rows := [][]string{
		{"Mode", string(result.Mode)},
		{"Threshold", strconv.Itoa(result.Threshold)},
		{"Files in report", strconv.Itoa(s.FilesInReport)},
		{"Files evaluated", strconv.Itoa(s.FilesEvaluated)},
		{"Files skipped", strconv.Itoa(s.FilesSkipped)},
		{"Files ignored", strconv.Itoa(s.FilesIgnored)},
		{"Files over limit", strconv.Itoa(s.FilesOverLimit)},
	}
	if result.Mode == domain.CheckModeMethod {
		rows = append(rows,
			[]string{"Methods over limit", strconv.Itoa(s.MethodsOverLimit)},
			[]string{"Drill-down failures", strconv.Itoa(s.DrilldownFailures)},
		)
	}
	rows = append(rows,
		[]string{"Max complexity", FormatComplexity(s.MaxComplexity)},
		[]string{"Mean complexity", strconv.FormatFloat(s.MeanComplexity, 'f', 2, 64)},
		[]string{"P90 complexity", FormatComplexity(s.P90Complexity)},
	)
	if result.Encoding != "" {
		rows = append(rows, []string{"Encoding", result.Encoding})
	}

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
