// Package lizard runs the lizard complexity analyzer and reads its per-method table
package lizard

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/ccgate/domain"
)

// MinFields is the number of columns a method row must have:
// NLOC CCN token PARAM length location
const MinFields = 6

// MethodMarker separates the method name from its line range in the location column
const MethodMarker = "@"

// dataRow matches rows that start with a row count, e.g. "      12      3     40      1     14 Foo@1-14@a.cs"
var dataRow = regexp.MustCompile(`^\s*\d+`)

// lineRange matches the "start-end" part of a location
var lineRange = regexp.MustCompile(`^(\d+)-(\d+)$`)

// WarningsBanner opens lizard's trailing warnings table, which repeats the
// rows of methods above lizard's own limit
const WarningsBanner = "!!!! Warnings"

// maxLineSize bounds a single output row
const maxLineSize = 1024 * 1024

// ParseOutput extracts every method row from lizard's tabular output.
// Rows that are not data rows, have too few columns, lack the method marker
// or carry a non-numeric complexity are skipped. Parsing stops at the warnings
// table and a location seen twice is kept once.
func ParseOutput(file, output string) ([]domain.MethodComplexity, error) {
	var methods []domain.MethodComplexity
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), WarningsBanner) {
			break
		}
		m, ok := ParseLine(file, line)
		if !ok || seen[m.Location] {
			continue
		}
		seen[m.Location] = true
		methods = append(methods, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s output: %w", file, err)
	}
	return methods, nil
}

// ParseLine parses a single output row
func ParseLine(file, line string) (domain.MethodComplexity, bool) {
	if !dataRow.MatchString(line) {
		return domain.MethodComplexity{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < MinFields {
		return domain.MethodComplexity{}, false
	}

	location := fields[len(fields)-1]
	if !strings.Contains(location, MethodMarker) {
		return domain.MethodComplexity{}, false
	}

	ccn, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.MethodComplexity{}, false
	}

	m := domain.MethodComplexity{
		File:       file,
		Name:       location,
		Location:   location,
		Complexity: ccn,
	}
	applyLocation(&m, location)
	return m, true
}

// applyLocation splits "name@start-end@file" into its parts when it has that shape
func applyLocation(m *domain.MethodComplexity, location string) {
	parts := strings.Split(location, MethodMarker)
	if len(parts) < 2 || parts[0] == "" {
		return
	}

	m.Name = parts[0]

	groups := lineRange.FindStringSubmatch(parts[1])
	if groups == nil {
		return
	}
	m.StartLine, _ = strconv.Atoi(groups[1])
	m.EndLine, _ = strconv.Atoi(groups[2])
}

// Violations returns the methods whose complexity is above threshold
func Violations(methods []domain.MethodComplexity, threshold int) []domain.MethodComplexity {
	var out []domain.MethodComplexity
	for _, m := range methods {
		if m.Complexity > threshold {
			out = append(out, m)
		}
	}
	return out
}
