package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile describes how the report is produced and how deep the gate looks
type Profile string

const (
	// ProfileFileGate gates on per-file values of a flat report
	ProfileFileGate Profile = "file"

	// ProfileMethodGate gates on per-method values, drilling into failing files with lizard
	ProfileMethodGate Profile = "method"
)

// Strictness represents the gate strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProfilePreset holds report and drill-down settings for a profile
type ProfilePreset struct {
	Layout         string
	Mode           string
	DetectEncoding bool
	Language       string
}

// StrictnessPreset holds the threshold for a strictness level
type StrictnessPreset struct {
	Threshold int
}

// GetProfilePresets returns presets for the supported profiles
func GetProfilePresets() map[Profile]ProfilePreset {
	return map[Profile]ProfilePreset{
		ProfileFileGate: {
			Layout:         "flat",
			Mode:           "file",
			DetectEncoding: false,
			Language:       DefaultLanguage,
		},
		ProfileMethodGate: {
			Layout:         "nested",
			Mode:           "method",
			DetectEncoding: true,
			Language:       DefaultLanguage,
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			Threshold: 15,
		},
		StrictnessStandard: {
			Threshold: DefaultThreshold,
		},
		StrictnessStrict: {
			Threshold: 5,
		},
	}
}

// ParseStrictness converts a preset name, case-insensitively
func ParseStrictness(s string) (Strictness, error) {
	strictness := Strictness(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := GetStrictnessPresets()[strictness]; !ok {
		return "", fmt.Errorf("unknown preset '%s', must be one of: relaxed, standard, strict", s)
	}
	return strictness, nil
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(profile Profile, strictness Strictness) string {
	preset, ok := GetProfilePresets()[profile]
	if !ok {
		preset = GetProfilePresets()[ProfileFileGate]
	}
	strict := GetStrictnessPresets()[strictness]

	return `# ccgate configuration
# Every key can be overridden with a CCGATE_ environment variable,
# e.g. CCGATE_COMPLEXITY_THRESHOLD=12 or CCGATE_CHECK_MODE=method.

# ============================================================================
# REPORT
# ============================================================================
report:
  # Path to the static-analysis report
  path: ` + DefaultReportPath + `

  # "flat":   {"File.cs": {"cyclomatic_complexity": 4, ...}, ...}
  # "nested": {"files": {"File.cs": {...}, ...}}
  layout: ` + preset.Layout + `

  # Sniff the byte encoding (UTF-16, Windows code pages, ...) before decoding.
  # When false the report must be UTF-8.
  detect_encoding: ` + strconv.FormatBool(preset.DetectEncoding) + `

# ============================================================================
# POLICY
# ============================================================================
complexity:
  # Files (or methods) with cyclomatic complexity above this value fail
  threshold: ` + strconv.Itoa(strict.Threshold) + `

check:
  # "file":   fail when any file is above the threshold
  # "method": run the drill-down tool on failing files and fail only
  #           when one of their methods is above the threshold
  mode: ` + preset.Mode + `

# ============================================================================
# DRILL-DOWN (method mode)
# ============================================================================
drilldown:
  # Executable invoked as: <tool> -l <language> <file>
  tool: ` + DefaultTool + `
  language: ` + preset.Language + `

  # Files analyzed concurrently (1 = sequential)
  jobs: ` + strconv.Itoa(DefaultJobs) + `

  # Per-file limit such as 30s (0 = none)
  timeout: 0s

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # "text", "json" or "yaml"
  format: text

  # Colour pass/fail lines on terminals
  color: true

  # Print a summary table after the per-file lines
  verbose: false

# ============================================================================
# IGNORED REPORT ENTRIES
# ============================================================================
ignore:
  # gitignore-style patterns matched against report paths
  patterns: []

  # Optional file with more patterns; missing is fine
  file: .ccgateignore
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# ccgate configuration (minimal)
report:
  path: ` + DefaultReportPath + `
  layout: flat

complexity:
  threshold: ` + strconv.Itoa(DefaultThreshold) + `

check:
  mode: file
`
}
