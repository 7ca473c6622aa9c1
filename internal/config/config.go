package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/constants"
	"github.com/spf13/viper"
)

// Default gate settings
const (
	// DefaultReportPath is read from the working directory when no path is given
	DefaultReportPath = "report.json"

	// DefaultThreshold is the McCabe limit a file or method may not exceed
	DefaultThreshold = domain.DefaultThreshold

	// DefaultTool is the per-method complexity analyzer run in method mode
	DefaultTool = "lizard"

	// DefaultLanguage is passed to the tool's -l flag
	DefaultLanguage = "csharp"

	// DefaultJobs keeps drill-down sequential
	DefaultJobs = 1

	// MaxJobs bounds drill-down concurrency
	MaxJobs = 64
)

// Config represents the main configuration structure
type Config struct {
	// Report describes where report.json lives and how it is laid out
	Report ReportConfig `json:"report" mapstructure:"report" yaml:"report"`

	// Complexity holds the threshold
	Complexity ComplexityConfig `json:"complexity" mapstructure:"complexity" yaml:"complexity"`

	// Check selects the gating mode
	Check CheckConfig `json:"check" mapstructure:"check" yaml:"check"`

	// Drilldown configures the external per-method tool
	Drilldown DrilldownConfig `json:"drilldown" mapstructure:"drilldown" yaml:"drilldown"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Ignore lists report entries that are never evaluated
	Ignore IgnoreConfig `json:"ignore" mapstructure:"ignore" yaml:"ignore"`
}

// ReportConfig holds configuration for the report loader
type ReportConfig struct {
	// Path to the report, relative to the working directory
	Path string `json:"path" mapstructure:"path" yaml:"path"`

	// Layout is "flat" ({file: metrics}) or "nested" ({"files": {file: metrics}})
	Layout string `json:"layout" mapstructure:"layout" yaml:"layout"`

	// DetectEncoding sniffs the byte encoding before decoding; otherwise UTF-8 is assumed
	DetectEncoding bool `json:"detect_encoding" mapstructure:"detect_encoding" yaml:"detect_encoding"`
}

// ComplexityConfig holds the cyclomatic complexity policy
type ComplexityConfig struct {
	// Threshold is the maximum allowed value; anything above it fails
	Threshold int `json:"threshold" mapstructure:"threshold" yaml:"threshold"`
}

// CheckConfig holds gating options
type CheckConfig struct {
	// Mode is "file" or "method"
	Mode string `json:"mode" mapstructure:"mode" yaml:"mode"`
}

// DrilldownConfig holds configuration for the external per-method tool
type DrilldownConfig struct {
	// Tool is the executable, looked up in PATH
	Tool string `json:"tool" mapstructure:"tool" yaml:"tool"`

	// Language is passed as "-l <language>"
	Language string `json:"language" mapstructure:"language" yaml:"language"`

	// Jobs is the number of files drilled concurrently
	Jobs int `json:"jobs" mapstructure:"jobs" yaml:"jobs"`

	// Timeout bounds each tool invocation; 0 means no limit
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Color enables coloured text output on terminals
	Color bool `json:"color" mapstructure:"color" yaml:"color"`

	// Verbose adds a summary table after the per-file lines
	Verbose bool `json:"verbose" mapstructure:"verbose" yaml:"verbose"`
}

// IgnoreConfig holds gitignore-style patterns matched against report paths
type IgnoreConfig struct {
	// Patterns are inline gitignore lines
	Patterns []string `json:"patterns" mapstructure:"patterns" yaml:"patterns"`

	// File is an optional gitignore-style file; missing files are not an error
	File string `json:"file" mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Path:           DefaultReportPath,
			Layout:         string(domain.LayoutFlat),
			DetectEncoding: false,
		},
		Complexity: ComplexityConfig{
			Threshold: DefaultThreshold,
		},
		Check: CheckConfig{
			Mode: string(domain.CheckModeFile),
		},
		Drilldown: DrilldownConfig{
			Tool:     DefaultTool,
			Language: DefaultLanguage,
			Jobs:     DefaultJobs,
			Timeout:  0,
		},
		Output: OutputConfig{
			Format:  string(domain.OutputFormatText),
			Color:   true,
			Verbose: false,
		},
		Ignore: IgnoreConfig{
			Patterns: []string{},
			File:     constants.IgnoreFileName,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// An explicit configPath wins; otherwise a config file is searched from
// targetPath upward. Environment overrides apply in both cases.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}

	return loadConfigFromFile(configPath)
}

// loadDotEnv loads .env from the working directory into the process environment.
// Variables that are already set are left untouched.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// loadConfigFromFile reads and parses a configuration file.
// An empty path yields the defaults with environment overrides applied.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := newViper()
	config := DefaultConfig()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// newViper creates a viper instance seeded with defaults and bound to CCGATE_* variables
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper knows about
	d := DefaultConfig()
	v.SetDefault("report.path", d.Report.Path)
	v.SetDefault("report.layout", d.Report.Layout)
	v.SetDefault("report.detect_encoding", d.Report.DetectEncoding)
	v.SetDefault("complexity.threshold", d.Complexity.Threshold)
	v.SetDefault("check.mode", d.Check.Mode)
	v.SetDefault("drilldown.tool", d.Drilldown.Tool)
	v.SetDefault("drilldown.language", d.Drilldown.Language)
	v.SetDefault("drilldown.jobs", d.Drilldown.Jobs)
	v.SetDefault("drilldown.timeout", d.Drilldown.Timeout)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("ignore.patterns", d.Ignore.Patterns)
	v.SetDefault("ignore.file", d.Ignore.File)
	return v
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations
func findDefaultConfig(targetPath string) string {
	candidates := constants.ConfigFileNames

	start := targetPath
	if start == "" {
		start = "."
	}

	if absPath, err := filepath.Abs(start); err == nil {
		// If it's a file (e.g. the report), start from its directory
		if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
			absPath = filepath.Dir(absPath)
		}

		for dir := absPath; ; dir = filepath.Dir(dir) {
			if config := searchConfigInDirectory(dir, candidates); config != "" {
				return config
			}
			if parent := filepath.Dir(dir); parent == dir {
				break
			}
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName), candidates); config != "" {
			return config
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Report.Path == "" {
		return fmt.Errorf("report.path cannot be empty")
	}

	switch domain.ReportLayout(c.Report.Layout) {
	case domain.LayoutFlat, domain.LayoutNested:
	default:
		return fmt.Errorf("invalid report.layout '%s', must be one of: flat, nested", c.Report.Layout)
	}

	if c.Complexity.Threshold < 0 {
		return fmt.Errorf("complexity.threshold must be >= 0, got %d", c.Complexity.Threshold)
	}

	switch domain.CheckMode(c.Check.Mode) {
	case domain.CheckModeFile, domain.CheckModeMethod:
	default:
		return fmt.Errorf("invalid check.mode '%s', must be one of: file, method", c.Check.Mode)
	}

	if err := c.validateDrilldownConfig(); err != nil {
		return err
	}

	validFormats := map[string]bool{
		string(domain.OutputFormatText): true,
		string(domain.OutputFormatJSON): true,
		string(domain.OutputFormatYAML): true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	return nil
}

// validateDrilldownConfig validates the drill-down configuration
func (c *Config) validateDrilldownConfig() error {
	if c.Check.Mode != string(domain.CheckModeMethod) {
		return nil
	}

	if c.Drilldown.Tool == "" {
		return fmt.Errorf("drilldown.tool cannot be empty in method mode")
	}

	if c.Drilldown.Language == "" {
		return fmt.Errorf("drilldown.language cannot be empty in method mode")
	}

	if c.Drilldown.Jobs < 1 || c.Drilldown.Jobs > MaxJobs {
		return fmt.Errorf("drilldown.jobs must be between 1 and %d, got %d", MaxJobs, c.Drilldown.Jobs)
	}

	if c.Drilldown.Timeout < 0 {
		return fmt.Errorf("drilldown.timeout must be >= 0, got %s", c.Drilldown.Timeout)
	}

	return nil
}

// IsMethodMode reports whether the gate drills down per method
func (c *Config) IsMethodMode() bool {
	return c.Check.Mode == string(domain.CheckModeMethod)
}
