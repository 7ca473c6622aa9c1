package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/ludo-technologies/ccgate/app"
	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/config"
	"github.com/ludo-technologies/ccgate/internal/lizard"
	"github.com/ludo-technologies/ccgate/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

// checkOptions holds the flag values of one check invocation
type checkOptions struct {
	configPath     string
	threshold      int
	mode           string
	layout         string
	detectEncoding bool
	tool           string
	language       string
	jobs           int
	timeout        time.Duration
	ignore         []string
	ignoreFile     string
	format         string
	noColor        bool
	verbose        bool
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [report.json]",
		Short: "Gate a complexity report against the threshold",
		Long: `Compare every file's cyclomatic complexity in a report against the threshold.

In method mode each failing file is analyzed per method with lizard and only
methods above the threshold fail the gate.

Exit codes:
  0 - Nothing exceeds the threshold
  1 - Threshold violated
  2 - Error (report not found, unreadable, bad configuration, etc.)

Examples:
  # Gate report.json in the current directory
  ccgate check

  # Nested report, per-method drill-down with encoding detection
  ccgate check --layout nested --mode method --detect-encoding metrics/report.json

  # Stricter threshold, skip generated code
  ccgate check --threshold 8 --ignore 'Migrations/' --ignore '*.Designer.cs'

  # JSON output for machine parsing
  ccgate check --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	d := config.DefaultConfig()
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().IntVarP(&opts.threshold, "threshold", "t", d.Complexity.Threshold,
		"Maximum allowed cyclomatic complexity")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", d.Check.Mode,
		"Gating mode: file or method")
	cmd.Flags().StringVar(&opts.layout, "layout", d.Report.Layout,
		"Report layout: flat or nested")
	cmd.Flags().BoolVar(&opts.detectEncoding, "detect-encoding", d.Report.DetectEncoding,
		"Detect the report's byte encoding instead of assuming UTF-8")
	cmd.Flags().StringVar(&opts.tool, "tool", d.Drilldown.Tool,
		"Per-method complexity tool (method mode)")
	cmd.Flags().StringVar(&opts.language, "language", d.Drilldown.Language,
		"Language passed to the tool as -l (method mode)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", d.Drilldown.Jobs,
		"Files drilled down concurrently (method mode)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", d.Drilldown.Timeout,
		"Timeout per tool invocation, 0 for none")
	cmd.Flags().StringArrayVar(&opts.ignore, "ignore", nil,
		"Gitignore-style pattern of report entries to skip (repeatable)")
	cmd.Flags().StringVar(&opts.ignoreFile, "ignore-file", d.Ignore.File,
		"File of gitignore-style patterns")
	cmd.Flags().StringVarP(&opts.format, "format", "f", d.Output.Format,
		"Output format: text, json or yaml")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"Disable coloured output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Print a summary table")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	reportArg := ""
	if len(args) > 0 {
		reportArg = args[0]
	}

	cfg, err := config.LoadConfigWithTarget(opts.configPath, reportArg)
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	applyCheckFlags(cmd, cfg, opts)
	if reportArg != "" {
		cfg.Report.Path = reportArg
	}

	if err := cfg.Validate(); err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: fmt.Sprintf("invalid configuration: %v", err)}
	}

	if !cfg.Output.Color {
		color.NoColor = true
	}

	format := domain.OutputFormat(cfg.Output.Format)

	// Progress bars only for human output (auto-disabled for non-TTY/CI)
	pm := service.NewProgressManager(format == domain.OutputFormatText)
	defer pm.Close()

	uc, err := buildCheckUseCase(cfg, pm, cmd)
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: err.Error()}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	req := domain.CheckRequest{
		ReportPath: cfg.Report.Path,
		Mode:       domain.CheckMode(cfg.Check.Mode),
		Threshold:  cfg.Complexity.Threshold,
	}

	result, err := uc.Execute(ctx, req, format, cmd.OutOrStdout())
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: err.Error()}
	}

	if result.ExitCode != domain.ExitCodePass {
		return &CheckExitError{Code: result.ExitCode, Message: ""}
	}
	return nil
}

// applyCheckFlags overrides configuration with the flags set on the command line
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config, opts *checkOptions) {
	flags := cmd.Flags()

	if flags.Changed("threshold") {
		cfg.Complexity.Threshold = opts.threshold
	}
	if flags.Changed("mode") {
		cfg.Check.Mode = opts.mode
	}
	if flags.Changed("layout") {
		cfg.Report.Layout = opts.layout
	}
	if flags.Changed("detect-encoding") {
		cfg.Report.DetectEncoding = opts.detectEncoding
	}
	if flags.Changed("tool") {
		cfg.Drilldown.Tool = opts.tool
	}
	if flags.Changed("language") {
		cfg.Drilldown.Language = opts.language
	}
	if flags.Changed("jobs") {
		cfg.Drilldown.Jobs = opts.jobs
	}
	if flags.Changed("timeout") {
		cfg.Drilldown.Timeout = opts.timeout
	}
	if flags.Changed("ignore") {
		cfg.Ignore.Patterns = append(cfg.Ignore.Patterns, opts.ignore...)
	}
	if flags.Changed("ignore-file") {
		cfg.Ignore.File = opts.ignoreFile
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if opts.noColor {
		cfg.Output.Color = false
	}
	if opts.verbose {
		cfg.Output.Verbose = true
	}
}

// buildCheckUseCase wires loader, evaluator and, in method mode, the drill-down
func buildCheckUseCase(cfg *config.Config, pm domain.ProgressManager, cmd *cobra.Command) (*app.CheckUseCase, error) {
	loader, err := service.NewReportLoader(domain.ReportLayout(cfg.Report.Layout), cfg.Report.DetectEncoding)
	if err != nil {
		return nil, err
	}

	filter, err := service.NewIgnoreFilter(cfg.Ignore.Patterns, cfg.Ignore.File)
	if err != nil {
		return nil, domain.NewConfigError("invalid ignore configuration", err)
	}
	evaluator := service.NewThresholdEvaluator(cfg.Complexity.Threshold, filter)

	var drilldown domain.DrilldownService
	if cfg.IsMethodMode() {
		runner := lizard.NewRunner(cfg.Drilldown.Tool, cfg.Drilldown.Language, cfg.Drilldown.Timeout)
		drilldown = service.NewDrilldownService(runner, cfg.Complexity.Threshold, cfg.Drilldown.Jobs).
			WithProgress(pm).
			WithWarnings(cmd.ErrOrStderr())
	}

	return app.NewCheckUseCaseBuilder().
		WithService(service.NewCheckService(loader, evaluator, drilldown)).
		WithFormatter(service.NewOutputFormatter(cfg.Output.Verbose)).
		Build()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
