package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/lizard"
	"golang.org/x/sync/errgroup"
)

// DrilldownServiceImpl runs the per-method tool on each flagged file
type DrilldownServiceImpl struct {
	tool      domain.ComplexityTool
	threshold int
	jobs      int
	progress  domain.ProgressManager

	warnings io.Writer
	warnMu   sync.Mutex
}

// NewDrilldownService creates a drill-down service. jobs below 1 means sequential.
func NewDrilldownService(tool domain.ComplexityTool, threshold, jobs int) *DrilldownServiceImpl {
	if jobs < 1 {
		jobs = 1
	}
	return &DrilldownServiceImpl{
		tool:      tool,
		threshold: threshold,
		jobs:      jobs,
		warnings:  io.Discard,
	}
}

// WithProgress attaches a progress manager
func (s *DrilldownServiceImpl) WithProgress(pm domain.ProgressManager) *DrilldownServiceImpl {
	s.progress = pm
	return s
}

// WithWarnings sets where per-file failures are reported as they happen
func (s *DrilldownServiceImpl) WithWarnings(w io.Writer) *DrilldownServiceImpl {
	if w != nil {
		s.warnings = w
	}
	return s
}

// Drilldown breaks every file down per method. A failing file is recorded and
// warned about; it never stops the others. Results follow the order of files.
func (s *DrilldownServiceImpl) Drilldown(ctx context.Context, files []string) *domain.DrilldownResult {
	results := make([]domain.FileDrilldown, len(files))
	if len(files) == 0 {
		return &domain.DrilldownResult{Files: results}
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil {
		task = s.progress.StartTask("Drilling down", len(files))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for i, file := range files {
		g.Go(func() error {
			// Each goroutine owns its slot
			results[i] = s.drillFile(gCtx, file)

			task.Describe(file)
			task.Increment(1)
			return nil
		})
	}

	// Goroutines never return an error; failures live in the results
	_ = g.Wait()

	return &domain.DrilldownResult{Files: results}
}

// drillFile runs the tool on one file and parses its output
func (s *DrilldownServiceImpl) drillFile(ctx context.Context, file string) domain.FileDrilldown {
	result := domain.FileDrilldown{File: file}

	if err := ctx.Err(); err != nil {
		result.Err = err
		s.warn(file, err)
		return result
	}

	output, err := s.tool.Run(ctx, file)
	if err != nil {
		result.Err = err
		s.warn(file, err)
		return result
	}

	methods, err := lizard.ParseOutput(file, output)
	if err != nil {
		result.Err = err
		s.warn(file, err)
		return result
	}

	result.Methods = methods
	result.Violations = lizard.Violations(result.Methods, s.threshold)
	return result
}

func (s *DrilldownServiceImpl) warn(file string, err error) {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	_, _ = color.New(color.FgYellow).Fprintf(s.warnings, "Warning: could not analyze %s: %v\n", file, err)
}

// DrilldownError formats a per-file failure for CheckResult.Errors
func DrilldownError(d domain.FileDrilldown) string {
	return fmt.Sprintf("%s: %v", d.File, d.Err)
}
