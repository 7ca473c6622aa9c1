package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/ccgate/domain"
)

// CheckUseCase orchestrates the gate: validate, check, write output
type CheckUseCase struct {
	service    domain.CheckService
	formatter  domain.CheckOutputFormatter
	fileHelper *FileHelper
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(service domain.CheckService, formatter domain.CheckOutputFormatter) *CheckUseCase {
	return &CheckUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute runs the gate and writes its result in format to writer.
// A returned error means the gate could not run; violations are reported
// through the result's ExitCode.
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest, format domain.OutputFormat, writer io.Writer) (*domain.CheckResult, error) {
	req.ReportPath = uc.fileHelper.ResolveReportPath(req.ReportPath)

	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	result, err := uc.service.Check(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := uc.formatter.Write(result, format, writer); err != nil {
		return nil, err
	}

	return result, nil
}

// validateRequest validates the check request
func (uc *CheckUseCase) validateRequest(req domain.CheckRequest) error {
	if req.ReportPath == "" {
		return fmt.Errorf("no report path specified")
	}

	if req.Threshold < 0 {
		return fmt.Errorf("threshold cannot be negative")
	}

	switch req.Mode {
	case domain.CheckModeFile, domain.CheckModeMethod, "":
	default:
		return fmt.Errorf("unknown check mode '%s'", req.Mode)
	}

	return nil
}

// CheckUseCaseBuilder provides a builder pattern for creating CheckUseCase
type CheckUseCaseBuilder struct {
	service   domain.CheckService
	formatter domain.CheckOutputFormatter
}

// NewCheckUseCaseBuilder creates a new builder
func NewCheckUseCaseBuilder() *CheckUseCaseBuilder {
	return &CheckUseCaseBuilder{}
}

// WithService sets the check service
func (b *CheckUseCaseBuilder) WithService(service domain.CheckService) *CheckUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *CheckUseCaseBuilder) WithFormatter(formatter domain.CheckOutputFormatter) *CheckUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the CheckUseCase with the configured dependencies
func (b *CheckUseCaseBuilder) Build() (*CheckUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("check service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	return NewCheckUseCase(b.service, b.formatter), nil
}
