package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/stats"
)

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

var contentTypes = map[ExportFormat]string{
	ExportJSON: "application/json",
	ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportPDF:  "application/pdf",
}

func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return ExportJSON, nil
	}
	if _, ok := contentTypes[format]; !ok {
		return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, raw)
	}
	return format, nil
}

type DocumentGenerator interface {
	Generate(report model.StatsReport) ([]byte, error)
}

type ReportStore interface {
	List(ctx context.Context) []model.Report
	ListForUser(ctx context.Context, userID string) []model.Report
}

// ReportService serves statistics and exports over the collections a principal can see.
type ReportService struct {
	collections CollectionStore
	reports     ReportStore
	excel       DocumentGenerator
	pdf         DocumentGenerator
	opts        options
}

type ExportInput struct {
	Principal model.Principal
	Filter    model.StatsFilter
	Format    ExportFormat
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func NewReportService(collections CollectionStore, reports ReportStore, excel, pdf DocumentGenerator, opts ...Option) *ReportService {
	return &ReportService{
		collections: collections,
		reports:     reports,
		excel:       excel,
		pdf:         pdf,
		opts:        buildOptions(opts),
	}
}

// visible returns every collection for administrators and the caller's own otherwise.
func (s *ReportService) visible(ctx context.Context, principal model.Principal) []model.Collection {
	if principal.IsAdmin() {
		return s.collections.List(ctx)
	}
	return s.collections.ListForUser(ctx, principal.UserID)
}

// Build filters the visible collections and aggregates them.
func (s *ReportService) Build(ctx context.Context, principal model.Principal, filter model.StatsFilter) model.StatsReport {
	now := s.opts.now().UTC()
	filter = normalizeFilter(filter)
	filtered := stats.Filter(s.visible(ctx, principal), filter, now)
	return model.StatsReport{
		User:        principal.Name,
		Window:      filter.Window,
		WasteType:   filter.WasteType,
		Stats:       stats.Summarize(filtered),
		Collections: filtered,
		GeneratedAt: now,
	}
}

func (s *ReportService) Stats(ctx context.Context, principal model.Principal, filter model.StatsFilter) model.CollectionStats {
	return s.Build(ctx, principal, filter).Stats
}

func (s *ReportService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	report := s.Build(ctx, input.Principal, input.Filter)

	var (
		content []byte
		err     error
	)
	switch input.Format {
	case ExportJSON, "":
		input.Format = ExportJSON
		content, err = json.MarshalIndent(report, "", "  ")
	case ExportXLSX:
		if s.excel == nil {
			return nil, fmt.Errorf("%w: xlsx export is not configured", ErrInvalidInput)
		}
		content, err = s.excel.Generate(report)
	case ExportPDF:
		if s.pdf == nil {
			return nil, fmt.Errorf("%w: pdf export is not configured", ErrInvalidInput)
		}
		content, err = s.pdf.Generate(report)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, input.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", input.Format, err)
	}

	return &ExportResult{
		FileName:    buildFileName(report, input.Format),
		ContentType: contentTypes[input.Format],
		Content:     content,
	}, nil
}

// Reports lists stored report records; administrators see all of them.
func (s *ReportService) Reports(ctx context.Context, principal model.Principal) []model.Report {
	if principal.IsAdmin() {
		return s.reports.List(ctx)
	}
	return s.reports.ListForUser(ctx, principal.UserID)
}

func normalizeFilter(filter model.StatsFilter) model.StatsFilter {
	if filter.Window == "" {
		filter.Window = model.DateWindowAll
	}
	if filter.WasteType == "" {
		filter.WasteType = model.WasteTypeAll
	}
	return filter
}

func buildFileName(report model.StatsReport, format ExportFormat) string {
	return fmt.Sprintf("waste-report-%s.%s", report.GeneratedAt.Format("2006-01-02"), format)
}
