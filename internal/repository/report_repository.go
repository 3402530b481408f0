package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

type ReportRepository struct {
	records *records[model.Report]
}

func NewReportRepository(backend storage.Backend, seed bool, log zerolog.Logger) *ReportRepository {
	var seedFn func() []model.Report
	if seed {
		seedFn = SeedReports
	}
	return &ReportRepository{
		records: newRecords(backend, "reports", seedFn, func(r model.Report) string { return r.ID }, log),
	}
}

func (r *ReportRepository) List(ctx context.Context) []model.Report {
	return r.records.List(ctx)
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (model.Report, bool) {
	return r.records.GetByID(ctx, id)
}

func (r *ReportRepository) ListForUser(ctx context.Context, userID string) []model.Report {
	all := r.records.List(ctx)
	result := make([]model.Report, 0, len(all))
	for _, report := range all {
		if report.UserID == userID {
			result = append(result, report)
		}
	}
	return result
}

func (r *ReportRepository) Upsert(ctx context.Context, report model.Report) error {
	return r.records.Upsert(ctx, report)
}
