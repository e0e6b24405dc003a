package services

import (
	"context"

	"github.com/mobilecollector/backoffice/types"
)

// UnknownUserName labels aggregates whose creator no longer exists.
const UnknownUserName = "User Tidak Dikenal"

// ReportRepository defines the aggregate queries behind dashboards.
type ReportRepository interface {
	Stats(ctx context.Context, officeCodes []string) (types.Stats, error)
	TotalsByUser(ctx context.Context) ([]types.UserTotal, error)
	TotalsByOffice(ctx context.Context) ([]types.OfficeTotal, error)
}

// ReportService encapsulates dashboard aggregation use-cases.
type ReportService struct {
	repo ReportRepository
}

func NewReportService(repo ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Stats(ctx context.Context, officeCodes []string) (types.Stats, error) {
	return s.repo.Stats(ctx, officeCodes)
}

// GroupedByUser returns per-creator totals, largest first, without zero totals.
func (s *ReportService) GroupedByUser(ctx context.Context) ([]types.UserTotal, error) {
	totals, err := s.repo.TotalsByUser(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make([]types.UserTotal, 0, len(totals))
	for _, total := range totals {
		if !total.TotalAmount.IsPositive() {
			continue
		}
		if total.FullName == "" {
			total.FullName = UnknownUserName
		}
		grouped = append(grouped, total)
	}
	return grouped, nil
}

func (s *ReportService) Offices(ctx context.Context) ([]types.OfficeTotal, error) {
	totals, err := s.repo.TotalsByOffice(ctx)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []types.OfficeTotal{}
	}
	return totals, nil
}
