package app

import (
	"context"
	"math"
	"sort"

	"sevasetu_admin/internal/domain"
)

// DashboardService fetches the joined analytics aggregate and finishes the
// derived values the backend leaves to the client: breakdown percentages and
// a stable top-performer order.
type DashboardService struct {
	src domain.AnalyticsSource
}

func NewDashboardService(src domain.AnalyticsSource) *DashboardService {
	return &DashboardService{src: src}
}

func (s *DashboardService) Overview(ctx context.Context) (domain.Dashboard, error) {
	d, err := s.src.Dashboard(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	fillPercents(d.StatusBreakdown)
	sort.SliceStable(d.TopAcharyas, func(i, j int) bool {
		return d.TopAcharyas[i].Bookings > d.TopAcharyas[j].Bookings
	})
	return d, nil
}

// fillPercents derives each slice's share of the total, one decimal place.
// Zero totals leave all percentages at zero.
func fillPercents(counts []domain.StatusCount) {
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return
	}
	for i := range counts {
		p := float64(counts[i].Count) / float64(total) * 100
		counts[i].Percent = math.Round(p*10) / 10
	}
}
