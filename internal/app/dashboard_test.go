package app_test

import (
	"context"
	"testing"

	"sevasetu_admin/internal/app"
	"sevasetu_admin/internal/domain"
)

type fakeAnalytics struct {
	d domain.Dashboard
}

func (f *fakeAnalytics) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	return f.d, nil
}

func TestOverview_DerivesPercentsAndOrder(t *testing.T) {
	src := &fakeAnalytics{d: domain.Dashboard{
		StatusBreakdown: []domain.StatusCount{
			{Status: "completed", Count: 3},
			{Status: "cancelled", Count: 1},
		},
		TopAcharyas: []domain.TopAcharya{
			{AcharyaID: "ac2", Bookings: 12},
			{AcharyaID: "ac1", Bookings: 52},
			{AcharyaID: "ac3", Bookings: 30},
		},
	}}
	svc := app.NewDashboardService(src)

	d, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if got := d.StatusBreakdown[0].Percent; got != 75.0 {
		t.Errorf("completed percent = %v, want 75", got)
	}
	if got := d.StatusBreakdown[1].Percent; got != 25.0 {
		t.Errorf("cancelled percent = %v, want 25", got)
	}
	want := []string{"ac1", "ac3", "ac2"}
	for i, w := range want {
		if d.TopAcharyas[i].AcharyaID != w {
			t.Errorf("top[%d] = %s, want %s", i, d.TopAcharyas[i].AcharyaID, w)
		}
	}
}

func TestOverview_ZeroTotalLeavesPercentsAlone(t *testing.T) {
	src := &fakeAnalytics{d: domain.Dashboard{
		StatusBreakdown: []domain.StatusCount{{Status: "completed", Count: 0}},
	}}
	d, err := app.NewDashboardService(src).Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if d.StatusBreakdown[0].Percent != 0 {
		t.Errorf("percent = %v, want 0", d.StatusBreakdown[0].Percent)
	}
}
