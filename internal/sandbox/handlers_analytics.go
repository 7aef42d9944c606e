package sandbox

import (
	"net/http"
	"sort"
	"time"

	"sevasetu_admin/internal/domain"
)

// The analytics endpoints each compute one aggregate over the fixture
// universe on every call, so the numbers track whatever the mutating
// endpoints have done since boot.

func (s *Server) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := domain.Summary{
		TotalUsers:    int64(len(st.users)),
		TotalAcharyas: int64(len(st.acharyas)),
		TotalBookings: int64(len(st.bookings)),
	}
	for _, d := range st.disputes {
		if d.Status == domain.DisputeOpen || d.Status == domain.DisputeUnderReview {
			out.OpenDisputes++
		}
	}
	for _, b := range st.bookings {
		if b.Status == domain.BookingCompleted {
			out.RevenuePaise += b.AmountPaise
		}
	}
	writeData(w, http.StatusOK, out)
}

// monthSeries buckets values by calendar month ("2026-08" keys sort
// chronologically) and returns them oldest first.
func monthSeries(add func(bucket func(t time.Time, v float64))) []domain.SeriesPoint {
	sums := map[string]float64{}
	add(func(t time.Time, v float64) { sums[t.Format("2006-01")] += v })

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.SeriesPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.SeriesPoint{Period: k, Value: sums[k]})
	}
	return out
}

func (s *Server) analyticsBookingTrend(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := monthSeries(func(bucket func(time.Time, float64)) {
		for _, b := range st.bookings {
			bucket(b.CreatedAt, 1)
		}
	})
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsRevenueTrend(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := monthSeries(func(bucket func(time.Time, float64)) {
		for _, b := range st.bookings {
			if b.Status != domain.BookingCompleted {
				continue
			}
			bucket(b.CreatedAt, float64(b.AmountPaise))
		}
	})
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsUserGrowth(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := monthSeries(func(bucket func(time.Time, float64)) {
		for _, su := range st.users {
			bucket(su.u.CreatedAt, 1)
		}
	})
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsAcharyaGrowth(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := monthSeries(func(bucket func(time.Time, float64)) {
		for _, ac := range st.acharyas {
			bucket(ac.CreatedAt, 1)
		}
	})
	writeData(w, http.StatusOK, out)
}

var statusOrder = []string{
	domain.BookingPending, domain.BookingConfirmed, domain.BookingInProgress,
	domain.BookingCompleted, domain.BookingCancelled, domain.BookingRefunded,
}

// analyticsStatusBreakdown sends counts only; the console derives the
// percentages.
func (s *Server) analyticsStatusBreakdown(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	counts := map[string]int64{}
	for _, b := range st.bookings {
		counts[b.Status]++
	}
	out := make([]domain.StatusCount, 0, len(statusOrder))
	for _, status := range statusOrder {
		out = append(out, domain.StatusCount{Status: status, Count: counts[status]})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsTopAcharyas(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	type agg struct {
		bookings int64
		revenue  int64
	}
	byAcharya := map[string]*agg{}
	for _, b := range st.bookings {
		a := byAcharya[b.AcharyaID]
		if a == nil {
			a = &agg{}
			byAcharya[b.AcharyaID] = a
		}
		if b.Status != domain.BookingCancelled {
			a.bookings++
		}
		if b.Status == domain.BookingCompleted {
			a.revenue += b.AmountPaise
		}
	}

	out := make([]domain.TopAcharya, 0, len(byAcharya))
	for _, ac := range st.acharyas {
		a := byAcharya[ac.ID]
		if a == nil || a.bookings == 0 {
			continue
		}
		out = append(out, domain.TopAcharya{
			AcharyaID:    ac.ID,
			Name:         ac.FullName,
			Bookings:     a.bookings,
			RevenuePaise: a.revenue,
			Rating:       ac.Rating,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bookings > out[j].Bookings })
	if len(out) > 5 {
		out = out[:5]
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsDisputeStats(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var out domain.DisputeStats
	var hours float64
	var resolved int
	for _, d := range st.disputes {
		switch d.Status {
		case domain.DisputeOpen:
			out.Open++
		case domain.DisputeUnderReview:
			out.UnderReview++
		case domain.DisputeResolved:
			out.Resolved++
		case domain.DisputeRejected:
			out.Rejected++
		}
		if d.ResolvedAt != nil {
			hours += d.ResolvedAt.Sub(d.CreatedAt).Hours()
			resolved++
		}
	}
	if resolved > 0 {
		out.AvgResolutionHours = hours / float64(resolved)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsCouponRedemptions(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	// percent coupons estimate redeemed value against the mean completed
	// booking amount; flat coupons report exact totals
	var completedSum, completedN int64
	for _, b := range st.bookings {
		if b.Status == domain.BookingCompleted {
			completedSum += b.AmountPaise
			completedN++
		}
	}
	var meanAmount int64
	if completedN > 0 {
		meanAmount = completedSum / completedN
	}

	out := make([]domain.CouponRedemption, 0, len(st.coupons))
	for _, c := range st.coupons {
		cr := domain.CouponRedemption{Code: c.Code, Redemptions: int64(c.Redeemed)}
		switch {
		case c.FlatPaise != nil:
			cr.ValuePaise = int64(c.Redeemed) * *c.FlatPaise
		case c.Percent != nil:
			cr.ValuePaise = int64(c.Redeemed) * meanAmount * int64(*c.Percent) / 100
		}
		out = append(out, cr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Redemptions > out[j].Redemptions })
	writeData(w, http.StatusOK, out)
}

func (s *Server) analyticsCategorySplit(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	counts := map[string]int64{}
	for _, b := range st.bookings {
		counts[b.Category]++
	}
	out := make([]domain.CategoryCount, 0, len(categories))
	for _, cat := range categories {
		out = append(out, domain.CategoryCount{Category: cat, Bookings: counts[cat]})
	}
	writeData(w, http.StatusOK, out)
}
