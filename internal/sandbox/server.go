package sandbox

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server is the local stand-in for the SevaSetu core API: every endpoint the
// admin console talks to, backed by seeded in-memory fixtures. Dev runs and
// end-to-end tests point the client here instead of at production.
type Server struct {
	mux   *chi.Mux
	state *state
	log   zerolog.Logger
}

// Options tune the fixture universe.
type Options struct {
	Seed     int64
	TokenTTL time.Duration
	Logger   zerolog.Logger
}

func New(opts Options) *Server {
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 15 * time.Minute
	}

	m := chi.NewRouter()
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(opts.Logger))

	s := &Server{
		mux:   m,
		state: newState(opts.Seed, opts.TokenTTL),
		log:   opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g. /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// ExpireSessions ages out every live access token, so the next
// authenticated call runs into a refresh episode. End-to-end tests use this
// instead of waiting out the TTL.
func (s *Server) ExpireSessions() { s.state.expireSessions() }

func (s *Server) routes() {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})

	// auth endpoints sit outside the bearer check
	s.mux.Post("/v1/admin/auth/login", s.login)
	s.mux.Post("/v1/admin/auth/check-email", s.checkEmail)
	s.mux.Post("/v1/admin/auth/setup-password", s.setupPassword)
	s.mux.Post("/v1/admin/auth/refresh", s.refresh)

	s.mux.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/v1/admin/auth/me", s.me)
		r.Post("/v1/admin/auth/logout", s.logout)

		r.Get("/v1/admin/users", s.listUsers)
		r.Get("/v1/admin/users/{id}", s.getUser)
		r.Post("/v1/admin/users/{id}/suspend", s.suspendUser)
		r.Post("/v1/admin/users/{id}/reinstate", s.reinstateUser)

		r.Get("/v1/admin/acharyas", s.listAcharyas)
		r.Get("/v1/admin/kyc", s.listKYC)
		r.Get("/v1/admin/kyc/{id}", s.getKYC)
		r.Post("/v1/admin/kyc/{id}/approve", s.approveKYC)
		r.Post("/v1/admin/kyc/{id}/reject", s.rejectKYC)
		r.Post("/v1/admin/kyc/{id}/documents", s.uploadKYCDoc)
		r.Get("/v1/admin/kyc/docs/{id}", s.serveKYCDoc)

		r.Get("/v1/admin/bookings", s.listBookings)
		r.Get("/v1/admin/bookings/stats", s.bookingStats)
		r.Get("/v1/admin/bookings/{id}", s.getBooking)
		r.Patch("/v1/admin/bookings/{id}/status", s.setBookingStatus)

		r.Get("/v1/admin/disputes", s.listDisputes)
		r.Get("/v1/admin/disputes/{id}", s.getDispute)
		r.Post("/v1/admin/disputes/{id}/resolve", s.resolveDispute)
		r.Get("/v1/admin/fraud-alerts", s.listAlerts)
		r.Patch("/v1/admin/fraud-alerts/{id}/status", s.setAlertStatus)

		r.Get("/v1/admin/testimonials", s.listTestimonials)
		r.Patch("/v1/admin/testimonials/{id}/publish", s.publishTestimonial)
		r.Delete("/v1/admin/testimonials/{id}", s.deleteTestimonial)
		r.Get("/v1/admin/announcements", s.listAnnouncements)
		r.Post("/v1/admin/announcements", s.createAnnouncement)
		r.Put("/v1/admin/announcements/{id}", s.updateAnnouncement)
		r.Delete("/v1/admin/announcements/{id}", s.deleteAnnouncement)

		r.Get("/v1/admin/coupons", s.listCoupons)
		r.Post("/v1/admin/coupons", s.createCoupon)
		r.Put("/v1/admin/coupons/{id}", s.updateCoupon)
		r.Patch("/v1/admin/coupons/{id}/toggle", s.toggleCoupon)
		r.Delete("/v1/admin/coupons/{id}", s.deleteCoupon)
		r.Get("/v1/admin/vouchers", s.listVouchers)
		r.Post("/v1/admin/vouchers", s.issueVoucher)
		r.Delete("/v1/admin/vouchers/{id}", s.revokeVoucher)

		r.Get("/v1/admin/audit", s.listAudit)
		r.Get("/v1/admin/audit/export", s.exportAudit)
		r.Post("/v1/admin/broadcast", s.sendBroadcast)
		r.Get("/v1/admin/broadcast", s.listBroadcasts)

		r.Route("/v1/admin/analytics", func(r chi.Router) {
			r.Get("/summary", s.analyticsSummary)
			r.Get("/booking-trend", s.analyticsBookingTrend)
			r.Get("/revenue-trend", s.analyticsRevenueTrend)
			r.Get("/user-growth", s.analyticsUserGrowth)
			r.Get("/acharya-growth", s.analyticsAcharyaGrowth)
			r.Get("/status-breakdown", s.analyticsStatusBreakdown)
			r.Get("/top-acharyas", s.analyticsTopAcharyas)
			r.Get("/dispute-stats", s.analyticsDisputeStats)
			r.Get("/coupon-redemptions", s.analyticsCouponRedemptions)
			r.Get("/category-split", s.analyticsCategorySplit)
		})

		r.Get("/v1/chat/threads", s.listThreads)
		r.Get("/v1/chat/threads/{id}/messages", s.listMessages)
		r.Post("/v1/chat/threads/{id}/messages", s.postMessage)
		r.Post("/v1/chat/threads/{id}/attachments", s.uploadAttachment)
		r.Post("/v1/chat/threads/{id}/voice", s.uploadVoice)
		r.Get("/media/{id}", s.serveMedia)
	})
}
