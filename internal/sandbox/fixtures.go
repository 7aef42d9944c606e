package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"sevasetu_admin/internal/domain"
)

// Fixture vocabulary. Everything below is deterministic for a given seed so
// tests can assert against stable ids.
var (
	firstNames = []string{
		"Asha", "Ravi", "Meera", "Arjun", "Lakshmi", "Vikram", "Priya", "Suresh",
		"Kavita", "Anil", "Divya", "Rahul", "Sunita", "Manoj", "Pooja", "Deepak",
	}
	lastNames = []string{
		"Rao", "Iyer", "Sharma", "Patel", "Nair", "Gupta", "Joshi", "Mehta",
		"Kulkarni", "Reddy", "Mishra", "Banerjee",
	}
	cities = []string{
		"Varanasi", "Haridwar", "Pune", "Chennai", "Ujjain", "Bengaluru",
		"Nashik", "Tirupati",
	}
	services = map[string][]string{
		"puja":      {"Satyanarayan Puja", "Griha Pravesh Puja", "Ganapati Puja", "Navagraha Puja"},
		"havan":     {"Rudra Havan", "Chandi Havan", "Dhanvantari Havan"},
		"astrology": {"Kundali Reading", "Muhurta Consultation", "Matchmaking Reading"},
		"samskara":  {"Namakarana", "Annaprashana", "Upanayana"},
	}
	categories     = []string{"puja", "havan", "astrology", "samskara"}
	specialties    = []string{"Vedic rituals", "Vastu", "Jyotisha", "Samskaras", "Homas"}
	languagesKnown = []string{"Hindi", "Sanskrit", "Tamil", "Telugu", "Kannada", "Marathi"}
	disputeReasons = []string{
		"Acharya arrived late", "Ritual shortened without notice", "Payment charged twice",
		"Samagri list not honored", "Booking cancelled last minute",
	}
	fraudSignals = []string{"velocity", "chargeback", "device_reuse", "payment_mismatch"}
)

// seedFixtures builds the whole universe. The epoch is pinned so series
// endpoints return the same buckets run after run.
func (st *state) seedFixtures(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	epoch := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	pick := func(ss []string) string { return ss[rng.Intn(len(ss))] }
	name := func() string { return pick(firstNames) + " " + pick(lastNames) }
	daysAgo := func(n int) time.Time { return epoch.AddDate(0, 0, -n) }

	// operator accounts
	st.accounts["ops@sevasetu.in"] = &account{
		user:        domain.AdminUser{ID: "adm-1", Email: "ops@sevasetu.in", FullName: "Operations Admin", Role: "admin"},
		password:    "sandbox-ops",
		passwordSet: true,
	}
	st.accounts["root@sevasetu.in"] = &account{
		user:        domain.AdminUser{ID: "adm-2", Email: "root@sevasetu.in", FullName: "Platform Root", Role: "superadmin"},
		password:    "sandbox-root",
		passwordSet: true,
	}
	// invited, never finished onboarding
	st.accounts["new.hire@sevasetu.in"] = &account{
		user:        domain.AdminUser{ID: "adm-3", Email: "new.hire@sevasetu.in", FullName: "New Hire", Role: "support"},
		inviteToken: "invite-new-hire",
	}

	// Grihasta accounts; roughly a third still live on the legacy shard
	for i := 0; i < 40; i++ {
		id := st.nextID("u")
		st.users = append(st.users, &sandboxUser{
			u: domain.User{
				ID:           id,
				Email:        fmt.Sprintf("user%d@example.in", i+1),
				Phone:        fmt.Sprintf("+91 98%08d", rng.Intn(100000000)),
				FullName:     name(),
				City:         pick(cities),
				Status:       statusFor(rng),
				BookingCount: rng.Intn(12),
				CreatedAt:    daysAgo(30 + rng.Intn(300)),
			},
			legacy: i%3 == 2,
		})
	}

	// Acharyas and their verification cases
	for i := 0; i < 12; i++ {
		id := st.nextID("ac")
		rating := 3.5 + rng.Float64()*1.5
		ac := &domain.Acharya{
			ID:          id,
			FullName:    "Pt. " + name(),
			Email:       fmt.Sprintf("acharya%d@sevasetu.in", i+1),
			Phone:       fmt.Sprintf("+91 97%08d", rng.Intn(100000000)),
			City:        pick(cities),
			Specialties: []string{pick(specialties), pick(specialties)},
			Languages:   []string{pick(languagesKnown), "Sanskrit"},
			Rating:      &rating,
			CreatedAt:   daysAgo(60 + rng.Intn(400)),
		}
		switch {
		case i < 7:
			ac.Verified = true
			ac.KYCStatus = domain.KYCApproved
		case i < 10:
			ac.KYCStatus = domain.KYCPending
		default:
			ac.KYCStatus = domain.KYCRejected
		}
		st.acharyas = append(st.acharyas, ac)
		st.seedKYCCase(rng, ac, daysAgo)
	}

	st.seedBookings(rng, epoch)
	st.seedModeration(rng, daysAgo)
	st.seedContent(rng, daysAgo)
	st.seedPromos(daysAgo)
	st.seedChat(daysAgo)

	st.seedAudit(rng, daysAgo)
}

// seedAudit backfills a few weeks of admin activity so the log and its
// filters have something to chew on from the first request.
func (st *state) seedAudit(rng *rand.Rand, daysAgo func(int) time.Time) {
	ops := st.accounts["ops@sevasetu.in"].user
	root := st.accounts["root@sevasetu.in"].user
	kinds := []struct {
		action, targetKind, detail string
	}{
		{"user.review", "user", "routine account review"},
		{"user.suspend", "user", "chargeback pattern"},
		{"user.reinstate", "user", "appeal accepted"},
		{"kyc.approve", "kyc_application", ""},
		{"booking.status", "booking", "confirmed -> completed"},
		{"coupon.toggle", "coupon", "active=false"},
	}
	for i := 0; i < 48; i++ {
		k := kinds[rng.Intn(len(kinds))]
		actor := ops
		if i%5 == 0 {
			actor = root
		}
		var targetID string
		switch k.targetKind {
		case "kyc_application":
			targetID = st.kyc[rng.Intn(len(st.kyc))].ID
		case "booking":
			targetID = st.bookings[rng.Intn(len(st.bookings))].ID
		case "coupon":
			targetID = st.coupons[rng.Intn(len(st.coupons))].ID
		default:
			targetID = st.users[rng.Intn(len(st.users))].u.ID
		}
		st.audit = append(st.audit, domain.AuditEntry{
			ID:         st.nextID("ae"),
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			Action:     k.action,
			TargetKind: k.targetKind,
			TargetID:   targetID,
			Detail:     k.detail,
			IP:         "10.0.0.5",
			CreatedAt:  daysAgo(28 - i/2).Add(time.Duration(rng.Intn(8)) * time.Hour),
		})
	}
}

func statusFor(rng *rand.Rand) string {
	if rng.Intn(10) == 0 {
		return domain.UserSuspended
	}
	return domain.UserActive
}

func (st *state) seedKYCCase(rng *rand.Rand, ac *domain.Acharya, daysAgo func(int) time.Time) {
	app := &domain.KYCApplication{
		ID:          st.nextID("kyc"),
		AcharyaID:   ac.ID,
		AcharyaName: ac.FullName,
		Status:      ac.KYCStatus,
		SubmittedAt: daysAgo(20 + rng.Intn(60)),
	}
	if app.Status != domain.KYCPending {
		at := app.SubmittedAt.AddDate(0, 0, 3)
		app.ReviewedAt = &at
		app.ReviewerID = "adm-1"
	}
	if app.Status == domain.KYCRejected {
		app.RejectReason = "ID document illegible"
	}
	kinds := []struct{ kind, file, ct string }{
		{"id_proof", "aadhaar.pdf", "application/pdf"},
		{"address_proof", "utility-bill.pdf", "application/pdf"},
		{"certification", "gurukula-certificate.jpg", "image/jpeg"},
	}
	for _, k := range kinds {
		docID := st.nextID("doc")
		payload := []byte(fmt.Sprintf("%s for %s (%s)", k.kind, ac.FullName, docID))
		st.docs[docID] = mediaObject{contentType: k.ct, name: k.file, data: payload}
		app.Documents = append(app.Documents, domain.KYCDocument{
			ID:          docID,
			Kind:        k.kind,
			FileName:    k.file,
			ContentType: k.ct,
			SizeBytes:   int64(len(payload)),
			URL:         "/v1/admin/kyc/docs/" + docID,
			UploadedAt:  app.SubmittedAt,
		})
	}
	st.kyc = append(st.kyc, app)
}

func (st *state) seedBookings(rng *rand.Rand, epoch time.Time) {
	statuses := []string{
		domain.BookingPending, domain.BookingConfirmed, domain.BookingConfirmed,
		domain.BookingCompleted, domain.BookingCompleted, domain.BookingCompleted,
		domain.BookingCancelled, domain.BookingInProgress,
	}
	for i := 0; i < 72; i++ {
		u := st.users[rng.Intn(len(st.users))]
		ac := st.acharyas[rng.Intn(len(st.acharyas))]
		cat := categories[rng.Intn(len(categories))]
		created := epoch.AddDate(0, 0, -rng.Intn(180))
		b := &domain.Booking{
			ID:           st.nextID("b"),
			Ref:          fmt.Sprintf("SVS-2026-%05d", i+101),
			GrihastaID:   u.u.ID,
			GrihastaName: u.u.FullName,
			AcharyaID:    ac.ID,
			AcharyaName:  ac.FullName,
			Service:      services[cat][rng.Intn(len(services[cat]))],
			Category:     cat,
			ScheduledAt:  created.AddDate(0, 0, 3+rng.Intn(20)),
			Status:       statuses[rng.Intn(len(statuses))],
			AmountPaise:  int64(1500+rng.Intn(20000)) * 100,
			Currency:     "INR",
			CreatedAt:    created,
			UpdatedAt:    created,
		}
		st.bookings = append(st.bookings, b)
	}
}

func (st *state) seedModeration(rng *rand.Rand, daysAgo func(int) time.Time) {
	for i := 0; i < 10; i++ {
		b := st.bookings[rng.Intn(len(st.bookings))]
		d := &domain.Dispute{
			ID:         st.nextID("dsp"),
			BookingID:  b.ID,
			BookingRef: b.Ref,
			RaisedByID: b.GrihastaID,
			RaisedBy:   b.GrihastaName,
			AgainstID:  b.AcharyaID,
			Reason:     disputeReasons[rng.Intn(len(disputeReasons))],
			Status:     domain.DisputeOpen,
			CreatedAt:  daysAgo(rng.Intn(45)),
		}
		switch i % 4 {
		case 1:
			d.Status = domain.DisputeUnderReview
		case 2:
			d.Status = domain.DisputeResolved
			d.Resolution = domain.ResolveRefund
			d.ResolvedBy = "adm-1"
			at := d.CreatedAt.AddDate(0, 0, 2)
			d.ResolvedAt = &at
		}
		st.disputes = append(st.disputes, d)
	}
	for i := 0; i < 8; i++ {
		u := st.users[rng.Intn(len(st.users))]
		a := &domain.FraudAlert{
			ID:        st.nextID("fa"),
			UserID:    u.u.ID,
			UserName:  u.u.FullName,
			Signal:    fraudSignals[rng.Intn(len(fraudSignals))],
			Score:     0.35 + rng.Float64()*0.6,
			Details:   "flagged by nightly risk sweep",
			Status:    domain.AlertNew,
			CreatedAt: daysAgo(rng.Intn(20)),
		}
		if i%3 == 1 {
			a.Status = domain.AlertDismissed
			a.ReviewedBy = "adm-1"
		}
		st.alerts = append(st.alerts, a)
	}
}

func (st *state) seedContent(rng *rand.Rand, daysAgo func(int) time.Time) {
	quotes := []string{
		"The Griha Pravesh ceremony was conducted beautifully, every step explained.",
		"Booked a Satyanarayan Puja in two minutes, the Acharya was punctual and thorough.",
		"Our Upanayana was handled with such care. Grateful to the whole team.",
		"Kundali consultation was detailed and unhurried.",
	}
	for i := 0; i < 12; i++ {
		rating := 4 + i%2
		st.testimonials = append(st.testimonials, &domain.Testimonial{
			ID:         st.nextID("tst"),
			AuthorName: firstNames[i%len(firstNames)] + " " + lastNames[i%len(lastNames)],
			AuthorRole: "grihasta",
			Quote:      quotes[i%len(quotes)],
			Rating:     &rating,
			Published:  i%3 != 0,
			CreatedAt:  daysAgo(rng.Intn(90)),
		})
	}
	ends := daysAgo(-14)
	st.announcements = append(st.announcements,
		&domain.Announcement{
			ID: st.nextID("ann"), Title: "Shravan month special",
			Body:     "Rudra Havan slots are open across Varanasi and Haridwar.",
			Audience: "all", Published: true, EndsAt: &ends, CreatedAt: daysAgo(10),
		},
		&domain.Announcement{
			ID: st.nextID("ann"), Title: "Payout schedule change",
			Body:     "Weekly payouts now settle on Wednesdays.",
			Audience: "acharyas", Published: true, CreatedAt: daysAgo(4),
		},
	)
}

func (st *state) seedPromos(daysAgo func(int) time.Time) {
	pct := 25
	until := daysAgo(-30)
	flat := int64(15000)
	st.coupons = append(st.coupons,
		&domain.Coupon{
			ID: st.nextID("cp"), Code: "DIWALI25", Description: "Festival season discount",
			Percent: &pct, MaxRedemptions: 500, Redeemed: 75, Active: true,
			ValidUntil: &until, CreatedAt: daysAgo(40),
		},
		&domain.Coupon{
			ID: st.nextID("cp"), Code: "FIRSTPUJA", Description: "Flat off on first booking",
			FlatPaise: &flat, MaxRedemptions: 1000, Redeemed: 214, Active: true,
			CreatedAt: daysAgo(120),
		},
		&domain.Coupon{
			ID: st.nextID("cp"), Code: "NAVRATRI10", Description: "Expired festival code",
			Percent: intPtr(10), MaxRedemptions: 300, Redeemed: 300, Active: false,
			CreatedAt: daysAgo(200),
		},
	)
	for i := 0; i < 6; i++ {
		v := &domain.Voucher{
			ID:         st.nextID("v"),
			Code:       fmt.Sprintf("SVSV-%04d", 1200+i),
			ValuePaise: 50000,
			IssuedTo:   st.users[i].u.ID,
			CreatedAt:  daysAgo(15 + i),
		}
		if i%2 == 0 {
			v.Redeemed = true
			at := v.CreatedAt.AddDate(0, 0, 5)
			v.RedeemedAt = &at
		}
		st.vouchers = append(st.vouchers, v)
	}
}

func (st *state) seedChat(daysAgo func(int) time.Time) {
	for i := 0; i < 5; i++ {
		b := st.bookings[i*3]
		th := &domain.ChatThread{
			ID:            st.nextID("th"),
			BookingID:     b.ID,
			GrihastaID:    b.GrihastaID,
			AcharyaID:     b.AcharyaID,
			LastMessageAt: daysAgo(i + 1),
		}
		st.threads = append(st.threads, th)
		st.messages[th.ID] = []domain.ChatMessage{
			{
				ID: st.nextID("msg"), ThreadID: th.ID, SenderID: b.GrihastaID,
				SenderRole: "grihasta", Body: "Namaste, what samagri should we arrange?",
				SentAt: daysAgo(i + 2),
			},
			{
				ID: st.nextID("msg"), ThreadID: th.ID, SenderID: b.AcharyaID,
				SenderRole: "acharya", Body: "Namaste, I will share the full list shortly.",
				SentAt: daysAgo(i + 1),
			},
		}
	}
}

func intPtr(v int) *int { return &v }
