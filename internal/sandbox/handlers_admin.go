package sandbox

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sevasetu_admin/internal/domain"
)

// ---- users ----

// legacyUserJSON renders a user the way the pre-migration shard still does:
// name instead of full_name, an is_suspended flag instead of status.
func legacyUserJSON(u domain.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"email":        u.Email,
		"phone":        u.Phone,
		"name":         u.FullName,
		"city":         u.City,
		"is_suspended": u.Status == domain.UserSuspended,
		"bookings":     u.BookingCount,
		"created_at":   u.CreatedAt,
	}
}

func (su *sandboxUser) render() any {
	if su.legacy {
		return legacyUserJSON(su.u)
	}
	return su.u
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	status := r.URL.Query().Get("status")
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*sandboxUser
	for _, su := range st.users {
		if status != "" && su.u.Status != status {
			continue
		}
		if search != "" {
			hay := strings.ToLower(su.u.FullName + " " + su.u.Email + " " + su.u.Phone)
			if !strings.Contains(hay, search) {
				continue
			}
		}
		matched = append(matched, su)
	}

	start, end := paginate(len(matched), page, perPage)
	items := make([]any, 0, end-start)
	for _, su := range matched[start:end] {
		items = append(items, su.render())
	}
	writeData(w, http.StatusOK, map[string]any{
		"items":    items,
		"total":    len(matched),
		"page":     page,
		"per_page": perPage,
	})
}

func (st *state) findUser(id string) *sandboxUser {
	for _, su := range st.users {
		if su.u.ID == id {
			return su
		}
	}
	return nil
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	su := st.findUser(chi.URLParam(r, "id"))
	if su == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	writeData(w, http.StatusOK, su.render())
}

func (s *Server) suspendUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = decodeInto(r, &in)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	su := st.findUser(chi.URLParam(r, "id"))
	if su == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	su.u.Status = domain.UserSuspended
	st.record(s.actor(r), "user.suspend", "user", su.u.ID, in.Reason, remoteIP(r))
	writeData(w, http.StatusOK, su.render())
}

func (s *Server) reinstateUser(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	su := st.findUser(chi.URLParam(r, "id"))
	if su == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	su.u.Status = domain.UserActive
	st.record(s.actor(r), "user.reinstate", "user", su.u.ID, "", remoteIP(r))
	writeData(w, http.StatusOK, su.render())
}

// ---- acharyas and KYC ----

func (s *Server) listAcharyas(w http.ResponseWriter, r *http.Request) {
	var verified *bool
	if raw := r.URL.Query().Get("verified"); raw != "" {
		v := raw == "true"
		verified = &v
	}
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.Acharya
	for _, ac := range st.acharyas {
		if verified != nil && ac.Verified != *verified {
			continue
		}
		matched = append(matched, ac)
	}
	start, end := paginate(len(matched), page, perPage)
	writeData(w, http.StatusOK, matched[start:end])
}

func (s *Server) listKYC(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.KYCApplication
	for _, app := range st.kyc {
		if status != "" && app.Status != status {
			continue
		}
		matched = append(matched, app)
	}
	// pending cases first, then newest submissions
	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := matched[i].Status == domain.KYCPending, matched[j].Status == domain.KYCPending
		if pi != pj {
			return pi
		}
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	start, end := paginate(len(matched), page, perPage)
	items := make([]domain.KYCApplication, 0, end-start)
	for _, app := range matched[start:end] {
		// list view omits the document payloads
		trimmed := *app
		trimmed.Documents = nil
		items = append(items, trimmed)
	}
	writeData(w, http.StatusOK, map[string]any{
		"items":    items,
		"total":    len(matched),
		"page":     page,
		"per_page": perPage,
	})
}

func (st *state) findKYC(id string) *domain.KYCApplication {
	for _, app := range st.kyc {
		if app.ID == id {
			return app
		}
	}
	return nil
}

func (st *state) findAcharya(id string) *domain.Acharya {
	for _, ac := range st.acharyas {
		if ac.ID == id {
			return ac
		}
	}
	return nil
}

func (s *Server) getKYC(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	app := st.findKYC(chi.URLParam(r, "id"))
	if app == nil {
		writeErr(w, http.StatusNotFound, "application not found")
		return
	}
	writeData(w, http.StatusOK, app)
}

func (s *Server) approveKYC(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	app := st.findKYC(chi.URLParam(r, "id"))
	if app == nil {
		writeErr(w, http.StatusNotFound, "application not found")
		return
	}
	if app.Status != domain.KYCPending {
		writeErr(w, http.StatusUnprocessableEntity, "application already decided")
		return
	}
	now := st.now().UTC()
	actor := s.actor(r)
	app.Status = domain.KYCApproved
	app.ReviewedAt = &now
	app.ReviewerID = actor.ID
	if ac := st.findAcharya(app.AcharyaID); ac != nil {
		ac.Verified = true
		ac.KYCStatus = domain.KYCApproved
	}
	st.record(actor, "kyc.approve", "kyc_application", app.ID, "", remoteIP(r))
	writeData(w, http.StatusOK, app)
}

func (s *Server) rejectKYC(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = decodeInto(r, &in)
	if strings.TrimSpace(in.Reason) == "" {
		writeErr(w, http.StatusUnprocessableEntity, "reason is required")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	app := st.findKYC(chi.URLParam(r, "id"))
	if app == nil {
		writeErr(w, http.StatusNotFound, "application not found")
		return
	}
	if app.Status != domain.KYCPending {
		writeErr(w, http.StatusUnprocessableEntity, "application already decided")
		return
	}
	now := st.now().UTC()
	actor := s.actor(r)
	app.Status = domain.KYCRejected
	app.RejectReason = in.Reason
	app.ReviewedAt = &now
	app.ReviewerID = actor.ID
	if ac := st.findAcharya(app.AcharyaID); ac != nil {
		ac.Verified = false
		ac.KYCStatus = domain.KYCRejected
	}
	st.record(actor, "kyc.reject", "kyc_application", app.ID, in.Reason, remoteIP(r))
	writeData(w, http.StatusOK, app)
}

// serveKYCDoc streams a stored verification document, no envelope.
func (s *Server) serveKYCDoc(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	doc, ok := st.docs[chi.URLParam(r, "id")]
	st.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "document not found")
		return
	}
	w.Header().Set("Content-Type", doc.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.name))
	_, _ = w.Write(doc.data)
}

// uploadKYCDoc accepts a multipart document for a pending case, so reviewers
// can attach paperwork received out of band before deciding it.
func (s *Server) uploadKYCDoc(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, errMsg := readUpload(r, "file")
	if errMsg != "" {
		status := http.StatusUnprocessableEntity
		if errMsg == "attachment too large" {
			status = http.StatusRequestEntityTooLarge
		}
		writeErr(w, status, errMsg)
		return
	}
	kind := strings.TrimSpace(r.FormValue("kind"))
	if kind == "" {
		writeErr(w, http.StatusUnprocessableEntity, "kind is required")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	app := st.findKYC(chi.URLParam(r, "id"))
	if app == nil {
		writeErr(w, http.StatusNotFound, "application not found")
		return
	}
	if app.Status != domain.KYCPending {
		writeErr(w, http.StatusUnprocessableEntity, "application already decided")
		return
	}

	id := st.nextID("doc")
	st.docs[id] = mediaObject{contentType: contentType, name: filename, data: data}
	doc := domain.KYCDocument{
		ID:          id,
		Kind:        kind,
		FileName:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		URL:         "/v1/admin/kyc/docs/" + id,
		UploadedAt:  st.now().UTC(),
	}
	app.Documents = append(app.Documents, doc)
	st.record(s.actor(r), "kyc.document_upload", "kyc_application", app.ID, kind, remoteIP(r))
	writeData(w, http.StatusOK, doc)
}

// ---- bookings ----

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, category, acharyaID := q.Get("status"), q.Get("category"), q.Get("acharya_id")
	from, to := timeParam(r, "from"), timeParam(r, "to")
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.Booking
	for _, b := range st.bookings {
		if status != "" && b.Status != status {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		if acharyaID != "" && b.AcharyaID != acharyaID {
			continue
		}
		if from != nil && b.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && b.CreatedAt.After(*to) {
			continue
		}
		matched = append(matched, b)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := paginate(len(matched), page, perPage)
	writeData(w, http.StatusOK, map[string]any{
		"items":    matched[start:end],
		"total":    len(matched),
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) bookingStats(w http.ResponseWriter, r *http.Request) {
	from, to := timeParam(r, "from"), timeParam(r, "to")

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var out domain.BookingStats
	for _, b := range st.bookings {
		if from != nil && b.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && b.CreatedAt.After(*to) {
			continue
		}
		out.Total++
		switch b.Status {
		case domain.BookingPending:
			out.Pending++
		case domain.BookingConfirmed:
			out.Confirmed++
		case domain.BookingCompleted:
			out.Completed++
			out.RevenuePaise += b.AmountPaise
		case domain.BookingCancelled:
			out.Cancelled++
		}
	}
	writeData(w, http.StatusOK, out)
}

func (st *state) findBooking(id string) *domain.Booking {
	for _, b := range st.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	b := st.findBooking(chi.URLParam(r, "id"))
	if b == nil {
		writeErr(w, http.StatusNotFound, "booking not found")
		return
	}
	writeData(w, http.StatusOK, b)
}

// bookingTransitions enumerates the legal lifecycle moves.
var bookingTransitions = map[string][]string{
	domain.BookingPending:    {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed:  {domain.BookingInProgress, domain.BookingCompleted, domain.BookingCancelled},
	domain.BookingInProgress: {domain.BookingCompleted, domain.BookingCancelled},
	domain.BookingCompleted:  {domain.BookingRefunded},
	domain.BookingCancelled:  {},
	domain.BookingRefunded:   {},
}

func (s *Server) setBookingStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	_, known := bookingTransitions[in.Status]
	if !known {
		writeErr(w, http.StatusUnprocessableEntity, "unknown booking status "+in.Status)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	b := st.findBooking(chi.URLParam(r, "id"))
	if b == nil {
		writeErr(w, http.StatusNotFound, "booking not found")
		return
	}
	legal := false
	for _, next := range bookingTransitions[b.Status] {
		if next == in.Status {
			legal = true
			break
		}
	}
	if !legal {
		writeErr(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot move booking from %s to %s", b.Status, in.Status))
		return
	}
	detail := b.Status + " -> " + in.Status
	b.Status = in.Status
	b.UpdatedAt = st.now().UTC()
	if in.Note != "" {
		if b.Notes != "" {
			b.Notes += "\n"
		}
		b.Notes += in.Note
	}
	st.record(s.actor(r), "booking.status", "booking", b.ID, detail, remoteIP(r))
	writeData(w, http.StatusOK, b)
}

// ---- disputes and fraud alerts ----

var disputeRank = map[string]int{
	domain.DisputeOpen:        0,
	domain.DisputeUnderReview: 1,
	domain.DisputeResolved:    2,
	domain.DisputeRejected:    3,
}

func (s *Server) listDisputes(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.Dispute
	for _, d := range st.disputes {
		if status != "" && d.Status != status {
			continue
		}
		matched = append(matched, d)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if disputeRank[matched[i].Status] != disputeRank[matched[j].Status] {
			return disputeRank[matched[i].Status] < disputeRank[matched[j].Status]
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := paginate(len(matched), page, perPage)
	writeData(w, http.StatusOK, map[string]any{
		"items":    matched[start:end],
		"total":    len(matched),
		"page":     page,
		"per_page": perPage,
	})
}

func (st *state) findDispute(id string) *domain.Dispute {
	for _, d := range st.disputes {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Server) getDispute(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	d := st.findDispute(chi.URLParam(r, "id"))
	if d == nil {
		writeErr(w, http.StatusNotFound, "dispute not found")
		return
	}
	writeData(w, http.StatusOK, d)
}

func (s *Server) resolveDispute(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Resolution string `json:"resolution"`
		Note       string `json:"note"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	switch in.Resolution {
	case domain.ResolveRefund, domain.ResolveDismiss, domain.ResolveWarn:
	default:
		writeErr(w, http.StatusUnprocessableEntity, "unknown resolution "+in.Resolution)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	d := st.findDispute(chi.URLParam(r, "id"))
	if d == nil {
		writeErr(w, http.StatusNotFound, "dispute not found")
		return
	}
	if d.Status != domain.DisputeOpen && d.Status != domain.DisputeUnderReview {
		writeErr(w, http.StatusUnprocessableEntity, "dispute already closed")
		return
	}
	now := st.now().UTC()
	actor := s.actor(r)
	if in.Resolution == domain.ResolveDismiss {
		d.Status = domain.DisputeRejected
	} else {
		d.Status = domain.DisputeResolved
	}
	d.Resolution = in.Resolution
	d.ResolvedBy = actor.ID
	d.ResolvedAt = &now
	if in.Note != "" {
		d.Description = strings.TrimSpace(d.Description + "\n[resolution] " + in.Note)
	}
	st.record(actor, "dispute.resolve", "dispute", d.ID, in.Resolution, remoteIP(r))
	writeData(w, http.StatusOK, d)
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.FraudAlert
	for _, a := range st.alerts {
		if status != "" && a.Status != status {
			continue
		}
		matched = append(matched, a)
	}
	// hottest signals first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	start, end := paginate(len(matched), page, perPage)
	writeData(w, http.StatusOK, map[string]any{
		"items":    matched[start:end],
		"total":    len(matched),
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) setAlertStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	switch in.Status {
	case domain.AlertConfirmed, domain.AlertDismissed, domain.AlertEscalated:
	default:
		writeErr(w, http.StatusUnprocessableEntity, "unknown alert status "+in.Status)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var alert *domain.FraudAlert
	for _, a := range st.alerts {
		if a.ID == chi.URLParam(r, "id") {
			alert = a
			break
		}
	}
	if alert == nil {
		writeErr(w, http.StatusNotFound, "alert not found")
		return
	}
	if alert.Status != domain.AlertNew {
		writeErr(w, http.StatusUnprocessableEntity, "alert already reviewed")
		return
	}
	now := st.now().UTC()
	actor := s.actor(r)
	alert.Status = in.Status
	alert.ReviewedBy = actor.ID
	alert.ReviewedAt = &now
	st.record(actor, "alert.review", "fraud_alert", alert.ID, in.Status, remoteIP(r))
	writeData(w, http.StatusOK, alert)
}

// ---- testimonials and announcements ----

func (s *Server) listTestimonials(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published") == "true"
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.Testimonial
	for _, t := range st.testimonials {
		if publishedOnly && !t.Published {
			continue
		}
		matched = append(matched, t)
	}
	start, end := paginate(len(matched), page, perPage)
	writeData(w, http.StatusOK, matched[start:end])
}

func (s *Server) publishTestimonial(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Published bool `json:"published"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, t := range st.testimonials {
		if t.ID == chi.URLParam(r, "id") {
			t.Published = in.Published
			st.record(s.actor(r), "testimonial.publish", "testimonial", t.ID,
				fmt.Sprintf("published=%t", in.Published), remoteIP(r))
			writeData(w, http.StatusOK, t)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "testimonial not found")
}

func (s *Server) deleteTestimonial(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i, t := range st.testimonials {
		if t.ID == id {
			st.testimonials = append(st.testimonials[:i], st.testimonials[i+1:]...)
			st.record(s.actor(r), "testimonial.delete", "testimonial", id, "", remoteIP(r))
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "testimonial not found")
}

func (s *Server) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*domain.Announcement, len(st.announcements))
	copy(out, st.announcements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	writeData(w, http.StatusOK, out)
}

func validAudience(a string) bool {
	switch a {
	case "all", "grihastas", "acharyas":
		return true
	}
	return false
}

func (s *Server) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in domain.Announcement
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		writeErr(w, http.StatusUnprocessableEntity, "title and body are required")
		return
	}
	if in.Audience == "" {
		in.Audience = "all"
	}
	if !validAudience(in.Audience) {
		writeErr(w, http.StatusUnprocessableEntity, "unknown audience "+in.Audience)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	in.ID = st.nextID("ann")
	in.CreatedAt = st.now().UTC()
	st.announcements = append(st.announcements, &in)
	st.record(s.actor(r), "announcement.create", "announcement", in.ID, in.Title, remoteIP(r))
	writeData(w, http.StatusOK, &in)
}

func (s *Server) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in domain.Announcement
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.Audience != "" && !validAudience(in.Audience) {
		writeErr(w, http.StatusUnprocessableEntity, "unknown audience "+in.Audience)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, a := range st.announcements {
		if a.ID == chi.URLParam(r, "id") {
			if in.Title != "" {
				a.Title = in.Title
			}
			if in.Body != "" {
				a.Body = in.Body
			}
			if in.Audience != "" {
				a.Audience = in.Audience
			}
			a.StartsAt = in.StartsAt
			a.EndsAt = in.EndsAt
			a.Published = in.Published
			st.record(s.actor(r), "announcement.update", "announcement", a.ID, a.Title, remoteIP(r))
			writeData(w, http.StatusOK, a)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "announcement not found")
}

func (s *Server) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i, a := range st.announcements {
		if a.ID == id {
			st.announcements = append(st.announcements[:i], st.announcements[i+1:]...)
			st.record(s.actor(r), "announcement.delete", "announcement", id, "", remoteIP(r))
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "announcement not found")
}

// ---- coupons and vouchers ----

func validateCouponTerms(c *domain.Coupon) string {
	if strings.TrimSpace(c.Code) == "" {
		return "code is required"
	}
	if (c.Percent == nil) == (c.FlatPaise == nil) {
		return "set exactly one of percent or flat_paise"
	}
	if c.Percent != nil && (*c.Percent < 1 || *c.Percent > 100) {
		return "percent must be between 1 and 100"
	}
	if c.FlatPaise != nil && *c.FlatPaise <= 0 {
		return "flat_paise must be positive"
	}
	return ""
}

func (s *Server) listCoupons(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	var matched []*domain.Coupon
	for _, c := range st.coupons {
		if activeOnly && !c.Active {
			continue
		}
		matched = append(matched, c)
	}
	writeData(w, http.StatusOK, matched)
}

func (s *Server) createCoupon(w http.ResponseWriter, r *http.Request) {
	var in domain.Coupon
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if msg := validateCouponTerms(&in); msg != "" {
		writeErr(w, http.StatusUnprocessableEntity, msg)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, c := range st.coupons {
		if c.Code == in.Code {
			writeErr(w, http.StatusConflict, "coupon code already exists")
			return
		}
	}
	in.ID = st.nextID("cp")
	in.Redeemed = 0
	in.CreatedAt = st.now().UTC()
	st.coupons = append(st.coupons, &in)
	st.record(s.actor(r), "coupon.create", "coupon", in.ID, in.Code, remoteIP(r))
	writeData(w, http.StatusOK, &in)
}

func (s *Server) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var in domain.Coupon
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, c := range st.coupons {
		if c.ID == chi.URLParam(r, "id") {
			// code and redemption count are immutable
			in.Code = c.Code
			if msg := validateCouponTerms(&in); msg != "" {
				writeErr(w, http.StatusUnprocessableEntity, msg)
				return
			}
			c.Description = in.Description
			c.Percent = in.Percent
			c.FlatPaise = in.FlatPaise
			c.MaxRedemptions = in.MaxRedemptions
			c.ValidFrom = in.ValidFrom
			c.ValidUntil = in.ValidUntil
			c.Active = in.Active
			st.record(s.actor(r), "coupon.update", "coupon", c.ID, c.Code, remoteIP(r))
			writeData(w, http.StatusOK, c)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "coupon not found")
}

func (s *Server) toggleCoupon(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Active bool `json:"active"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, c := range st.coupons {
		if c.ID == chi.URLParam(r, "id") {
			c.Active = in.Active
			st.record(s.actor(r), "coupon.toggle", "coupon", c.ID,
				fmt.Sprintf("active=%t", in.Active), remoteIP(r))
			writeData(w, http.StatusOK, c)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "coupon not found")
}

func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i, c := range st.coupons {
		if c.ID == id {
			st.coupons = append(st.coupons[:i], st.coupons[i+1:]...)
			st.record(s.actor(r), "coupon.delete", "coupon", id, c.Code, remoteIP(r))
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "coupon not found")
}

func (s *Server) listVouchers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	start, end := paginate(len(st.vouchers), page, perPage)
	writeData(w, http.StatusOK, st.vouchers[start:end])
}

func (s *Server) issueVoucher(w http.ResponseWriter, r *http.Request) {
	var in domain.Voucher
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.ValuePaise <= 0 {
		writeErr(w, http.StatusUnprocessableEntity, "value_paise must be positive")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	if in.IssuedTo != "" && st.findUser(in.IssuedTo) == nil {
		writeErr(w, http.StatusUnprocessableEntity, "issued_to references an unknown user")
		return
	}
	in.ID = st.nextID("v")
	if in.Code == "" {
		in.Code = fmt.Sprintf("SVSV-%04d", 1200+st.seq)
	}
	in.Redeemed = false
	in.RedeemedAt = nil
	in.CreatedAt = st.now().UTC()
	st.vouchers = append(st.vouchers, &in)
	st.record(s.actor(r), "voucher.issue", "voucher", in.ID, in.Code, remoteIP(r))
	writeData(w, http.StatusOK, &in)
}

func (s *Server) revokeVoucher(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i, v := range st.vouchers {
		if v.ID == id {
			if v.Redeemed {
				writeErr(w, http.StatusUnprocessableEntity, "voucher already redeemed")
				return
			}
			st.vouchers = append(st.vouchers[:i], st.vouchers[i+1:]...)
			st.record(s.actor(r), "voucher.revoke", "voucher", id, v.Code, remoteIP(r))
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "voucher not found")
}

// ---- audit log ----

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 500
)

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(c string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(c)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// filteredAudit returns matching entries newest first. Caller holds the
// lock.
func (st *state) filteredAudit(r *http.Request) []domain.AuditEntry {
	q := r.URL.Query()
	actor, action, targetKind := q.Get("actor"), q.Get("action"), q.Get("target_kind")
	from, to := timeParam(r, "from"), timeParam(r, "to")

	var matched []domain.AuditEntry
	for i := len(st.audit) - 1; i >= 0; i-- {
		a := st.audit[i]
		if actor != "" && a.ActorID != actor && a.ActorEmail != actor {
			continue
		}
		if action != "" && a.Action != action {
			continue
		}
		if targetKind != "" && a.TargetKind != targetKind {
			continue
		}
		if from != nil && a.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && a.CreatedAt.After(*to) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", auditDefaultLimit)
	if limit < 1 {
		limit = auditDefaultLimit
	}
	if limit > auditMaxLimit {
		limit = auditMaxLimit
	}

	var after string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		id, ok := decodeCursor(raw)
		if !ok {
			writeErr(w, http.StatusUnprocessableEntity, "malformed cursor")
			return
		}
		after = id
	}

	st := s.state
	st.mu.Lock()
	matched := st.filteredAudit(r)
	st.mu.Unlock()

	// resume strictly after the cursor entry
	if after != "" {
		idx := -1
		for i, a := range matched {
			if a.ID == after {
				idx = i
				break
			}
		}
		matched = matched[idx+1:]
	}

	page := domain.AuditPage{}
	if len(matched) > limit {
		page.Items = matched[:limit]
		c := encodeCursor(page.Items[limit-1].ID)
		page.NextCursor = &c
	} else {
		page.Items = matched
	}
	if page.Items == nil {
		page.Items = []domain.AuditEntry{}
	}
	writeData(w, http.StatusOK, page)
}

// exportAudit renders the filtered log as a CSV or JSON download. The same
// filter parameters as the list endpoint apply; format picks the rendering.
func (s *Server) exportAudit(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		writeErr(w, http.StatusUnprocessableEntity, "format must be csv or json")
		return
	}

	st := s.state
	st.mu.Lock()
	matched := st.filteredAudit(r)
	st.record(s.actor(r), "audit.export", "audit", "", format, remoteIP(r))
	st.mu.Unlock()

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-export.json"`)
		if matched == nil {
			matched = []domain.AuditEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(matched)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-export.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "actor_id", "actor_email", "action",
		"target_kind", "target_id", "detail", "ip", "created_at",
	})
	for _, a := range matched {
		_ = cw.Write([]string{
			a.ID, a.ActorID, a.ActorEmail, a.Action,
			a.TargetKind, a.TargetID, a.Detail, a.IP,
			a.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}

// ---- broadcast ----

func (s *Server) sendBroadcast(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		Segment string `json:"segment"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		writeErr(w, http.StatusUnprocessableEntity, "title and body are required")
		return
	}
	if !validAudience(in.Segment) {
		writeErr(w, http.StatusUnprocessableEntity, "unknown segment "+in.Segment)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	recipients := 0
	switch in.Segment {
	case "grihastas":
		recipients = len(st.users)
	case "acharyas":
		recipients = len(st.acharyas)
	default:
		recipients = len(st.users) + len(st.acharyas)
	}
	b := domain.Broadcast{
		ID:         st.nextID("bc"),
		Title:      in.Title,
		Body:       in.Body,
		Segment:    in.Segment,
		Recipients: recipients,
		SentAt:     st.now().UTC(),
	}
	st.broadcasts = append(st.broadcasts, b)
	st.record(s.actor(r), "broadcast.send", "broadcast", b.ID, in.Title, remoteIP(r))
	writeData(w, http.StatusOK, b)
}

func (s *Server) listBroadcasts(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]domain.Broadcast, 0, len(st.broadcasts))
	for i := len(st.broadcasts) - 1; i >= 0; i-- {
		out = append(out, st.broadcasts[i])
	}
	writeData(w, http.StatusOK, out)
}
