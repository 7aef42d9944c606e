package sandbox

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sevasetu_admin/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{Seed: 7, TokenTTL: time.Minute, Logger: zerolog.Nop()})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	return rec
}

// unwrap asserts a success envelope and decodes its data.
func unwrap(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Detail  string          `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("success=false, detail %q", env.Detail)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func login(t *testing.T, s *Server) domain.TokenPair {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/v1/admin/auth/login", "",
		map[string]string{"email": "ops@sevasetu.in", "password": "sandbox-ops"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		User   domain.AdminUser `json:"user"`
		Tokens domain.TokenPair `json:"tokens"`
	}
	unwrap(t, rec, &out)
	if out.Tokens.AccessToken == "" || out.Tokens.RefreshToken == "" {
		t.Fatal("login returned incomplete token pair")
	}
	return out.Tokens
}

func TestServer_Login_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/admin/auth/login", "",
		map[string]string{"email": "ops@sevasetu.in", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestServer_BearerRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/admin/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	tokens := login(t, s)
	rec = doJSON(t, s, http.MethodGet, "/v1/admin/auth/me", tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token: status = %d", rec.Code)
	}
	var me domain.AdminUser
	unwrap(t, rec, &me)
	if me.Email != "ops@sevasetu.in" {
		t.Fatalf("me.Email = %q", me.Email)
	}

	s.ExpireSessions()
	rec = doJSON(t, s, http.MethodGet, "/v1/admin/auth/me", tokens.AccessToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token expired") {
		t.Fatalf("expired token body = %s", rec.Body.String())
	}
}

func TestServer_Refresh_SingleUse(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/auth/refresh", "",
		map[string]string{"refresh_token": tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	var rotated domain.TokenPair
	unwrap(t, rec, &rotated)
	if rotated.AccessToken == tokens.AccessToken {
		t.Fatal("refresh did not rotate the access token")
	}

	rec = doJSON(t, s, http.MethodGet, "/v1/admin/auth/me", rotated.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rotated token rejected: status = %d", rec.Code)
	}

	// the spent refresh token must not work a second time
	rec = doJSON(t, s, http.MethodPost, "/v1/admin/auth/refresh", "",
		map[string]string{"refresh_token": tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status = %d, want 401", rec.Code)
	}
}

func TestServer_UsersList_MixedShards(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	rec := doJSON(t, s, http.MethodGet, "/v1/admin/users?per_page=100", tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"is_suspended"`) {
		t.Error("no legacy-shard users in listing")
	}
	if !strings.Contains(body, `"full_name"`) {
		t.Error("no migrated users in listing")
	}

	var page domain.UsersPage
	unwrap(t, rec, &page)
	if page.Total != 40 || len(page.Items) != 40 {
		t.Fatalf("total = %d, items = %d, want 40", page.Total, len(page.Items))
	}
	for _, u := range page.Items {
		if u.FullName == "" {
			t.Fatalf("user %s decoded without a name", u.ID)
		}
		if u.Status != domain.UserActive && u.Status != domain.UserSuspended {
			t.Fatalf("user %s has status %q", u.ID, u.Status)
		}
	}
}

func TestServer_SuspendUser_Audited(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var page domain.UsersPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/users?status=active&per_page=1", tokens.AccessToken, nil), &page)
	if len(page.Items) == 0 {
		t.Fatal("no active users seeded")
	}
	id := page.Items[0].ID

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/users/"+id+"/suspend", tokens.AccessToken,
		map[string]string{"reason": "chargeback pattern confirmed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("suspend status = %d", rec.Code)
	}

	var u domain.User
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/users/"+id, tokens.AccessToken, nil), &u)
	if u.Status != domain.UserSuspended {
		t.Fatalf("status after suspend = %q", u.Status)
	}

	var audit domain.AuditPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/audit?action=user.suspend&limit=500", tokens.AccessToken, nil), &audit)
	found := false
	for _, a := range audit.Items {
		if a.TargetID == id && a.Detail == "chargeback pattern confirmed" {
			found = true
		}
	}
	if !found {
		t.Fatal("suspension missing from the audit log")
	}

	unwrap(t, doJSON(t, s, http.MethodPost, "/v1/admin/users/"+id+"/reinstate", tokens.AccessToken, nil), &u)
	if u.Status != domain.UserActive {
		t.Fatalf("status after reinstate = %q", u.Status)
	}
}

func TestServer_KYCApprove_OnlyOnce(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var page domain.KYCPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc?status=pending", tokens.AccessToken, nil), &page)
	if len(page.Items) == 0 {
		t.Fatal("no pending applications seeded")
	}
	id := page.Items[0].ID

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/kyc/"+id+"/approve", tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d", rec.Code)
	}
	var app domain.KYCApplication
	unwrap(t, rec, &app)
	if app.Status != domain.KYCApproved || app.ReviewedAt == nil {
		t.Fatalf("approved application = %+v", app)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/admin/kyc/"+id+"/approve", tokens.AccessToken, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second approve status = %d, want 422", rec.Code)
	}

	// the document endpoint serves the stored payload
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc/"+id, tokens.AccessToken, nil), &app)
	if len(app.Documents) == 0 {
		t.Fatal("application has no documents")
	}
	rec = doJSON(t, s, http.MethodGet, app.Documents[0].URL, tokens.AccessToken, nil)
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("document fetch: status = %d, len = %d", rec.Code, rec.Body.Len())
	}
}

func TestServer_RejectKYC_RequiresReason(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var page domain.KYCPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc?status=pending", tokens.AccessToken, nil), &page)
	if len(page.Items) == 0 {
		t.Fatal("no pending applications seeded")
	}
	id := page.Items[0].ID

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/kyc/"+id+"/reject", tokens.AccessToken,
		map[string]string{"reason": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank reason status = %d, want 422", rec.Code)
	}
}

func TestServer_KYCDocumentUpload_AppendsToCase(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var page domain.KYCPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc?status=pending", tokens.AccessToken, nil), &page)
	if len(page.Items) == 0 {
		t.Fatal("no pending applications seeded")
	}
	id := page.Items[0].ID
	var full domain.KYCApplication
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc/"+id, tokens.AccessToken, nil), &full)
	before := len(full.Documents)

	payload := []byte("bank passbook scan")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "passbook.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("kind", "bank_proof"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("content_type", "application/pdf"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/kyc/"+id+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var doc domain.KYCDocument
	unwrap(t, rec, &doc)
	if doc.Kind != "bank_proof" || doc.SizeBytes != int64(len(payload)) {
		t.Fatalf("document = %+v", doc)
	}

	// the case now carries it and the payload serves back
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/kyc/"+id, tokens.AccessToken, nil), &full)
	if len(full.Documents) != before+1 {
		t.Fatalf("documents = %d, want %d", len(full.Documents), before+1)
	}
	got := full.Documents[len(full.Documents)-1]
	if got.ID != doc.ID || got.ContentType != "application/pdf" {
		t.Fatalf("appended document = %+v", got)
	}
	rec = doJSON(t, s, http.MethodGet, doc.URL, tokens.AccessToken, nil)
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Fatalf("doc fetch: status = %d, %d bytes", rec.Code, rec.Body.Len())
	}

	// a missing kind is rejected before anything is stored
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	fw, _ = mw.CreateFormFile("file", "stray.pdf")
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/v1/admin/kyc/"+id+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec = httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("kindless upload status = %d, want 422", rec.Code)
	}
}

func TestServer_BookingStatus_Transitions(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var page domain.BookingsPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/bookings?status=completed&per_page=1", tokens.AccessToken, nil), &page)
	if len(page.Items) == 0 {
		t.Fatal("no completed bookings seeded")
	}
	id := page.Items[0].ID

	rec := doJSON(t, s, http.MethodPatch, "/v1/admin/bookings/"+id+"/status", tokens.AccessToken,
		map[string]string{"status": domain.BookingConfirmed})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("completed->confirmed status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPatch, "/v1/admin/bookings/"+id+"/status", tokens.AccessToken,
		map[string]string{"status": domain.BookingRefunded, "note": "refund approved by ops"})
	if rec.Code != http.StatusOK {
		t.Fatalf("completed->refunded status = %d, body %s", rec.Code, rec.Body.String())
	}
	var b domain.Booking
	unwrap(t, rec, &b)
	if b.Status != domain.BookingRefunded || !strings.Contains(b.Notes, "refund approved") {
		t.Fatalf("after refund: %+v", b)
	}
}

func TestServer_CouponTerms_Validated(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	pct := 20
	flat := int64(10000)

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/coupons", tokens.AccessToken,
		domain.Coupon{Code: "BOTH", Percent: &pct, FlatPaise: &flat})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("percent+flat status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/admin/coupons", tokens.AccessToken,
		domain.Coupon{Code: "NEITHER"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no terms status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/admin/coupons", tokens.AccessToken,
		domain.Coupon{Code: "ganesha15", Percent: &pct, MaxRedemptions: 100})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid coupon status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cp domain.Coupon
	unwrap(t, rec, &cp)
	if cp.Code != "GANESHA15" {
		t.Fatalf("code not normalized: %q", cp.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/admin/coupons", tokens.AccessToken,
		domain.Coupon{Code: "GANESHA15", Percent: &pct})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate code status = %d, want 409", rec.Code)
	}
}

func TestServer_AuditCursorWalk(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var all domain.AuditPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/audit?limit=500", tokens.AccessToken, nil), &all)
	if len(all.Items) == 0 {
		t.Fatal("empty audit log")
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		path := "/v1/admin/audit?limit=10"
		if cursor != "" {
			path += "&cursor=" + cursor
		}
		var page domain.AuditPage
		unwrap(t, doJSON(t, s, http.MethodGet, path, tokens.AccessToken, nil), &page)
		for _, a := range page.Items {
			if seen[a.ID] {
				t.Fatalf("entry %s served twice", a.ID)
			}
			seen[a.ID] = true
		}
		pages++
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
		if pages > 100 {
			t.Fatal("cursor walk did not terminate")
		}
	}
	if len(seen) != len(all.Items) {
		t.Fatalf("walk saw %d entries, full list has %d", len(seen), len(all.Items))
	}
}

func TestServer_AuditExport_MatchesFilter(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var filtered domain.AuditPage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/audit?action=kyc.approve&limit=500", tokens.AccessToken, nil), &filtered)

	rec := doJSON(t, s, http.MethodGet, "/v1/admin/audit/export?action=kyc.approve&format=csv", tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("export content type = %q", ct)
	}
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != len(filtered.Items)+1 {
		t.Fatalf("csv rows = %d, want %d entries plus header", len(rows), len(filtered.Items))
	}
	if rows[0][0] != "id" || rows[0][3] != "action" {
		t.Fatalf("csv header = %v", rows[0])
	}

	rec = doJSON(t, s, http.MethodGet, "/v1/admin/audit/export?action=kyc.approve&format=json", tokens.AccessToken, nil)
	var entries []domain.AuditEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("parse json export: %v", err)
	}
	if len(entries) != len(filtered.Items) {
		t.Fatalf("json export = %d entries, want %d", len(entries), len(filtered.Items))
	}

	rec = doJSON(t, s, http.MethodGet, "/v1/admin/audit/export?format=xml", tokens.AccessToken, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown format status = %d, want 422", rec.Code)
	}
}

func TestServer_Broadcast_CountsRecipients(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/admin/broadcast", tokens.AccessToken,
		map[string]string{"title": "Shravan offers", "body": "Rudra Havan slots open.", "segment": "acharyas"})
	if rec.Code != http.StatusOK {
		t.Fatalf("broadcast status = %d", rec.Code)
	}
	var b domain.Broadcast
	unwrap(t, rec, &b)
	if b.Recipients != 12 {
		t.Fatalf("recipients = %d, want 12", b.Recipients)
	}

	var sent []domain.Broadcast
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/broadcast", tokens.AccessToken, nil), &sent)
	if len(sent) != 1 || sent[0].ID != b.ID {
		t.Fatalf("broadcast listing = %+v", sent)
	}
}

func TestServer_AnalyticsSummary_MatchesFixtures(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var sum domain.Summary
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/analytics/summary", tokens.AccessToken, nil), &sum)
	if sum.TotalUsers != 40 || sum.TotalAcharyas != 12 || sum.TotalBookings != 72 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.RevenuePaise <= 0 {
		t.Fatal("no revenue over completed bookings")
	}

	var breakdown []domain.StatusCount
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/admin/analytics/status-breakdown", tokens.AccessToken, nil), &breakdown)
	var n int64
	for _, sc := range breakdown {
		n += sc.Count
	}
	if n != sum.TotalBookings {
		t.Fatalf("status breakdown sums to %d, want %d", n, sum.TotalBookings)
	}
}

func TestServer_ChatAttachment_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var threads []domain.ChatThread
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/chat/threads", tokens.AccessToken, nil), &threads)
	if len(threads) == 0 {
		t.Fatal("no chat threads seeded")
	}
	th := threads[0]

	payload := []byte("samagri checklist: ghee, sandalwood, camphor")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "samagri.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("content_type", "text/plain"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/threads/"+th.ID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var att domain.Attachment
	unwrap(t, rec, &att)
	if att.Kind != domain.AttachmentFile || att.SizeBytes != int64(len(payload)) {
		t.Fatalf("attachment = %+v", att)
	}

	rec = doJSON(t, s, http.MethodGet, att.URL, tokens.AccessToken, nil)
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Fatalf("media fetch: status = %d, %d bytes", rec.Code, rec.Body.Len())
	}

	// the upload also lands as a message in the thread
	var msgs []domain.ChatMessage
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/chat/threads/"+th.ID+"/messages", tokens.AccessToken, nil), &msgs)
	last := msgs[len(msgs)-1]
	if last.Attachment == nil || last.Attachment.ID != att.ID {
		t.Fatalf("last message = %+v", last)
	}
}

func TestServer_VoiceUpload_RequiresDuration(t *testing.T) {
	s := newTestServer(t)
	tokens := login(t, s)

	var threads []domain.ChatThread
	unwrap(t, doJSON(t, s, http.MethodGet, "/v1/chat/threads", tokens.AccessToken, nil), &threads)
	th := threads[0]

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("voice", "voice-note.webm")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("webm bytes")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/threads/"+th.ID+"/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("voice upload without duration: status = %d, want 422", rec.Code)
	}
}
