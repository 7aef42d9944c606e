package coreapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/credstore"
	"sevasetu_admin/internal/domain"
)

func authedClient(t *testing.T, base string) *coreapi.Client {
	t.Helper()
	creds := credstore.NewMemStore()
	_ = creds.SetTokens("tok-1", "ref-1")
	return newTestClient(t, base, creds, nil)
}

func TestUsers_DecodesMigrationEraFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asha", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		// one record per backend vintage
		writeJSON(w, 200, map[string]any{
			"success": true,
			"data": map[string]any{
				"items": []map[string]any{
					{"id": "u1", "full_name": "Asha Rao", "status": "active", "booking_count": 4},
					{"id": "u2", "name": "Ravi Iyer", "is_suspended": true, "bookings": 9},
				},
				"total": 2, "page": 2, "per_page": 20,
			},
		})
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	page, err := cl.Users(context.Background(), domain.UserQuery{Search: "asha", Page: 2})
	assert.NoError(t, err)
	if assert.Len(t, page.Items, 2) {
		assert.Equal(t, "Asha Rao", page.Items[0].FullName)
		assert.Equal(t, domain.UserActive, page.Items[0].Status)
		assert.Equal(t, "Ravi Iyer", page.Items[1].FullName)
		assert.Equal(t, domain.UserSuspended, page.Items[1].Status)
		assert.Equal(t, 9, page.Items[1].BookingCount)
	}
	assert.Equal(t, 2, page.Total)
}

func TestDashboard_FansOutOverAllAggregates(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	serve := func(path string, v any) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(w, 200, map[string]any{"success": true, "data": v})
		})
	}
	serve("/v1/admin/analytics/summary", map[string]any{"total_users": 1200, "total_bookings": 450, "revenue_paise": 8_75_00_000})
	serve("/v1/admin/analytics/booking-trend", []map[string]any{{"period": "2026-07", "value": 210}})
	serve("/v1/admin/analytics/revenue-trend", []map[string]any{{"period": "2026-07", "value": 410000}})
	serve("/v1/admin/analytics/user-growth", []map[string]any{{"period": "2026-07", "value": 80}})
	serve("/v1/admin/analytics/acharya-growth", []map[string]any{{"period": "2026-07", "value": 7}})
	serve("/v1/admin/analytics/status-breakdown", []map[string]any{
		{"status": "completed", "count": 300}, {"status": "cancelled", "count": 100},
	})
	serve("/v1/admin/analytics/top-acharyas", []map[string]any{{"acharya_id": "ac1", "name": "Pt. Sharma", "bookings": 52}})
	serve("/v1/admin/analytics/dispute-stats", map[string]any{"open": 3, "resolved": 40})
	serve("/v1/admin/analytics/coupon-redemptions", []map[string]any{{"code": "DIWALI25", "redemptions": 75}})
	serve("/v1/admin/analytics/category-split", []map[string]any{{"category": "griha-pravesh", "bookings": 120}})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	d, err := cl.Dashboard(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 10, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 1200, d.Summary.TotalUsers)
	assert.Len(t, d.BookingTrend, 1)
	assert.Len(t, d.StatusBreakdown, 2)
	assert.EqualValues(t, 3, d.DisputeStats.Open)
	assert.Equal(t, "DIWALI25", d.CouponRedemptions[0].Code)
	assert.False(t, d.GeneratedAt.IsZero())
}

func TestDashboard_OneFailureFailsTheJoin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/admin/analytics/dispute-stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]string{"detail": "aggregation timeout"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/summary") {
			writeJSON(w, 200, map[string]any{"success": true, "data": map[string]any{}})
			return
		}
		writeJSON(w, 200, map[string]any{"success": true, "data": []any{}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	_, err := cl.Dashboard(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation timeout")
}

func TestExportAudit_CarriesViewFilter(t *testing.T) {
	const csvBody = "id,actor,action\nae1,ops@sevasetu.in,user.suspend\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/admin/audit/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "user.suspend", r.URL.Query().Get("action"))
		assert.Equal(t, "ops@sevasetu.in", r.URL.Query().Get("actor"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, csvBody)
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	rc, err := cl.ExportAudit(context.Background(), domain.AuditQuery{
		Actor:  "ops@sevasetu.in",
		Action: "user.suspend",
	}, "csv")
	assert.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, csvBody, string(b))
}

func TestClient_DecodesBrotliResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		payload, _ := json.Marshal(map[string]any{
			"success": true,
			"data": map[string]any{
				"items": []map[string]any{{"id": "b1", "status": "confirmed", "amount_paise": 150000}},
				"total": 1, "page": 1, "per_page": 20,
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write(payload)
		_ = bw.Close()
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	page, err := cl.Bookings(context.Background(), domain.BookingQuery{})
	assert.NoError(t, err)
	if assert.Len(t, page.Items, 1) {
		assert.Equal(t, "confirmed", page.Items[0].Status)
		assert.EqualValues(t, 150000, page.Items[0].AmountPaise)
	}
}

func TestUploadVoiceNote_MultipartShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/threads/th1/voice", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "21", r.FormValue("duration_seconds"))
		f, hdr, err := r.FormFile("voice")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.Equal(t, "voice-note.webm", hdr.Filename)
			b, _ := io.ReadAll(f)
			assert.Equal(t, "fake-opus-bytes", string(b))
		}
		writeJSON(w, 201, map[string]any{
			"success": true,
			"data": map[string]any{
				"id": "att1", "kind": "voice", "file_name": "voice-note.webm",
				"size_bytes": 15, "duration_seconds": 21, "url": "/media/att1",
			},
		})
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	att, err := cl.UploadVoiceNote(context.Background(), "th1", 21, strings.NewReader("fake-opus-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, domain.AttachmentVoice, att.Kind)
	if assert.NotNil(t, att.DurationSeconds) {
		assert.Equal(t, 21, *att.DurationSeconds)
	}
}

func TestUploadKYCDocument_MultipartShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/admin/kyc/kyc1/documents", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bank_proof", r.FormValue("kind"))
		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.Equal(t, "passbook.pdf", hdr.Filename)
			b, _ := io.ReadAll(f)
			assert.Equal(t, "passbook bytes", string(b))
		}
		writeJSON(w, 200, map[string]any{
			"success": true,
			"data": map[string]any{
				"id": "doc9", "kind": "bank_proof", "file_name": "passbook.pdf",
				"content_type": "application/pdf", "size_bytes": 14,
				"url": "/v1/admin/kyc/docs/doc9",
			},
		})
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	doc, err := cl.UploadKYCDocument(context.Background(), "kyc1", "bank_proof", "passbook.pdf", "application/pdf", strings.NewReader("passbook bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "doc9", doc.ID)
	assert.Equal(t, "bank_proof", doc.Kind)
	assert.Equal(t, "/v1/admin/kyc/docs/doc9", doc.URL)
}

func TestUploadAttachment_RejectsOversize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("oversize upload must not reach the server")
	}))
	defer ts.Close()

	cl := authedClient(t, ts.URL)
	big := io.LimitReader(neverEnding('x'), 26<<20)
	_, err := cl.UploadAttachment(context.Background(), "th1", "dump.bin", "application/octet-stream", big)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}
