//go:build integration || !unit

package integration

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/app"
	"sevasetu_admin/internal/credstore"
	"sevasetu_admin/internal/domain"
	"sevasetu_admin/internal/sandbox"
)

// ---------- wiring ----------

type harness struct {
	sandbox  *sandbox.Server
	ts       *httptest.Server
	store    *credstore.FileStore
	client   *coreapi.Client
	authFail *int32
}

// newHarness stands up the full stack: sandbox API over a real listener, a
// file-backed credential store in a temp dir, and a client wired like
// adminctl wires it.
func newHarness(t *testing.T) *harness {
	t.Helper()

	sb := sandbox.New(sandbox.Options{Seed: 11, TokenTTL: time.Minute, Logger: zerolog.Nop()})
	ts := httptest.NewServer(sb.Mux())
	t.Cleanup(ts.Close)

	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("credstore: %v", err)
	}

	var authFails int32
	client, err := coreapi.New(coreapi.Config{
		BaseURL: ts.URL,
		Creds:   store,
		OnAuthFailure: func(error) {
			atomic.AddInt32(&authFails, 1)
		},
		Timeout: 10 * time.Second,
		RPS:     200, // the sandbox is local; no point throttling the test
		Burst:   50,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return &harness{sandbox: sb, ts: ts, store: store, client: client, authFail: &authFails}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if _, err := h.client.Login(context.Background(), "ops@sevasetu.in", "sandbox-ops"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// ---------- the tests ----------

func TestE2E_SessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	if h.store.AccessToken() == "" || h.store.RefreshToken() == "" {
		t.Fatal("login did not persist the token pair")
	}
	me, err := h.client.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "ops@sevasetu.in" {
		t.Fatalf("me.Email = %q", me.Email)
	}

	// the listing crosses both backend shards; every user must decode
	users, err := h.client.Users(ctx, domain.UserQuery{PerPage: 100})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if users.Total == 0 {
		t.Fatal("no users in sandbox")
	}
	for _, u := range users.Items {
		if u.FullName == "" || (u.Status != domain.UserActive && u.Status != domain.UserSuspended) {
			t.Fatalf("user decoded badly: %+v", u)
		}
	}

	// expire every access token server-side, then hammer the API from
	// three goroutines; the client must run exactly one refresh episode
	before := h.store.AccessToken()
	h.sandbox.ExpireSessions()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.client.Users(context.Background(), domain.UserQuery{PerPage: 1})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d after expiry: %v", i, err)
		}
	}
	if h.store.AccessToken() == before || h.store.AccessToken() == "" {
		t.Fatal("access token was not rotated")
	}
	if n := atomic.LoadInt32(h.authFail); n != 0 {
		t.Fatalf("auth failure callback fired %d times on a recoverable expiry", n)
	}

	// the sandbox records every token grant; one expiry episode means
	// exactly one refresh, no matter how many calls hit the 401
	page, err := h.client.ListAudit(ctx, domain.AuditQuery{Action: "auth.refresh", Limit: 50})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("refresh episodes recorded = %d, want exactly 1", len(page.Items))
	}

	if err := h.client.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if h.store.AccessToken() != "" || h.store.RefreshToken() != "" {
		t.Fatal("logout left credentials behind")
	}
}

func TestE2E_RefreshFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	// poison the stored session: the access token is dead and the refresh
	// token is not one the sandbox ever issued
	if err := h.store.SetTokens("dead-access", "dead-refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}

	_, err := h.client.Users(ctx, domain.UserQuery{PerPage: 1})
	if err == nil {
		t.Fatal("expected the call to fail")
	}
	var apiErr *coreapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want the original 401", err)
	}
	if n := atomic.LoadInt32(h.authFail); n != 1 {
		t.Fatalf("auth failure callback fired %d times, want 1", n)
	}
	if h.store.AccessToken() != "" || h.store.RefreshToken() != "" {
		t.Fatal("failed refresh must clear stored credentials")
	}
}

func TestE2E_DashboardAndDocs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	svc := app.NewDashboardService(h.client)
	d, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Summary.TotalUsers == 0 || d.Summary.TotalBookings == 0 {
		t.Fatalf("summary empty: %+v", d.Summary)
	}
	if len(d.StatusBreakdown) == 0 || len(d.CategorySplit) == 0 {
		t.Fatal("dashboard aggregates missing")
	}
	var pct float64
	for _, sc := range d.StatusBreakdown {
		pct += sc.Percent
	}
	if pct < 99.0 || pct > 101.0 {
		t.Fatalf("status percentages sum to %v", pct)
	}

	// pull a pending application's documents through the real stream path
	apps, err := h.client.KYCApplications(ctx, domain.KYCQuery{Status: "pending"})
	if err != nil {
		t.Fatalf("kyc list: %v", err)
	}
	if len(apps.Items) == 0 {
		t.Fatal("no pending applications in sandbox")
	}
	dir := t.TempDir()
	fetcher := app.NewDocFetcher(h.client, 2, zerolog.Nop())
	n, err := fetcher.DownloadAll(ctx, apps.Items[0].ID, dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if n == 0 {
		t.Fatal("no documents downloaded")
	}
	ents, err := os.ReadDir(dir)
	if err != nil || len(ents) != n {
		t.Fatalf("dir has %d files, want %d (err %v)", len(ents), n, err)
	}

	// a reviewer-side upload lands on the case and streams back intact
	caseID := apps.Items[0].ID
	doc, err := h.client.UploadKYCDocument(ctx, caseID, "bank_proof", "passbook.pdf", "application/pdf", strings.NewReader("passbook scan bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	full, err := h.client.Application(ctx, caseID)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := full.Documents[len(full.Documents)-1]; got.ID != doc.ID || got.Kind != "bank_proof" {
		t.Fatalf("uploaded document not on case: %+v", got)
	}
	rc, err := h.client.FetchDocument(ctx, doc)
	if err != nil {
		t.Fatalf("fetch uploaded: %v", err)
	}
	b, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(b) != "passbook scan bytes" {
		t.Fatalf("round trip = %q (err %v)", b, err)
	}

	// unknown case IDs surface as the not-found sentinel
	if _, err := h.client.Application(ctx, "kyc-does-not-exist"); !errors.Is(err, coreapi.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound match", err)
	}
}

func TestE2E_AuditExportMatchesView(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	q := domain.AuditQuery{Action: "user.suspend"}

	var all []domain.AuditEntry
	walk := q
	walk.Limit = 10
	for {
		page, err := h.client.ListAudit(ctx, walk)
		if err != nil {
			t.Fatalf("audit page: %v", err)
		}
		all = append(all, page.Items...)
		if page.NextCursor == nil {
			break
		}
		walk.Cursor = page.NextCursor
	}
	if len(all) == 0 {
		t.Fatal("no user.suspend entries in sandbox")
	}

	// server-side export, same filter
	rc, err := h.client.ExportAudit(ctx, q, "csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer rc.Close()
	rows, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(rows) != len(all)+1 {
		t.Fatalf("export rows = %d, want %d entries plus header", len(rows), len(all))
	}

	// client-side assembly must agree with the server
	var sb strings.Builder
	ex := app.NewExporter(h.client)
	n, err := ex.CSV(ctx, &sb, q)
	if err != nil {
		t.Fatalf("local export: %v", err)
	}
	if n != len(all) {
		t.Fatalf("local export wrote %d entries, want %d", n, len(all))
	}
}
