package sandbox

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sevasetu_admin/internal/domain"
)

// account is a console operator who can log in to the sandbox.
type account struct {
	user        domain.AdminUser
	password    string
	passwordSet bool
	inviteToken string
}

type session struct {
	email   string
	expires time.Time
}

// sandboxUser wraps a user with the vintage of the backend shard it
// pretends to live on; legacy shards still answer with the pre-migration
// field names.
type sandboxUser struct {
	u      domain.User
	legacy bool
}

type mediaObject struct {
	contentType string
	name        string
	data        []byte
}

// state is the whole fixture universe behind one mutex. Handler work is
// trivial; contention is not a concern here.
type state struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	accounts map[string]*account
	sessions map[string]session // access token -> session
	refresh  map[string]string  // refresh token -> email

	users         []*sandboxUser
	acharyas      []*domain.Acharya
	kyc           []*domain.KYCApplication
	docs          map[string]mediaObject // KYC document id -> payload
	bookings      []*domain.Booking
	disputes      []*domain.Dispute
	alerts        []*domain.FraudAlert
	testimonials  []*domain.Testimonial
	announcements []*domain.Announcement
	coupons       []*domain.Coupon
	vouchers      []*domain.Voucher
	audit         []domain.AuditEntry
	broadcasts    []domain.Broadcast
	threads       []*domain.ChatThread
	messages      map[string][]domain.ChatMessage // thread id -> messages
	media         map[string]mediaObject          // attachment id -> payload

	seq int
}

func newState(seed int64, ttl time.Duration) *state {
	st := &state{
		ttl:      ttl,
		now:      time.Now,
		accounts: map[string]*account{},
		sessions: map[string]session{},
		refresh:  map[string]string{},
		docs:     map[string]mediaObject{},
		messages: map[string][]domain.ChatMessage{},
		media:    map[string]mediaObject{},
	}
	st.seedFixtures(seed)
	return st
}

// nextID returns the next deterministic fixture id, e.g. u-17. Tokens use
// uuids instead; only entities get readable ids.
func (st *state) nextID(prefix string) string {
	st.seq++
	return fmt.Sprintf("%s-%d", prefix, st.seq)
}

// ---- sessions ----

// mintPair creates a fresh token pair for email. Caller holds the lock.
func (st *state) mintPair(email string) domain.TokenPair {
	access := uuid.NewString()
	refresh := uuid.NewString()
	st.sessions[access] = session{email: email, expires: st.now().Add(st.ttl)}
	st.refresh[refresh] = email
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(st.ttl.Seconds()),
	}
}

// sessionFor resolves a bearer token; expired sessions are pruned as they
// are seen.
func (st *state) sessionFor(token string) (*account, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[token]
	if !ok {
		return nil, false
	}
	if st.now().After(sess.expires) {
		delete(st.sessions, token)
		return nil, false
	}
	acct, ok := st.accounts[sess.email]
	return acct, ok
}

// rotate redeems a refresh token for a new pair; the old refresh token is
// single-use.
func (st *state) rotate(refreshToken string) (domain.TokenPair, string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	email, ok := st.refresh[refreshToken]
	if !ok {
		return domain.TokenPair{}, "", false
	}
	delete(st.refresh, refreshToken)
	return st.mintPair(email), email, true
}

// expireSessions force-ages every live access token. Tests use this to
// drive a refresh episode without waiting out the TTL.
func (st *state) expireSessions() {
	st.mu.Lock()
	defer st.mu.Unlock()
	past := st.now().Add(-time.Minute)
	for tok, sess := range st.sessions {
		sess.expires = past
		st.sessions[tok] = sess
	}
}

// revoke drops one access token and all refresh tokens of its account.
func (st *state) revoke(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[token]
	if !ok {
		return
	}
	delete(st.sessions, token)
	for rt, email := range st.refresh {
		if email == sess.email {
			delete(st.refresh, rt)
		}
	}
}

// ---- audit trail ----

// record appends an audit entry for an admin action. Caller holds the lock.
func (st *state) record(actor domain.AdminUser, action, targetKind, targetID, detail, ip string) {
	st.audit = append(st.audit, domain.AuditEntry{
		ID:         st.nextID("ae"),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		TargetKind: targetKind,
		TargetID:   targetID,
		Detail:     detail,
		IP:         ip,
		CreatedAt:  st.now().UTC(),
	})
}
