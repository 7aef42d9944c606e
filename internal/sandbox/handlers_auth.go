package sandbox

import (
	"context"
	"net/http"
	"strings"

	"sevasetu_admin/internal/domain"
)

type ctxKey int

const actorKey ctxKey = 0

// requireBearer resolves the Authorization header to a live session. An
// expired or unknown token answers exactly like production: 401 with a
// detail the client treats as the start of a refresh episode.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			writeErr(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		acct, ok := s.state.sessionFor(token)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "token expired")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) actor(r *http.Request) domain.AdminUser {
	acct, _ := r.Context().Value(actorKey).(*account)
	if acct == nil {
		return domain.AdminUser{}
	}
	return acct.user
}

// bearerToken re-reads the raw token for handlers that need it (logout).
func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

type credentialsIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsIn
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	acct, ok := st.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok || !acct.passwordSet || acct.password != in.Password {
		writeErr(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	now := st.now().UTC()
	acct.user.LastLoginAt = &now
	pair := st.mintPair(acct.user.Email)
	st.record(acct.user, "auth.login", "admin", acct.user.ID, "", remoteIP(r))

	writeData(w, http.StatusOK, map[string]any{
		"user":   acct.user,
		"tokens": pair,
	})
}

func (s *Server) checkEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	st := s.state
	st.mu.Lock()
	acct, ok := st.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	st.mu.Unlock()

	out := domain.EmailStatus{Exists: ok}
	if ok {
		out.PasswordSet = acct.passwordSet
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) setupPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(in.Password) < 8 {
		writeErr(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	acct, ok := st.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok || acct.passwordSet || acct.inviteToken == "" || acct.inviteToken != in.Token {
		writeErr(w, http.StatusUnprocessableEntity, "invalid or spent invite token")
		return
	}
	acct.password = in.Password
	acct.passwordSet = true
	acct.inviteToken = ""
	st.record(acct.user, "auth.setup_password", "admin", acct.user.ID, "", remoteIP(r))
	writeData(w, http.StatusOK, nil)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	pair, email, ok := s.state.rotate(in.RefreshToken)
	if !ok {
		// single-use: a replayed refresh token lands here too
		writeErr(w, http.StatusUnauthorized, "refresh token expired or revoked")
		return
	}
	st := s.state
	st.mu.Lock()
	if acct := st.accounts[email]; acct != nil {
		st.record(acct.user, "auth.refresh", "admin", acct.user.ID, "", remoteIP(r))
	}
	st.mu.Unlock()
	writeData(w, http.StatusOK, pair)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.actor(r))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	actor := s.actor(r)
	s.state.revoke(bearerToken(r))

	st := s.state
	st.mu.Lock()
	st.record(actor, "auth.logout", "admin", actor.ID, "", remoteIP(r))
	st.mu.Unlock()
	writeData(w, http.StatusOK, nil)
}
