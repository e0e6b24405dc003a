package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marketing = types.Identity{
	ID:       "user-1",
	Email:    "rina@bank.test",
	Role:     types.RoleMarketing,
	FullName: "Rina",
	Username: "rina",
}

func guardedEcho(s *Sessions) http.Handler {
	return s.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		w.Header().Set("X-Identity", identity.ID)
		w.WriteHeader(http.StatusOK)
	}))
}

func serveWithCookie(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardRedirectsAnonymousFromProtectedPages(t *testing.T) {
	h := guardedEcho(newSessions(t))

	for _, path := range []string{"/", "/dashboard", "/dashboard/"} {
		rec := serveWithCookie(h, path, "")
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/auth", rec.Header().Get("Location"), path)
	}
}

func TestGuardLetsAnonymousReachLoginPages(t *testing.T) {
	h := guardedEcho(newSessions(t))

	for _, path := range []string{"/auth", "/auth/signup", "/about"} {
		rec := serveWithCookie(h, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGuardRedirectsSignedInAwayFromLoginPages(t *testing.T) {
	s := newSessions(t)
	token, err := s.Issue(marketing)
	require.NoError(t, err)
	h := guardedEcho(s)

	for _, path := range []string{"/auth", "/auth/signup"} {
		rec := serveWithCookie(h, path, token)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}

	rec := serveWithCookie(h, "/dashboard", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, marketing.ID, rec.Header().Get("X-Identity"))
}

func TestGuardClearsInvalidCookieOnEveryRequest(t *testing.T) {
	h := guardedEcho(newSessions(t))

	for i := 0; i < 2; i++ {
		rec := serveWithCookie(h, "/dashboard", "not-a-token")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth", rec.Header().Get("Location"))

		cleared := sessionCookie(rec)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Less(t, cleared.MaxAge, 0)
	}

	// an invalid cookie on a login page is cleared without redirecting.
	rec := serveWithCookie(h, "/auth", "not-a-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sessionCookie(rec))
}

func TestGuardRejectsExpiredAndForeignTokens(t *testing.T) {
	s := newSessions(t)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := s.Issue(marketing)
	require.NoError(t, err)
	s.now = time.Now

	other := newSessions(t)
	other.secret = []byte("another-secret")
	foreign, err := other.Issue(marketing)
	require.NoError(t, err)

	h := guardedEcho(s)
	for _, token := range []string{expired, foreign} {
		rec := serveWithCookie(h, "/", token)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.NotNil(t, sessionCookie(rec))
	}
}

func TestRequireSession(t *testing.T) {
	s := newSessions(t)
	h := s.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		writeJSON(w, http.StatusOK, identity)
	}))

	rec := serveWithCookie(h, "/api/auth/user", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())

	rec = serveWithCookie(h, "/api/auth/user", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())

	token, err := s.Issue(marketing)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, marketing, decodeBody[types.Identity](t, rec))
}

func TestRequireSessionFallsBackToBearerAfterStaleCookie(t *testing.T) {
	s := newSessions(t)
	h := s.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		writeJSON(w, http.StatusOK, identity)
	}))

	token, err := s.Issue(marketing)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: "stale"})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, marketing, decodeBody[types.Identity](t, rec))
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: "stale"})
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestRequireAction(t *testing.T) {
	s := newSessions(t)
	h := s.RequireSession(RequireAction(services.ActionCleanTransactions)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	))

	token, err := s.Issue(marketing)
	require.NoError(t, err)
	rec := serveWithCookie(h, "/api/transactions/cleanup", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	superadmin := marketing
	superadmin.Role = types.RoleSuperAdmin
	token, err = s.Issue(superadmin)
	require.NoError(t, err)
	rec = serveWithCookie(h, "/api/transactions/cleanup", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNewSessionsRequiresSecret(t *testing.T) {
	_, err := NewSessions(config.SessionConfig{Secret: "  "}, false)
	assert.Error(t, err)
}

func TestMatchesPath(t *testing.T) {
	assert.True(t, matchesPath("/", protectedPaths))
	assert.True(t, matchesPath("/dashboard/teller", protectedPaths))
	assert.False(t, matchesPath("/dashboards", protectedPaths))
	assert.False(t, matchesPath("/api/stats", protectedPaths))
	assert.Equal(t, "/auth", normalizePath("/auth/"))
	assert.Equal(t, "/", normalizePath(""))
}
