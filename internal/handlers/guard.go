package handlers

import (
	"net/http"
	"strings"

	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
	"github.com/rs/zerolog/log"
)

const (
	loginPath   = "/auth"
	landingPath = "/"
)

var (
	protectedPaths = []string{"/", "/dashboard"}
	loginOnlyPaths = []string{"/auth", "/auth/signup"}
)

type sessionState int

const (
	sessionMissing sessionState = iota
	sessionInvalid
	sessionValid
)

// authenticate resolves the request's session. The cookie is tried first and
// the Bearer header second. An unusable cookie is cleared on every request it
// is seen on, even when the header carries a valid token.
func (s *Sessions) authenticate(w http.ResponseWriter, r *http.Request) (types.Identity, sessionState) {
	cookieToken, headerToken := s.tokens(r)
	if cookieToken == "" && headerToken == "" {
		return types.Identity{}, sessionMissing
	}

	if cookieToken != "" {
		identity, err := s.Parse(cookieToken)
		if err == nil {
			return identity, sessionValid
		}
		log.Ctx(r.Context()).Debug().Err(err).Msg("rejected session cookie")
		s.ClearCookie(w)
	}

	if headerToken != "" {
		identity, err := s.Parse(headerToken)
		if err == nil {
			return identity, sessionValid
		}
		log.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
	}
	return types.Identity{}, sessionInvalid
}

// Guard protects page routes. Unauthenticated requests for protected pages are
// redirected to the login page; authenticated requests for login-only pages
// are redirected to the landing page. Otherwise the request proceeds, carrying
// the identity when the session is valid.
func (s *Sessions) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, state := s.authenticate(w, r)
		path := normalizePath(r.URL.Path)

		switch {
		case state != sessionValid && matchesPath(path, protectedPaths):
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		case state == sessionValid && matchesPath(path, loginOnlyPaths):
			http.Redirect(w, r, landingPath, http.StatusFound)
			return
		case state == sessionValid:
			r = r.WithContext(withIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession protects API routes, answering 401 instead of redirecting.
func (s *Sessions) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, state := s.authenticate(w, r)
		switch state {
		case sessionMissing:
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		case sessionInvalid:
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// RequireAction rejects identities whose role does not grant action. It must
// run after RequireSession.
func RequireAction(action services.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
				return
			}
			if !services.Can(identity.Role, action) {
				log.Ctx(r.Context()).Warn().
					Str("user_id", identity.ID).
					Str("role", string(identity.Role)).
					Str("action", string(action)).
					Msg("access denied")
				writeError(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matchesPath reports whether path equals one of prefixes or lies below one,
// treating "/" as an exact match only.
func matchesPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix {
			return true
		}
		if prefix != "/" && strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}
