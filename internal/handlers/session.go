package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/types"
)

// SessionClaims is the signed payload of a session token.
type SessionClaims struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Role     types.Role `json:"role"`
	FullName string     `json:"full_name"`
	Username string     `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues, verifies and transports session tokens.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	cookiePath string
	secure     bool
	now        func() time.Time
}

// NewSessions builds a Sessions from cfg. Cookies are marked Secure when secure is set.
func NewSessions(cfg config.SessionConfig, secure bool) (*Sessions, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("JWT_ACCESS_KEY is required")
	}
	s := &Sessions{
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		cookiePath: cfg.CookiePath,
		secure:     secure,
		now:        time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 365 * 24 * time.Hour
	}
	if s.cookieName == "" {
		s.cookieName = "authToken"
	}
	if s.cookiePath == "" {
		s.cookiePath = "/"
	}
	return s, nil
}

// Issue signs a token for identity.
func (s *Sessions) Issue(identity types.Identity) (string, error) {
	now := s.now()
	claims := SessionClaims{
		ID:       identity.ID,
		Email:    identity.Email,
		Role:     identity.Role,
		FullName: identity.FullName,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies signature and expiry and returns the carried identity.
func (s *Sessions) Parse(tokenString string) (types.Identity, error) {
	claims := SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return types.Identity{}, err
	}
	if !token.Valid {
		return types.Identity{}, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.ID) == "" {
		return types.Identity{}, errors.New("missing subject")
	}
	return types.Identity{
		ID:       claims.ID,
		Email:    claims.Email,
		Role:     claims.Role,
		FullName: claims.FullName,
		Username: claims.Username,
	}, nil
}

// SetCookie stores token in the session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     s.cookiePath,
		MaxAge:   int(s.ttl / time.Second),
		Expires:  s.now().Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.cookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokens returns the session cookie value and the Bearer token from the
// Authorization header used by non-browser clients. Either may be empty.
func (s *Sessions) tokens(r *http.Request) (cookieToken, headerToken string) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		cookieToken = strings.TrimSpace(cookie.Value)
	}
	if token, err := bearerToken(r); err == nil {
		headerToken = token
	}
	return cookieToken, headerToken
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
