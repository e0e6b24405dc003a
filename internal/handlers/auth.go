package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
	"github.com/rs/zerolog/log"
)

// AuthHandler provides session endpoints.
type AuthHandler struct {
	userService       *services.UserService
	sessions          *Sessions
	allowRegistration bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *Sessions, allowRegistration bool) *AuthHandler {
	return &AuthHandler{
		userService:       userService,
		sessions:          sessions,
		allowRegistration: allowRegistration,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, sessions *Sessions, allowRegistration bool) {
	handler := NewAuthHandler(userService, sessions, allowRegistration)

	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Post("/register", handler.Register)
	r.With(sessions.RequireSession).Get("/user", handler.User)
}

// Login verifies credentials and stores a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	loginID := firstNonEmpty(req.LoginID, req.Email, req.Username)
	if loginID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "loginId dan password wajib diisi")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), loginID, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Terjadi kesalahan saat login")
		return
	}

	identity := types.IdentityOf(user)
	token, err := h.sessions.Issue(identity)
	if err != nil {
		writeServiceError(w, r, err, "Terjadi kesalahan saat login")
		return
	}
	h.sessions.SetCookie(w, token)

	log.Ctx(r.Context()).Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	writeJSON(w, http.StatusOK, SessionResponse{Message: "Login berhasil", User: identity})
}

// Logout expires the session cookie. It succeeds with or without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logout berhasil"})
}

// User returns the identity carried by the current session.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: identity})
}

// Register creates a MARKETING account when self-registration is enabled.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allowRegistration {
		writeError(w, http.StatusForbidden, "Registrasi tidak diizinkan")
		return
	}

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	password := req.Password
	if password == "" {
		password = req.PasswordHash
	}

	user, err := h.userService.Register(r.Context(), services.NewUserInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: password,
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal mendaftarkan user")
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{Message: "Registrasi berhasil", User: user})
}

// LoginRequest accepts an email or username as loginId.
type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// PasswordHash is the legacy name of the plain password field.
	PasswordHash string `json:"password_hash"`
}

type SessionResponse struct {
	Message string         `json:"message,omitempty"`
	User    types.Identity `json:"user"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
