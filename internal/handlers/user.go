package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
)

// UserHandler provides account management endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, sessions *Sessions) {
	handler := NewUserHandler(userService)
	read := RequireAction(services.ActionReadUsers)
	write := RequireAction(services.ActionWriteUsers)

	r.Use(sessions.RequireSession)
	r.With(read).Get("/", handler.ListUsers)
	r.With(write).Post("/", handler.CreateUser)
	r.With(RequireAction(services.ActionReadTellers)).Get("/tellers", handler.ListTellers)
	r.Route("/{userID}", func(r chi.Router) {
		r.With(read).Get("/", handler.GetUser)
		r.With(write).Patch("/", handler.UpdateUser)
		r.With(write).Delete("/", handler.DeleteUser)
	})
}

// ListUsers returns all accounts, optionally narrowed by ?role=.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat data user")
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: users})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, err := h.userService.Create(r.Context(), services.NewUserInput{
		FullName:    req.FullName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal menambahkan user")
		return
	}
	writeJSON(w, http.StatusCreated, UserResponse{Message: "User berhasil ditambahkan", User: user})
}

func (h *UserHandler) ListTellers(w http.ResponseWriter, r *http.Request) {
	tellers, err := h.userService.Tellers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat data teller")
		return
	}
	if tellers == nil {
		tellers = []types.Teller{}
	}
	writeJSON(w, http.StatusOK, map[string][]types.Teller{"tellers": tellers})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat user")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, err := h.userService.Update(r.Context(), id, services.UserPatch{
		FullName:    req.FullName,
		Email:       req.Email,
		Role:        req.Role,
		AccessToken: req.AccessToken,
		Password:    req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal memperbarui user")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Message: "User berhasil diperbarui", User: user})
}

// DeleteUser removes an account. Removing the account of the current session
// is rejected.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if identity, ok := IdentityFromContext(r.Context()); ok && identity.ID == id {
		writeError(w, http.StatusBadRequest, "Tidak dapat menghapus akun sendiri")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Gagal menghapus user")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User berhasil dihapus"})
}

type CreateUserRequest struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	AccessToken *string `json:"access_token"`
	Password    *string `json:"password"`
}

type UserResponse struct {
	Message string     `json:"message,omitempty"`
	User    types.User `json:"user"`
}

type UserListResponse struct {
	Users []types.User `json:"users"`
}
