package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
)

// dashboards maps each role to the dashboard view it lands on.
var dashboards = map[types.Role]string{
	types.RoleSuperAdmin: "superadmin",
	types.RoleAdmin:      "admin",
	types.RoleMarketing:  "marketing",
	types.RoleTeller:     "teller",
}

// PageHandler serves the page-level views behind the session guard. The
// frontend renders them; these endpoints only describe what a page shows.
type PageHandler struct {
	allowRegistration bool
}

// PageRouter mounts the guarded page routes on r.
func PageRouter(r chi.Router, sessions *Sessions, allowRegistration bool) {
	handler := &PageHandler{allowRegistration: allowRegistration}

	r.Group(func(r chi.Router) {
		r.Use(sessions.Guard)
		r.Get("/", handler.Dashboard)
		r.Get("/dashboard", handler.Dashboard)
		r.Get("/auth", handler.Login)
		r.Get("/auth/signup", handler.Signup)
	})
}

// Dashboard describes the dashboard of the signed-in role.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	capabilities := services.Capabilities(identity.Role)
	if capabilities == nil {
		capabilities = []services.Action{}
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		User:         identity,
		Dashboard:    dashboards[identity.Role],
		Capabilities: capabilities,
	})
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthPageResponse{Page: "login", RegistrationOpen: h.allowRegistration})
}

func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthPageResponse{Page: "signup", RegistrationOpen: h.allowRegistration})
}

// DashboardResponse is the landing view of a signed-in user.
type DashboardResponse struct {
	User         types.Identity    `json:"user"`
	Dashboard    string            `json:"dashboard"`
	Capabilities []services.Action `json:"capabilities"`
}

type AuthPageResponse struct {
	Page             string `json:"page"`
	RegistrationOpen bool   `json:"registration_open"`
}
