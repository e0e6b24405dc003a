package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	maxBodyBytes = 1 << 20
	dateLayout   = "2006-01-02"

	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Invalid token"
	msgForbidden        = "Akses ditolak"
	msgInvalidRequest   = "invalid request"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse acknowledges a write with no other payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func withIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

// IdentityFromContext returns the session identity stored by the guard.
func IdentityFromContext(ctx context.Context) (types.Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(types.Identity)
	if !ok || identity.ID == "" {
		return types.Identity{}, false
	}
	return identity, true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeServiceError maps a service error to its HTTP status. Anything not
// recognised is logged and reported as a generic 500 with fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		validation *services.ValidationError
		missing    *services.NotFoundError
		duplicate  *services.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, missing.Message)
	case errors.As(err, &duplicate):
		writeError(w, http.StatusConflict, duplicate.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		log.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeDocument(w http.ResponseWriter, doc services.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// flexibleText accepts a JSON string or number and returns its text. Other JSON
// values are returned verbatim so that later parsing rejects them.
func flexibleText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return trimmed
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	rawLimit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if rawLimit == "" {
		rawLimit = strings.TrimSpace(r.URL.Query().Get("per_page"))
	}
	if rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

func parseID(r *http.Request, param string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, param))
	if id == "" {
		return "", errors.New("invalid " + param)
	}
	return id, nil
}

// parseList splits a comma separated query parameter such as office_codes.
func parseList(r *http.Request, keys ...string) []string {
	var values []string
	for _, key := range keys {
		for _, raw := range r.URL.Query()[key] {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
		}
	}
	return values
}

// parseTransactionFilter reads office_code(s), user_id and an inclusive
// from/to date range interpreted in loc.
func parseTransactionFilter(r *http.Request, loc *time.Location) (types.TransactionFilter, error) {
	filter := types.TransactionFilter{
		OfficeCodes: parseList(r, "office_code", "office_codes"),
		UserID:      strings.TrimSpace(r.URL.Query().Get("user_id")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return types.TransactionFilter{}, errors.New("from harus berformat YYYY-MM-DD")
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return types.TransactionFilter{}, errors.New("to harus berformat YYYY-MM-DD")
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	return filter, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
