package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
)

// CustomerHandler provides HTTP handlers for customers.
type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRouter registers customer routes on the given router. Every route
// requires a session.
func CustomerRouter(r chi.Router, customerService *services.CustomerService, sessions *Sessions) {
	handler := NewCustomerHandler(customerService)
	read := RequireAction(services.ActionReadCustomers)
	write := RequireAction(services.ActionWriteCustomers)

	r.Use(sessions.RequireSession)
	r.With(read).Get("/", handler.ListCustomers)
	r.With(write).Post("/", handler.CreateCustomer)
	r.With(read).Get("/search", handler.SearchCustomers)
	r.Route("/{customerID}", func(r chi.Router) {
		r.With(read).Get("/", handler.GetCustomer)
		r.With(write).Patch("/", handler.UpdateCustomer)
		r.With(write).Delete("/", handler.DeleteCustomer)
	})
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customers, total, err := h.customerService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat data nasabah")
		return
	}

	writeJSON(w, http.StatusOK, CustomerListResponse{
		Customers: customers,
		Page:      page,
		Limit:     limit,
		Total:     total,
	})
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req CustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	customer, err := h.customerService.Create(r.Context(), identity, services.CustomerInput{
		NasabahID:      flexibleText(req.NasabahID),
		NoAlternatif:   flexibleText(req.NoAlternatif),
		FullName:       req.FullName,
		TypeCustomer:   flexibleText(req.TypeCustomer),
		AccountBalance: flexibleText(req.AccountBalance),
		Address:        req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal menambahkan nasabah")
		return
	}

	writeJSON(w, http.StatusCreated, CustomerResponse{Message: "Nasabah berhasil ditambahkan", Customer: customer})
}

func (h *CustomerHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "Gagal mencari nasabah")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]types.Customer{"customers": customers})
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat nasabah")
		return
	}
	writeJSON(w, http.StatusOK, CustomerResponse{Customer: customer})
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, services.CustomerPatch{
		NasabahID:      optionalText(req.NasabahID),
		NoAlternatif:   optionalText(req.NoAlternatif),
		FullName:       &req.FullName,
		TypeCustomer:   optionalText(req.TypeCustomer),
		AccountBalance: optionalText(req.AccountBalance),
		Address:        &req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal memperbarui nasabah")
		return
	}
	writeJSON(w, http.StatusOK, CustomerResponse{Message: "Nasabah berhasil diperbarui", Customer: customer})
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Gagal menghapus nasabah")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Nasabah berhasil dihapus"})
}

// CustomerRequest accepts numeric fields either as JSON numbers or strings.
type CustomerRequest struct {
	NasabahID      json.RawMessage `json:"nasabah_id"`
	NoAlternatif   json.RawMessage `json:"no_alternatif"`
	FullName       string          `json:"full_name"`
	TypeCustomer   json.RawMessage `json:"type_customer"`
	AccountBalance json.RawMessage `json:"account_balance"`
	Address        string          `json:"address"`
}

type CustomerResponse struct {
	Message  string         `json:"message,omitempty"`
	Customer types.Customer `json:"customer"`
}

// CustomerListResponse is the paginated list response payload.
type CustomerListResponse struct {
	Customers []types.Customer `json:"customers"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
	Total     int              `json:"total"`
}

func optionalText(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	text := flexibleText(raw)
	return &text
}
