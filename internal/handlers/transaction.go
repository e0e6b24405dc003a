package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
)

// TransactionHandler provides HTTP handlers for transactions.
type TransactionHandler struct {
	transactionService *services.TransactionService
	customerService    *services.CustomerService
	reportService      *services.ReportService
	exportService      *services.ExportService
	location           *time.Location
}

func NewTransactionHandler(
	transactionService *services.TransactionService,
	customerService *services.CustomerService,
	reportService *services.ReportService,
	exportService *services.ExportService,
	loc *time.Location,
) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{
		transactionService: transactionService,
		customerService:    customerService,
		reportService:      reportService,
		exportService:      exportService,
		location:           loc,
	}
}

// TransactionRouter registers transaction routes on the given router. Every
// route requires a session.
func TransactionRouter(r chi.Router, handler *TransactionHandler, sessions *Sessions) {
	read := RequireAction(services.ActionReadTransactions)
	write := RequireAction(services.ActionWriteTransactions)
	reports := RequireAction(services.ActionReadReports)

	r.Use(sessions.RequireSession)
	r.With(read).Get("/", handler.ListTransactions)
	r.With(RequireAction(services.ActionCreateTransactions)).Post("/", handler.CreateTransaction)
	r.With(read).Get("/search", handler.SearchCustomers)
	r.With(reports).Get("/grouped", handler.GroupedTransactions)
	r.With(reports).Get("/filterMarketing", handler.ExportMarketing)
	r.With(RequireAction(services.ActionCleanTransactions)).Delete("/cleanup", handler.Cleanup)
	r.Route("/{transactionID}", func(r chi.Router) {
		r.With(read).Get("/", handler.GetTransaction)
		r.With(read).Get("/receipt", handler.Receipt)
		r.With(write).Patch("/", handler.UpdateTransaction)
		r.With(write).Delete("/", handler.DeleteTransaction)
	})
}

// CreateTransaction records a transaction for the customer named by identifier.
// The creator is always the session identity.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	tx, err := h.transactionService.Create(r.Context(), identity, services.CreateTransactionInput{
		Identifier:      flexibleText(req.Identifier),
		TransactionType: req.TransactionType,
		Amount:          flexibleText(req.Amount),
		OfficeCode:      flexibleText(req.OfficeCode),
		Description:     req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err, "Terjadi kesalahan server saat menambahkan transaksi")
		return
	}

	writeJSON(w, http.StatusCreated, TransactionResponse{Message: "Transaksi berhasil ditambahkan", Transaction: tx})
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseTransactionFilter(r, h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, total, err := h.transactionService.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat transaksi")
		return
	}
	if txs == nil {
		txs = []types.Transaction{}
	}

	writeJSON(w, http.StatusOK, TransactionListResponse{
		Transactions: txs,
		Page:         page,
		Limit:        limit,
		Total:        total,
	})
}

// SearchCustomers backs the identifier autocomplete of the entry form.
func (h *TransactionHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "Gagal mencari nasabah")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]types.Customer{"customer": customers})
}

func (h *TransactionHandler) GroupedTransactions(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.reportService.GroupedByUser(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat rekap transaksi")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]types.UserTotal{"groupedTransactions": grouped})
}

func (h *TransactionHandler) ExportMarketing(w http.ResponseWriter, r *http.Request) {
	doc, err := h.exportService.ExportMarketing(r.Context(), r.URL.Query().Get("marketingName"))
	if err != nil {
		writeServiceError(w, r, err, "Gagal membuat laporan marketing")
		return
	}
	writeDocument(w, doc)
}

// Cleanup bulk-deletes transactions. Query: deleteAll=true, or beforeDate=YYYY-MM-DD,
// optionally narrowed by office_code.
func (h *TransactionHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	deleteAll := false
	if raw := strings.TrimSpace(r.URL.Query().Get("deleteAll")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "deleteAll harus true atau false")
			return
		}
		deleteAll = parsed
	}

	result, err := h.transactionService.Cleanup(r.Context(), identity, services.CleanupInput{
		BeforeDate:  r.URL.Query().Get("beforeDate"),
		DeleteAll:   deleteAll,
		OfficeCodes: parseList(r, "office_code", "office_codes"),
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal menghapus transaksi")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "transactionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.transactionService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat transaksi")
		return
	}
	writeJSON(w, http.StatusOK, TransactionResponse{Transaction: tx})
}

func (h *TransactionHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "transactionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.exportService.Receipt(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Gagal membuat bukti setoran")
		return
	}
	writeDocument(w, doc)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "transactionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	tx, err := h.transactionService.Update(r.Context(), id, services.UpdateTransactionInput{
		TransactionType: req.TransactionType,
		Amount:          optionalText(req.Amount),
		Description:     req.Description,
		OfficeCode:      optionalText(req.OfficeCode),
	})
	if err != nil {
		writeServiceError(w, r, err, "Gagal memperbarui transaksi")
		return
	}
	writeJSON(w, http.StatusOK, TransactionResponse{Message: "Transaksi berhasil diperbarui", Transaction: tx})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "transactionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.transactionService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Gagal menghapus transaksi")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Transaksi berhasil dihapus"})
}

// CreateTransactionRequest accepts amount, identifier and office code as JSON
// strings or numbers. Description is ignored.
type CreateTransactionRequest struct {
	Identifier      json.RawMessage `json:"identifier"`
	TransactionType string          `json:"transaction_type"`
	Amount          json.RawMessage `json:"amount"`
	OfficeCode      json.RawMessage `json:"office_code"`
	Description     string          `json:"description"`
}

type UpdateTransactionRequest struct {
	TransactionType *string         `json:"transaction_type"`
	Amount          json.RawMessage `json:"amount"`
	Description     *string         `json:"description"`
	OfficeCode      json.RawMessage `json:"office_code"`
}

type TransactionResponse struct {
	Message     string            `json:"message,omitempty"`
	Transaction types.Transaction `json:"transaction"`
}

// TransactionListResponse is the paginated list response payload.
type TransactionListResponse struct {
	Transactions []types.Transaction `json:"transactions"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	Total        int                 `json:"total"`
}
