package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/types"
)

// ReportHandler serves the dashboard statistics and the spreadsheet export.
type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
	location      *time.Location
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reportService: reportService, exportService: exportService, location: loc}
}

// StatsRouter registers /api/stats routes.
func StatsRouter(r chi.Router, handler *ReportHandler, sessions *Sessions) {
	r.Use(sessions.RequireSession, RequireAction(services.ActionReadReports))
	r.Get("/", handler.Stats)
	r.Get("/offices", handler.Offices)
}

// Stats returns the aggregate counters, optionally scoped to office_codes.
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportService.Stats(r.Context(), parseList(r, "office_code", "office_codes"))
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat statistik")
		return
	}
	writeJSON(w, http.StatusOK, map[string]types.Stats{"stats": stats})
}

func (h *ReportHandler) Offices(w http.ResponseWriter, r *http.Request) {
	offices, err := h.reportService.Offices(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Gagal memuat rekap kantor")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]types.OfficeTotal{"offices": offices})
}

// ExportExcel streams every transaction matching the filter as a workbook.
func (h *ReportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r, h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.exportService.ExportAll(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "Gagal membuat file Excel")
		return
	}
	writeDocument(w, doc)
}
