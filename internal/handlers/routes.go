package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/internal/services"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Users             *services.UserService
	Customers         *services.CustomerService
	Transactions      *services.TransactionService
	Reports           *services.ReportService
	Exports           *services.ExportService
	Sessions          *Sessions
	Location          *time.Location
	AllowRegistration bool
}

// Mount registers the page and API routes on router.
func Mount(router chi.Router, deps Dependencies) {
	reportHandler := NewReportHandler(deps.Reports, deps.Exports, deps.Location)
	transactionHandler := NewTransactionHandler(deps.Transactions, deps.Customers, deps.Reports, deps.Exports, deps.Location)

	PageRouter(router, deps.Sessions, deps.AllowRegistration)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, deps.Users, deps.Sessions, deps.AllowRegistration)
		})
		r.Route("/customers", func(r chi.Router) {
			CustomerRouter(r, deps.Customers, deps.Sessions)
		})
		r.Route("/transactions", func(r chi.Router) {
			TransactionRouter(r, transactionHandler, deps.Sessions)
		})
		r.Route("/users", func(r chi.Router) {
			UserRouter(r, deps.Users, deps.Sessions)
		})
		r.Route("/stats", func(r chi.Router) {
			StatsRouter(r, reportHandler, deps.Sessions)
		})
		r.With(deps.Sessions.RequireSession, RequireAction(services.ActionReadReports)).
			Get("/exportexcel", reportHandler.ExportExcel)
	})
}
