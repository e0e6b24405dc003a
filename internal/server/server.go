package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/db"
	"github.com/mobilecollector/backoffice/internal/handlers"
	"github.com/mobilecollector/backoffice/internal/logging"
	"github.com/mobilecollector/backoffice/internal/metrics"
	"github.com/mobilecollector/backoffice/internal/mq"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/internal/storage"
	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/internal/tracing"
	"github.com/rs/zerolog/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and the long-lived clients it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	tracer     *sdktrace.TracerProvider
}

// New connects every dependency named by cfg and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := logging.Setup(cfg.LogLevel, cfg.Env)
	loc := cfg.Location()

	sessions, err := handlers.NewSessions(cfg.Session, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	tp, err := tracing.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	s := &Server{tracer: tp}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.db = dbConn

	gormDB, err := db.NewGorm(dbConn, logger)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.mq = broker

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	userRepo := store.NewUserRepository(gormDB)
	customerRepo := store.NewCustomerRepository(gormDB)
	transactionRepo := store.NewTransactionRepository(gormDB)
	reportRepo := store.NewReportRepository(sqlx.NewDb(dbConn, "postgres"))

	collector := metrics.New()

	txOpts := []services.TransactionOption{
		services.WithObserver(collector),
		services.WithLocation(loc),
	}
	if broker != nil {
		txOpts = append(txOpts, services.WithPublisher(broker))
	}

	var archiver services.Archiver
	if objects != nil {
		archiver = objects
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger,
		tracing.Middleware(tp.Tracer(cfg.Tracing.ServiceName)),
		collector.Middleware,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", collector.Handler())

	handlers.Mount(router, handlers.Dependencies{
		Users:             services.NewUserService(userRepo),
		Customers:         services.NewCustomerService(customerRepo),
		Transactions:      services.NewTransactionService(transactionRepo, customerRepo, txOpts...),
		Reports:           services.NewReportService(reportRepo),
		Exports:           services.NewExportService(transactionRepo, userRepo, archiver, loc),
		Sessions:          sessions,
		Location:          loc,
		AllowRegistration: cfg.AllowRegistration,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.router = router

	log.Info().
		Int("port", port).
		Str("env", cfg.Env).
		Str("mq", cfg.MQ.Backend).
		Str("storage", cfg.Storage.Backend).
		Msg("server configured")

	return s, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases every client.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.mq != nil {
		_ = s.mq.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.tracer != nil {
		if terr := s.tracer.Shutdown(ctx); terr != nil {
			log.Warn().Err(terr).Msg("failed to shutdown tracing")
		}
	}
	return err
}
