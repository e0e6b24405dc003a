package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

var fixtureSeq atomic.Int64

type fixture struct {
	t         *testing.T
	router    http.Handler
	sessions  *Sessions
	users     *store.UserRepository
	customers *store.CustomerRepository
}

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	sessions, err := NewSessions(config.SessionConfig{Secret: testSecret, TTL: time.Hour}, false)
	require.NoError(t, err)
	return sessions
}

func newFixture(t *testing.T, allowRegistration bool) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", fixtureSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.User{}, &types.Customer{}, &types.Transaction{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	userRepo := store.NewUserRepository(db)
	customerRepo := store.NewCustomerRepository(db)
	transactionRepo := store.NewTransactionRepository(db)
	reportRepo := store.NewReportRepository(sqlx.NewDb(sqlDB, "sqlite3"))

	sessions := newSessions(t)
	router := chi.NewRouter()
	Mount(router, Dependencies{
		Users:             services.NewUserService(userRepo),
		Customers:         services.NewCustomerService(customerRepo),
		Transactions:      services.NewTransactionService(transactionRepo, customerRepo),
		Reports:           services.NewReportService(reportRepo),
		Exports:           services.NewExportService(transactionRepo, userRepo, nil, time.UTC),
		Sessions:          sessions,
		Location:          time.UTC,
		AllowRegistration: allowRegistration,
	})

	return &fixture{
		t:         t,
		router:    router,
		sessions:  sessions,
		users:     userRepo,
		customers: customerRepo,
	}
}

// seedUser stores an account whose password is irrelevant; tests sign in by
// issuing a token directly.
func (f *fixture) seedUser(username string, role types.Role) types.User {
	f.t.Helper()
	user, err := f.users.Create(context.Background(), types.User{
		FullName:     "User " + username,
		Username:     username,
		Email:        username + "@bank.test",
		PasswordHash: "unused",
		Role:         role,
	})
	require.NoError(f.t, err)
	return user
}

func (f *fixture) seedCustomer(nasabahID, alt, fullName string) types.Customer {
	f.t.Helper()
	customer, err := f.customers.Create(context.Background(), types.Customer{
		NasabahID:      nasabahID,
		NoAlternatif:   alt,
		FullName:       fullName,
		TypeCustomer:   "111",
		AccountBalance: decimal.NewFromInt(250000),
		Address:        "Jl. Sudirman 10",
	})
	require.NoError(f.t, err)
	return customer
}

func (f *fixture) cookieFor(user types.User) *http.Cookie {
	f.t.Helper()
	token, err := f.sessions.Issue(types.IdentityOf(user))
	require.NoError(f.t, err)
	return &http.Cookie{Name: "authToken", Value: token}
}

func (f *fixture) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// sessionCookie returns the authToken cookie set on rec, if any.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "authToken" {
			return c
		}
	}
	return nil
}
