package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	"github.com/mobilecollector/backoffice/config"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBDriver      = "postgres"
	defaultPingTimeout   = 5 * time.Second
	defaultConnMaxIdle   = 2 * time.Minute
	defaultConnMaxLife   = 30 * time.Minute
	defaultMaxIdleConns  = 5
	defaultMaxOpenConns  = 25
	defaultSlowThreshold = 500 * time.Millisecond
)

// DSN builds the postgres connection URL for cfg.
func DSN(cfg config.DatabaseConfig) string {
	sslmode := "disable"
	if cfg.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		User:   url.UserPassword(cfg.User, cfg.Password),
		Path:   cfg.DBName,
	}

	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()

	return u.String()
}

// Open connects to postgres through an instrumented lib/pq driver and verifies
// the connection.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := otelsql.Open(defaultDBDriver, DSN(cfg.Database),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBNameKey.String(cfg.Database.DBName),
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableQuery: true,
		}),
	)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdle)
	db.SetConnMaxLifetime(defaultConnMaxLife)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewGorm wraps an open pool with gorm. Queries are logged through zl.
func NewGorm(sqlDB *sql.DB, zl zerolog.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         NewLogger(zl),
		TranslateError: true,
	})
}

// NewLogger adapts zl to gorm's logger. Only slow queries and errors are reported.
func NewLogger(zl zerolog.Logger) logger.Interface {
	zl = zl.With().Str("component", "gorm").Logger()
	return logger.New(&zl, logger.Config{
		SlowThreshold:             defaultSlowThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
