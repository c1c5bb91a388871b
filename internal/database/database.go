// Package database opens the PostgreSQL pool that backs conversion records
// and brings its schema up to date.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"docconvert/internal/config"
	"docconvert/internal/database/migration"
	"docconvert/internal/logging"
)

const (
	applicationName = "docconvert"
	pingTimeout     = 5 * time.Second
)

var sqlOpen = sql.Open

// ErrIncomplete is returned when the records database is only partly configured.
var ErrIncomplete = errors.New("records database needs host, port, user and name")

// RecordsDSN returns the pgx connection URL for the conversion records
// database. The connection is tagged with the service name so it can be
// told apart in pg_stat_activity.
func RecordsDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", ErrIncomplete
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(c.User),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	q.Set("application_name", applicationName)
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "invalid-dsn"
	}
	return u.Redacted()
}

// OpenRecords connects to the conversion records database, verifies it is
// reachable and creates the conversions table when it is missing. The caller
// owns the returned pool.
func OpenRecords(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := RecordsDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("register traced driver: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open records db: %w", err)
	}
	configurePool(db, c)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping records db: %w", err)
	}

	if err := migration.EnsureMigrated(ctx, db, c.Host); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate records db: %w", err)
	}

	logging.Info("conversion records ready", "component", "database", "dsn", redact(dsn))
	return db, nil
}

func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}
