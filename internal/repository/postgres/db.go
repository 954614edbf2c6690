package postgres

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"medvault/internal/config"
	"medvault/internal/logging"
)

// NewDB creates a new PostgreSQL connection pool, retrying the initial
// connection with exponential backoff up to cfg.ConnectRetries times.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	var db *sqlx.DB
	attempt := 0
	connect := func() error {
		attempt++
		conn, err := sqlx.Connect("pgx", cfg.DSN())
		if err != nil {
			logging.API.WithField("attempt", attempt).WithError(err).Warn("postgres.NewDB: connect failed")
			return err
		}
		db = conn
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	if err := backoff.Retry(connect, backoff.WithMaxRetries(policy, uint64(retries))); err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}
