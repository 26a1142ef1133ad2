package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/agora-forum/agora/shared/config"
	"github.com/agora-forum/agora/shared/domain"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const defaultQueryTimeout = 10 * time.Second

type Storage struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig suits the API server.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// New migrates the schema and opens the connection pool.
func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("migrating db", "component", "storage")
	if err := Migrate(cfg.Private.Pg.URL()); err != nil {
		return nil, err
	}

	logger.Log.Info("connecting to db", "component", "storage", "host", cfg.Private.Pg.Host)
	db, err := Connect(cfg, DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db", "component", "storage")

	timeout := cfg.Public.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Storage{db: db, queryTimeout: timeout}, nil
}

func Connect(cfg *config.Config, connCfg ConnectionConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Private.Pg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// withTimeout bounds a single storage round trip.
func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// WithTx executes fn within a transaction, rolling back if fn returns an error.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// tableName returns the quoted table backing a collection.
func tableName(c domain.Collection) (string, error) {
	switch c {
	case domain.Threads, domain.Replies, domain.TrendingTopics, domain.TrendingReplies:
		return pq.QuoteIdentifier(string(c)), nil
	}
	return "", fmt.Errorf("unknown collection %q", c)
}

// parentCollection maps a reply collection to the threads it answers.
func parentCollection(c domain.Collection) domain.Collection {
	if c == domain.TrendingReplies {
		return domain.TrendingTopics
	}
	return domain.Threads
}
