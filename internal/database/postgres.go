package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/locvowork/employee_records/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	// sqliteUnicodeDriver is go-sqlite3 with lower() replaced by a
	// Unicode-aware fold. The builtin only folds ASCII.
	sqliteUnicodeDriver = "sqlite3_unicode"
)

func init() {
	sql.Register(sqliteUnicodeDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// Config holds the connection settings for either supported driver.
type Config struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects with the driver named in cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return NewPostgresDB(ctx, cfg)
	case DriverSQLite:
		return NewSQLiteDB(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgresDB opens a lib/pq connection pool.
func NewPostgresDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := ping(ctx, db); err != nil {
		return nil, err
	}

	logger.InfoLog(ctx, "Connected to postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return db, nil
}

// NewSQLiteDB opens a go-sqlite3 database with foreign keys enforced.
// An empty path opens a private in-memory database.
func NewSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != "" {
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	}

	db, err := sql.Open(sqliteUnicodeDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db); err != nil {
		return nil, err
	}

	logger.InfoLog(ctx, "Connected to sqlite %q", path)
	return db, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
